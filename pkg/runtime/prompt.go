// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// buildSystemPrompt assembles the disclosure prompt: every skill appears
// as a one-line summary, active skills are marked and contribute their
// full instruction bodies.
func (r *Runtime) buildSystemPrompt(active map[string]bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are Ambient, a helpful AI assistant. Today is %s.\n",
		time.Now().Format("Monday, January 2, 2006"))

	summaries := r.registry.AllSummaries()
	if len(summaries) > 0 {
		b.WriteString("\n## Available Skills\n")
		for _, summary := range summaries {
			marker := ""
			if active[summary.Name] {
				marker = " [ACTIVE]"
			}
			fmt.Fprintf(&b, "- %s: %s%s\n", summary.Name, summary.Description, marker)
		}

		b.WriteString("\n## Skill Activation\n")
		b.WriteString("To use a skill's tools, first call activate_skill with the skill name. " +
			"Once a skill is active its tools become available for the rest of the conversation. " +
			"Only activate skills you actually need.\n")
	}

	activeNames := make([]string, 0, len(active))
	for name := range active {
		activeNames = append(activeNames, name)
	}
	sort.Strings(activeNames)
	for _, name := range activeNames {
		skill, ok := r.registry.GetSkill(name)
		if !ok || skill.Instructions == "" {
			continue
		}
		fmt.Fprintf(&b, "\n## %s Instructions\n%s\n", skill.Name, skill.Instructions)
	}

	return b.String()
}
