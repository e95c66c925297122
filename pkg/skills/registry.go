// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package skills

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Registry indexes skills by name. It is populated exactly once at
// startup by LoadBundledSkills and is read-only afterwards; all queries
// are safe for concurrent callers once loading has completed.
//
// The registry is an explicitly constructed object owned by the
// composition root and passed by reference into the runtime and the
// executor; there is no process-wide singleton.
type Registry struct {
	mu     sync.RWMutex
	skills map[string]Skill
	loaded bool
}

// NewRegistry creates an empty skill registry.
func NewRegistry() *Registry {
	return &Registry{skills: make(map[string]Skill)}
}

// LoadBundledSkills scans the immediate subdirectories of root for
// SKILL.md manifests and loads them. A parse failure for one skill is
// logged and that skill is skipped; it never aborts loading of the rest.
// Name collisions are first-write-wins: the duplicate is skipped with a
// warning so scan order cannot silently replace a skill.
func (r *Registry) LoadBundledSkills(root string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("no bundled skills directory found", "path", root)
			r.loaded = true
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifestPath := filepath.Join(root, entry.Name(), ManifestFileName)
		if _, err := os.Stat(manifestPath); err != nil {
			slog.Debug("no manifest found", "dir", entry.Name())
			continue
		}

		skill, err := LoadManifestFile(manifestPath)
		if err != nil {
			slog.Error("failed to load skill", "path", manifestPath, "error", err)
			continue
		}
		if _, exists := r.skills[skill.Name]; exists {
			slog.Warn("duplicate skill name, keeping first", "skill", skill.Name, "path", manifestPath)
			continue
		}

		r.skills[skill.Name] = skill
		slog.Info("loaded skill", "skill", skill.Name, "tools", len(skill.Tools))
	}

	r.loaded = true
	slog.Info("skill registry loaded", "count", len(r.skills))
	return nil
}

// GetSkill returns the skill with the given name.
func (r *Registry) GetSkill(name string) (Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	skill, ok := r.skills[name]
	return skill, ok
}

// AllSummaries returns a summary view over every registered skill,
// sorted by name. The summaries are always derived from the registry,
// never a separately mutated copy.
func (r *Registry) AllSummaries() []SkillSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]SkillSummary, 0, len(r.skills))
	for _, skill := range r.skills {
		summaries = append(summaries, skill.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries
}

// SkillNames returns all registered skill names, sorted.
func (r *Registry) SkillNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SkillTools returns the tool definitions for a skill, with SkillName
// set on each so call names can be mapped back from model responses.
// Returns an empty slice for unknown skills.
func (r *Registry) SkillTools(name string) []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	skill, ok := r.skills[name]
	if !ok {
		return nil
	}
	tools := make([]ToolDefinition, len(skill.Tools))
	copy(tools, skill.Tools)
	for i := range tools {
		tools[i].SkillName = name
	}
	return tools
}

// Exists reports whether a skill is registered.
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.skills[name]
	return ok
}

// Loaded reports whether LoadBundledSkills has completed.
func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// Len returns the number of registered skills.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.skills)
}
