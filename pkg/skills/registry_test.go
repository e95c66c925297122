package skills

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSkill(t *testing.T, root, dir, content string) {
	t.Helper()
	skillDir := filepath.Join(root, dir)
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(skillDir, ManifestFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadBundledSkills(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "web-search", `---
name: web-search
description: Search the web.
tools:
  - name: search_web
    description: Search the web for a query.
    parameters:
      query:
        type: string
        description: The search query
        required: true
---
Search instructions.
`)
	writeSkill(t, dir, "calendar", `---
name: calendar
description: Manage calendar events.
---
`)

	reg := NewRegistry()
	if err := reg.LoadBundledSkills(dir); err != nil {
		t.Fatalf("load: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 skills, got %d", reg.Len())
	}
	if !reg.Exists("web-search") || !reg.Exists("calendar") {
		t.Fatalf("expected both skills registered")
	}

	summaries := reg.AllSummaries()
	if len(summaries) != 2 || summaries[0].Name != "calendar" || summaries[1].Name != "web-search" {
		t.Fatalf("unexpected summaries: %v", summaries)
	}

	tools := reg.SkillTools("web-search")
	if len(tools) != 1 || tools[0].SkillName != "web-search" {
		t.Fatalf("expected tool with skill name set, got %+v", tools)
	}
}

func TestLoadBundledSkillsSkipsBroken(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "good", `---
name: good
description: A valid skill.
---
`)
	// Missing description, must be skipped without aborting the scan.
	writeSkill(t, dir, "broken", `---
name: broken
---
`)

	reg := NewRegistry()
	if err := reg.LoadBundledSkills(dir); err != nil {
		t.Fatalf("load: %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected only the valid skill, got %d", reg.Len())
	}
	if !reg.Exists("good") || reg.Exists("broken") {
		t.Fatalf("expected good loaded and broken skipped")
	}
}

func TestLoadBundledSkillsDuplicateKeepsFirst(t *testing.T) {
	dir := t.TempDir()
	// Directory scan order is lexicographic; both declare the same name.
	writeSkill(t, dir, "a-first", `---
name: duplicated
description: First occurrence wins.
---
`)
	writeSkill(t, dir, "b-second", `---
name: duplicated
description: Second occurrence is skipped.
---
`)

	reg := NewRegistry()
	if err := reg.LoadBundledSkills(dir); err != nil {
		t.Fatalf("load: %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected a single skill, got %d", reg.Len())
	}
	skill, _ := reg.GetSkill("duplicated")
	if skill.Description != "First occurrence wins." {
		t.Fatalf("expected first occurrence kept, got %q", skill.Description)
	}
}

func TestLoadBundledSkillsMissingDir(t *testing.T) {
	reg := NewRegistry()
	if err := reg.LoadBundledSkills(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if !reg.Loaded() {
		t.Fatalf("registry should report loaded")
	}
}

func TestSkillToolsUnknownSkill(t *testing.T) {
	reg := NewRegistry()
	if tools := reg.SkillTools("ghost"); len(tools) != 0 {
		t.Fatalf("expected empty tools for unknown skill, got %v", tools)
	}
}

func TestConcurrentReads(t *testing.T) {
	dir := t.TempDir()
	writeSkill(t, dir, "email", `---
name: email
description: Send and read email.
---
`)
	reg := NewRegistry()
	if err := reg.LoadBundledSkills(dir); err != nil {
		t.Fatalf("load: %v", err)
	}

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				reg.AllSummaries()
				reg.Exists("email")
				reg.SkillTools("email")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
