package skills

import (
	"testing"
)

const webSearchManifest = `---
name: web-search
description: Search the web and fetch pages.
version: "2.1"
requires_auth: false
tools:
  - name: search_web
    description: Search the web for a query.
    parameters:
      query:
        type: string
        description: The search query
        required: true
      max_results:
        type: integer
        description: Maximum number of results
        required: false
        default: 5
    returns:
      type: array
      items:
        type: object
  - name: fetch_webpage
    description: Fetch the content of a web page.
    parameters:
      url:
        type: string
        description: The URL to fetch
        required: true
---

Use search_web first, then fetch_webpage for promising results.
`

func TestParseManifest(t *testing.T) {
	skill, err := ParseManifest([]byte(webSearchManifest))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if skill.Name != "web-search" {
		t.Fatalf("unexpected name: %s", skill.Name)
	}
	if skill.Version != "2.1" {
		t.Fatalf("unexpected version: %s", skill.Version)
	}
	if len(skill.Tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(skill.Tools))
	}
	if skill.Instructions != "Use search_web first, then fetch_webpage for promising results." {
		t.Fatalf("unexpected instructions: %q", skill.Instructions)
	}

	search := skill.Tools[0]
	if search.Name != "search_web" {
		t.Fatalf("unexpected tool name: %s", search.Name)
	}
	if len(search.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(search.Parameters))
	}
	// Parameters are sorted by name.
	if search.Parameters[0].Name != "max_results" || search.Parameters[1].Name != "query" {
		t.Fatalf("unexpected parameter order: %v", search.Parameters)
	}
	if search.Parameters[1].Type != TypeString || !search.Parameters[1].Required {
		t.Fatalf("query should be a required string")
	}
	if search.Parameters[0].Default != 5 {
		t.Fatalf("expected default 5, got %v", search.Parameters[0].Default)
	}
	if search.Returns == nil || search.Returns.Type != "array" || search.Returns.Items == nil {
		t.Fatalf("unexpected returns schema: %+v", search.Returns)
	}
}

func TestParseManifestDefaults(t *testing.T) {
	content := `---
name: calendar
description: Manage calendar events.
---
Body text.
`
	skill, err := ParseManifest([]byte(content))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if skill.Version != "1.0" {
		t.Fatalf("expected default version 1.0, got %s", skill.Version)
	}
	if skill.RequiresAuth {
		t.Fatalf("expected requires_auth to default to false")
	}
	if len(skill.Tools) != 0 {
		t.Fatalf("expected no tools, got %d", len(skill.Tools))
	}
}

func TestParseManifestMissingDescription(t *testing.T) {
	content := `---
name: broken
---
Body.
`
	if _, err := ParseManifest([]byte(content)); err == nil {
		t.Fatalf("expected error for missing description")
	}
}

func TestParseManifestMissingDelimiters(t *testing.T) {
	if _, err := ParseManifest([]byte("just some text")); err == nil {
		t.Fatalf("expected error for missing frontmatter delimiters")
	}
}

func TestParseManifestUnknownParamType(t *testing.T) {
	content := `---
name: odd
description: A skill with an odd parameter type.
tools:
  - name: do_thing
    description: Does a thing.
    parameters:
      value:
        type: decimal
        description: Some value
        required: true
---
`
	skill, err := ParseManifest([]byte(content))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if skill.Tools[0].Parameters[0].Type != TypeString {
		t.Fatalf("unknown type should default to string")
	}
}
