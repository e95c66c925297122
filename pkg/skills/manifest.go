// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package skills

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ambientlabs/agentrt/pkg/errors"
)

// ManifestFileName is the manifest file looked for in each skill directory.
const ManifestFileName = "SKILL.md"

// manifestFrontmatter mirrors the YAML metadata block of a SKILL.md file.
type manifestFrontmatter struct {
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	Version      string         `yaml:"version"`
	RequiresAuth bool           `yaml:"requires_auth"`
	Tools        []manifestTool `yaml:"tools"`
}

type manifestTool struct {
	Name        string                       `yaml:"name"`
	Description string                       `yaml:"description"`
	Parameters  map[string]manifestParameter `yaml:"parameters"`
	Returns     *manifestReturns             `yaml:"returns"`
}

type manifestParameter struct {
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Default     any    `yaml:"default"`
}

type manifestReturns struct {
	Type       string           `yaml:"type"`
	Properties map[string]any   `yaml:"properties"`
	Items      *manifestReturns `yaml:"items"`
}

// LoadManifestFile parses a single SKILL.md file into a Skill.
func LoadManifestFile(path string) (Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Skill{}, errors.SkillParseError(fmt.Sprintf("failed to read %s", path), err)
	}
	return ParseManifest(data)
}

// ParseManifest parses manifest content. The format is two `---` markers:
// content before the first marker is discarded, the block between the
// markers is YAML metadata, and everything after the second marker is the
// free-text instruction body.
func ParseManifest(content []byte) (Skill, error) {
	parts := strings.SplitN(string(content), "---", 3)
	if len(parts) < 3 {
		return Skill{}, errors.SkillParseError("invalid manifest: missing frontmatter delimiters", nil)
	}

	var fm manifestFrontmatter
	if err := yaml.Unmarshal([]byte(parts[1]), &fm); err != nil {
		return Skill{}, errors.SkillParseError("failed to parse YAML frontmatter", err)
	}

	if strings.TrimSpace(fm.Name) == "" {
		return Skill{}, errors.SkillParseError("missing 'name' field", nil)
	}
	if strings.TrimSpace(fm.Description) == "" {
		return Skill{}, errors.SkillParseError("missing 'description' field", nil)
	}
	if fm.Version == "" {
		fm.Version = "1.0"
	}

	tools, err := convertTools(fm.Tools)
	if err != nil {
		return Skill{}, err
	}

	return Skill{
		Name:         fm.Name,
		Description:  fm.Description,
		Version:      fm.Version,
		RequiresAuth: fm.RequiresAuth,
		Tools:        tools,
		Instructions: strings.TrimSpace(parts[2]),
	}, nil
}

func convertTools(raw []manifestTool) ([]ToolDefinition, error) {
	tools := make([]ToolDefinition, 0, len(raw))
	for _, mt := range raw {
		if strings.TrimSpace(mt.Name) == "" {
			return nil, errors.SkillParseError("tool missing 'name'", nil)
		}
		if strings.TrimSpace(mt.Description) == "" {
			return nil, errors.SkillParseError(fmt.Sprintf("tool %s missing 'description'", mt.Name), nil)
		}

		params := make([]ToolParameter, 0, len(mt.Parameters))
		// Map iteration order is random; keep parameter order stable.
		names := make([]string, 0, len(mt.Parameters))
		for name := range mt.Parameters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			mp := mt.Parameters[name]
			params = append(params, ToolParameter{
				Name:        name,
				Type:        ParseParameterType(mp.Type),
				Description: mp.Description,
				Required:    mp.Required,
				Default:     mp.Default,
			})
		}

		tools = append(tools, ToolDefinition{
			Name:        mt.Name,
			Description: mt.Description,
			Parameters:  params,
			Returns:     convertReturns(mt.Returns),
		})
	}
	return tools, nil
}

func convertReturns(raw *manifestReturns) *ToolReturnType {
	if raw == nil {
		return nil
	}
	return &ToolReturnType{
		Type:       raw.Type,
		Properties: raw.Properties,
		Items:      convertReturns(raw.Items),
	}
}
