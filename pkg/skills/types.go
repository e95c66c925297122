// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

// Package skills provides the skill registry and the data model shared by
// the translator, executor, and agent runtime.
package skills

import (
	"fmt"

	"github.com/google/uuid"
)

// SkillSummary is the minimal unit sent during initial disclosure.
// Only the name and description are shown to the model until the skill
// is activated.
type SkillSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Skill is the full capability record loaded from a SKILL.md manifest.
type Skill struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Version      string           `json:"version"`
	RequiresAuth bool             `json:"requires_auth"`
	Tools        []ToolDefinition `json:"tools"`
	// Instructions is the markdown body of the manifest, injected into
	// the system prompt once the skill is active.
	Instructions string `json:"instructions"`
}

// Summary returns the progressive-disclosure view of this skill.
func (s Skill) Summary() SkillSummary {
	return SkillSummary{Name: s.Name, Description: s.Description}
}

// ToolDefinition is the canonical internal representation of a tool,
// translated to provider-specific wire formats at request time.
type ToolDefinition struct {
	// SkillName is set by the runtime when assembling a catalog so call
	// names can be mapped back to their owning skill. Empty in manifests.
	SkillName   string          `json:"skill_name,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
	Returns     *ToolReturnType `json:"returns,omitempty"`
}

// QualifiedName returns the "skill.tool" wire name when the owning skill
// is known, otherwise the bare tool name.
func (t ToolDefinition) QualifiedName() string {
	if t.SkillName != "" {
		return t.SkillName + "." + t.Name
	}
	return t.Name
}

// ToolParameter describes one parameter of a tool.
type ToolParameter struct {
	Name        string        `json:"name"`
	Type        ParameterType `json:"type"`
	Description string        `json:"description"`
	Required    bool          `json:"required"`
	Default     any           `json:"default,omitempty"`
}

// ParameterType is the data type of a tool parameter.
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeInteger ParameterType = "integer"
	TypeNumber  ParameterType = "number"
	TypeBoolean ParameterType = "boolean"
	TypeArray   ParameterType = "array"
	TypeObject  ParameterType = "object"
)

// ParseParameterType maps a manifest type token to a ParameterType,
// defaulting to string for unknown tokens.
func ParseParameterType(s string) ParameterType {
	switch s {
	case "integer":
		return TypeInteger
	case "number":
		return TypeNumber
	case "boolean":
		return TypeBoolean
	case "array":
		return TypeArray
	case "object":
		return TypeObject
	default:
		return TypeString
	}
}

// JSONSchemaType returns the lowercase JSON Schema type token used by
// the OpenAI-style wire format.
func (p ParameterType) JSONSchemaType() string {
	return string(p)
}

// UpperType returns the uppercase type token used by the Gemini-style wire format.
func (p ParameterType) UpperType() string {
	switch p {
	case TypeInteger:
		return "INTEGER"
	case TypeNumber:
		return "NUMBER"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeArray:
		return "ARRAY"
	case TypeObject:
		return "OBJECT"
	default:
		return "STRING"
	}
}

// ToolReturnType describes the return schema of a tool.
type ToolReturnType struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Items      *ToolReturnType `json:"items,omitempty"`
}

// ToolCall is a model-issued request to invoke a tool. IDs are unique
// within a batch; the Gemini-style wire format does not carry one, so the translator
// synthesizes it.
type ToolCall struct {
	ID        string `json:"id"`
	SkillName string `json:"skill_name"`
	ToolName  string `json:"tool_name"`
	Arguments any    `json:"arguments"`
}

// NewToolCall creates a tool call with a generated UUID.
func NewToolCall(skillName, toolName string, arguments any) ToolCall {
	return ToolCall{
		ID:        uuid.NewString(),
		SkillName: skillName,
		ToolName:  toolName,
		Arguments: arguments,
	}
}

// QualifiedName returns the "skill.tool" form of this call.
func (c ToolCall) QualifiedName() string {
	return fmt.Sprintf("%s.%s", c.SkillName, c.ToolName)
}

// ToolResult is the outcome of executing a tool call. Exactly one of
// Result and Error is meaningful, gated by Success.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SuccessResult creates a successful tool result.
func SuccessResult(callID string, result any) ToolResult {
	return ToolResult{CallID: callID, Success: true, Result: result}
}

// ErrorResult creates a failed tool result.
func ErrorResult(callID, errMsg string) ToolResult {
	return ToolResult{CallID: callID, Success: false, Error: errMsg}
}

// SkillActivationRequest is the model's request to activate a skill
// before using its tools.
type SkillActivationRequest struct {
	SkillName string `json:"skill_name"`
	Reason    string `json:"reason"`
}

// AgentRuntimeConfig controls the behavior of the agent loop.
// Fixed configuration for a run, never mutated mid-loop.
type AgentRuntimeConfig struct {
	// LocalContextLimit bounds history for local models, which have
	// smaller context windows.
	LocalContextLimit int `json:"local_context_limit" koanf:"local_context_limit"`

	// CloudContextLimit bounds history for cloud models.
	CloudContextLimit int `json:"cloud_context_limit" koanf:"cloud_context_limit"`

	// MaxToolCallsPerTurn caps tool calls in a single turn.
	MaxToolCallsPerTurn int `json:"max_tool_calls_per_turn" koanf:"max_tool_calls_per_turn"`

	// MaxIterations caps total loop iterations before giving up.
	MaxIterations int `json:"max_iterations" koanf:"max_iterations"`

	// EnableThinking controls whether reasoning messages are persisted.
	EnableThinking bool `json:"enable_thinking" koanf:"enable_thinking"`
}

// DefaultRuntimeConfig returns the stock runtime limits.
func DefaultRuntimeConfig() AgentRuntimeConfig {
	return AgentRuntimeConfig{
		LocalContextLimit:   3,
		CloudContextLimit:   10,
		MaxToolCallsPerTurn: 5,
		MaxIterations:       10,
		EnableThinking:      true,
	}
}

// ContextLimitFor returns the history bound for the given provider type.
func (c AgentRuntimeConfig) ContextLimitFor(isLocal bool) int {
	if isLocal {
		return c.LocalContextLimit
	}
	return c.CloudContextLimit
}

// SystemSkillName is the pseudo-skill owning runtime control tools such
// as activate_skill.
const SystemSkillName = "system"

// ActivateSkillToolName is the reserved control tool the model calls to
// load a skill's full tool definitions.
const ActivateSkillToolName = "activate_skill"

// ActivateSkillTool returns the control tool definition included in
// every catalog.
func ActivateSkillTool() ToolDefinition {
	return ToolDefinition{
		SkillName:   SystemSkillName,
		Name:        ActivateSkillToolName,
		Description: "Activate a skill to gain access to its tools. Use this when you need capabilities not currently available.",
		Parameters: []ToolParameter{
			{
				Name:        "skill_name",
				Type:        TypeString,
				Description: "The name of the skill to activate",
				Required:    true,
			},
			{
				Name:        "reason",
				Type:        TypeString,
				Description: "Brief explanation of why this skill is needed",
				Required:    true,
			},
		},
	}
}
