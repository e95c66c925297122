// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

// Package llm defines the provider-neutral model contract and the pure
// translation layer between the internal tool representation and each
// provider's wire format.
package llm

import (
	"context"

	"github.com/ambientlabs/agentrt/pkg/skills"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// MessageType distinguishes the kinds of conversation messages the
// runtime persists and the translators format.
type MessageType string

const (
	MessageText       MessageType = "text"
	MessageToolCall   MessageType = "tool_call"
	MessageToolResult MessageType = "tool_result"
	MessageThinking   MessageType = "thinking"
)

// Message is a single unit of conversation history handed to a provider.
// ToolCall is set for tool_call messages and ToolResult for tool_result
// messages; both are nil for plain text.
type Message struct {
	Role       Role               `json:"role"`
	Content    string             `json:"content"`
	Type       MessageType        `json:"type"`
	ToolCall   *skills.ToolCall   `json:"tool_call,omitempty"`
	ToolResult *skills.ToolResult `json:"tool_result,omitempty"`

	// Enrichment is extra text appended to a tool-result message when it
	// is formatted for the model but never persisted. The runtime uses it
	// to inject skill instructions right after an activation.
	Enrichment string `json:"-"`
}

// GenerateOptions carries per-request tuning knobs.
type GenerateOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// GenerateRequest encapsulates one model request.
type GenerateRequest struct {
	SystemPrompt   string                  `json:"system_prompt,omitempty"`
	Messages       []Message               `json:"messages"`
	Tools          []skills.ToolDefinition `json:"tools,omitempty"`
	ConversationID string                  `json:"conversation_id,omitempty"`
	Options        GenerateOptions         `json:"options,omitempty"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateResult is the provider-neutral model reply: either plain text
// or a batch of tool calls (text may accompany calls on some backends).
type GenerateResult struct {
	Text      string            `json:"text,omitempty"`
	ToolCalls []skills.ToolCall `json:"tool_calls,omitempty"`
	Usage     Usage             `json:"usage"`
}

// HasToolCalls reports whether the reply requests tool execution.
func (r *GenerateResult) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}

// Provider is the uniform generate contract hiding the local-inference
// vs. cloud-HTTP distinction from the agent runtime. Each implementation
// owns both translation directions for its wire format.
type Provider interface {
	// Name identifies the backend for logging and metrics.
	Name() string

	// IsLocal reports whether this is the local inference backend,
	// which gets the smaller context limit.
	IsLocal() bool

	// Generate sends one request to the model and returns the
	// provider-neutral reply.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}
