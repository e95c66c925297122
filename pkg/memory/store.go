// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory provides conversation persistence: ordered message
// history, per-conversation skill activations, and tool-call audit
// records.
package memory

import (
	"context"
	"time"

	"github.com/ambientlabs/agentrt/pkg/llm"
	"github.com/ambientlabs/agentrt/pkg/skills"
)

// Message is one persisted unit of conversation history.
type Message struct {
	ID             string             `json:"id"`
	ConversationID string             `json:"conversation_id"`
	Role           llm.Role           `json:"role"`
	Content        string             `json:"content"`
	Type           llm.MessageType    `json:"type"`
	ToolCall       *skills.ToolCall   `json:"tool_call,omitempty"`
	ToolResult     *skills.ToolResult `json:"tool_result,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Conversation is the top-level container messages hang off.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the narrow persistence contract the agent runtime consumes.
// Appends are atomic per message; nothing is ever edited in place.
type Store interface {
	// CreateConversation registers a conversation id so messages can be
	// appended to it. Creating an existing conversation is a no-op.
	CreateConversation(ctx context.Context, id, title string) error

	// AddMessage appends one message and returns it with its assigned id
	// and timestamp.
	AddMessage(ctx context.Context, msg Message) (Message, error)

	// GetMessages returns the full ordered history of a conversation.
	GetMessages(ctx context.Context, conversationID string) ([]Message, error)

	// SaveConversationSkill records a skill activation so later runs of
	// the same conversation need not re-activate. Saving twice is a
	// no-op.
	SaveConversationSkill(ctx context.Context, conversationID, skillName string) error

	// LoadConversationSkills returns the skills activated in prior runs.
	LoadConversationSkills(ctx context.Context, conversationID string) ([]string, error)
}

// ToolCallStatus tracks the lifecycle of an audit record.
type ToolCallStatus string

const (
	ToolCallPending   ToolCallStatus = "pending"
	ToolCallCompleted ToolCallStatus = "completed"
	ToolCallFailed    ToolCallStatus = "failed"
)

// CallRecorder persists tool-call audit records. The executor writes a
// pending record before dispatch and updates it with the outcome after;
// failures here are logged by the caller and never affect results.
type CallRecorder interface {
	SaveToolCallRecord(ctx context.Context, conversationID string, call skills.ToolCall) error
	UpdateToolCallResult(ctx context.Context, callID string, result skills.ToolResult) error
}
