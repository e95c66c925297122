// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import "github.com/ambientlabs/agentrt/pkg/llm"

// TruncationStrategy bounds conversation history before it is sent to a
// model. Strategies never mutate the input slice.
type TruncationStrategy interface {
	Truncate(msgs []Message, limit int) []Message
}

// PairWindow keeps the most recent plain-text turns up to the limit and
// every tool-call/tool-result message newer than the oldest kept text
// turn. A tool call is never separated from its paired result even when
// that pushes the window past the nominal limit.
type PairWindow struct{}

// Truncate scans from the most recent message backward. Plain text and
// thinking messages count against the limit; tool calls and results
// inside the window are always kept.
func (PairWindow) Truncate(msgs []Message, limit int) []Message {
	if limit <= 0 || len(msgs) == 0 {
		return msgs
	}

	textKept := 0
	start := 0
scan:
	for i := len(msgs) - 1; i >= 0; i-- {
		switch msgs[i].Type {
		case llm.MessageToolCall, llm.MessageToolResult:
			continue
		default:
			if textKept == limit {
				start = i + 1
				break scan
			}
			textKept++
		}
	}
	if start == 0 {
		return msgs
	}

	kept := msgs[start:]

	// A result inside the window whose call fell outside would split a
	// pair; pull the orphaned calls back in.
	var rescued []Message
	for _, msg := range kept {
		if msg.Type != llm.MessageToolResult || msg.ToolResult == nil {
			continue
		}
		if hasCall(kept, msg.ToolResult.CallID) {
			continue
		}
		for i := start - 1; i >= 0; i-- {
			if msgs[i].Type == llm.MessageToolCall && msgs[i].ToolCall != nil && msgs[i].ToolCall.ID == msg.ToolResult.CallID {
				rescued = append([]Message{msgs[i]}, rescued...)
				break
			}
		}
	}
	if len(rescued) == 0 {
		return kept
	}

	out := make([]Message, 0, len(rescued)+len(kept))
	out = append(out, rescued...)
	out = append(out, kept...)
	return out
}

func hasCall(msgs []Message, callID string) bool {
	for _, msg := range msgs {
		if msg.Type == llm.MessageToolCall && msg.ToolCall != nil && msg.ToolCall.ID == callID {
			return true
		}
	}
	return false
}

var _ TruncationStrategy = PairWindow{}
