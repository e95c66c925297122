// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"context"

	"github.com/ambientlabs/agentrt/pkg/llm"
)

// loadContext reads the conversation history, bounds it for the current
// provider, and maps it to provider-neutral messages. Skill instructions
// from activations earlier in this run are attached to their result
// messages here, never persisted.
func (r *Runtime) loadContext(ctx context.Context, conversationID string, enrichments map[string]string) ([]llm.Message, error) {
	history, err := r.store.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	limit := r.config.ContextLimitFor(r.provider.IsLocal())
	bounded := r.truncate.Truncate(history, limit)

	msgs := make([]llm.Message, 0, len(bounded))
	for _, stored := range bounded {
		if stored.Type == llm.MessageThinking && !r.config.EnableThinking {
			continue
		}
		msg := llm.Message{
			Role:       stored.Role,
			Content:    stored.Content,
			Type:       stored.Type,
			ToolCall:   stored.ToolCall,
			ToolResult: stored.ToolResult,
		}
		if stored.ToolResult != nil {
			if instructions, ok := enrichments[stored.ToolResult.CallID]; ok {
				msg.Enrichment = instructions
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
