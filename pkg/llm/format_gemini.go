// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"github.com/google/uuid"

	"github.com/ambientlabs/agentrt/pkg/skills"
)

// Gemini-style function-calling wire format. Declarations are
// grouped under a single functionDeclarations array with uppercase type
// tokens; responses carry functionCall parts inside the first
// candidate's content. Arguments arrive as structured values and the
// protocol provides no call id, so the translator synthesizes one.

// ToolsToGeminiFormat translates tool definitions to the Gemini-style
// declaration schema.
func ToolsToGeminiFormat(tools []skills.ToolDefinition) map[string]any {
	declarations := make([]map[string]any, 0, len(tools))
	for _, tool := range tools {
		properties := map[string]any{}
		required := []string{}
		for _, param := range tool.Parameters {
			properties[param.Name] = map[string]any{
				"type":        param.Type.UpperType(),
				"description": param.Description,
			}
			if param.Required {
				required = append(required, param.Name)
			}
		}

		declarations = append(declarations, map[string]any{
			"name":        tool.QualifiedName(),
			"description": tool.Description,
			"parameters": map[string]any{
				"type":       "OBJECT",
				"properties": properties,
				"required":   required,
			},
		})
	}

	return map[string]any{"functionDeclarations": declarations}
}

// ParseGeminiToolCalls extracts tool calls from a Gemini-style response,
// synthesizing a UUID for each call.
func ParseGeminiToolCalls(response map[string]any, available []skills.ToolDefinition) []skills.ToolCall {
	var calls []skills.ToolCall

	for _, part := range firstCandidateParts(response) {
		functionCall, ok := part["functionCall"].(map[string]any)
		if !ok {
			continue
		}
		name, _ := functionCall["name"].(string)

		var arguments any = map[string]any{}
		if args, ok := functionCall["args"]; ok && args != nil {
			arguments = args
		}

		skillName, toolName := ResolveToolName(name, available)
		calls = append(calls, skills.ToolCall{
			ID:        uuid.NewString(),
			SkillName: skillName,
			ToolName:  toolName,
			Arguments: arguments,
		})
	}
	return calls
}

// FormatGeminiToolResults builds the user-role functionResponse message
// carrying results back to a Gemini-style model. Results pair positionally
// with their originating calls since the protocol matches on name, not
// id.
func FormatGeminiToolResults(results []skills.ToolResult, calls []skills.ToolCall) map[string]any {
	parts := make([]map[string]any, 0, len(results))
	for i, result := range results {
		var name string
		if i < len(calls) {
			name = calls[i].ToolName
		}

		var responseValue any
		if result.Success {
			responseValue = result.Result
			if responseValue == nil {
				responseValue = map[string]any{"status": "success"}
			}
		} else {
			errMsg := result.Error
			if errMsg == "" {
				errMsg = "Unknown error"
			}
			responseValue = map[string]any{"error": errMsg}
		}

		parts = append(parts, map[string]any{
			"functionResponse": map[string]any{
				"name":     name,
				"response": responseValue,
			},
		})
	}

	return map[string]any{
		"role":  "user",
		"parts": parts,
	}
}

// FormatGeminiMessages converts conversation history to Gemini-style
// contents. Tool calls become model-role functionCall parts and results
// user-role functionResponse parts; consecutive parts with the same role
// merge into one content entry, which the protocol requires.
func FormatGeminiMessages(msgs []Message) []map[string]any {
	var formatted []map[string]any
	var pendingParts []map[string]any
	currentRole := ""

	flushAs := func(role string) {
		if currentRole != "" && currentRole != role {
			formatted = append(formatted, map[string]any{
				"role":  currentRole,
				"parts": pendingParts,
			})
			pendingParts = nil
		}
		currentRole = role
	}

	for _, msg := range msgs {
		switch msg.Type {
		case MessageThinking:
			flushAs("model")
			pendingParts = append(pendingParts, map[string]any{
				"thought": true,
				"text":    msg.Content,
			})

		case MessageToolCall:
			if msg.ToolCall == nil {
				continue
			}
			flushAs("model")
			pendingParts = append(pendingParts, map[string]any{
				"functionCall": map[string]any{
					"name": msg.ToolCall.QualifiedName(),
					"args": msg.ToolCall.Arguments,
				},
			})

		case MessageToolResult:
			if msg.ToolResult == nil {
				continue
			}
			flushAs("user")

			var responseValue any
			if msg.ToolResult.Success {
				responseValue = msg.ToolResult.Result
				if responseValue == nil {
					responseValue = map[string]any{}
				}
			} else {
				errMsg := msg.ToolResult.Error
				if errMsg == "" {
					errMsg = "Unknown error"
				}
				responseValue = map[string]any{"error": errMsg}
			}

			pendingParts = append(pendingParts, map[string]any{
				"functionResponse": map[string]any{
					"name":     toolNameForResult(msgs, msg.ToolResult.CallID),
					"response": responseValue,
				},
			})

		default:
			role := "user"
			if msg.Role == RoleAssistant {
				role = "model"
			}
			flushAs(role)
			pendingParts = append(pendingParts, map[string]any{"text": msg.Content})
		}
	}

	if currentRole != "" {
		formatted = append(formatted, map[string]any{
			"role":  currentRole,
			"parts": pendingParts,
		})
	}
	return formatted
}

// toolNameForResult finds the qualified name of the call a result
// belongs to. The Gemini wire format matches responses to calls by name.
func toolNameForResult(msgs []Message, callID string) string {
	for _, msg := range msgs {
		if msg.Type == MessageToolCall && msg.ToolCall != nil && msg.ToolCall.ID == callID {
			return msg.ToolCall.QualifiedName()
		}
	}
	return "unknown"
}

// HasGeminiToolCalls reports whether a Gemini-style response contains tool
// calls.
func HasGeminiToolCalls(response map[string]any) bool {
	for _, part := range firstCandidateParts(response) {
		if _, ok := part["functionCall"]; ok {
			return true
		}
	}
	return false
}

// ExtractGeminiText concatenates the text parts of a Gemini-style response.
// Used only when no tool calls are present.
func ExtractGeminiText(response map[string]any) (string, bool) {
	var text string
	for _, part := range firstCandidateParts(response) {
		if t, ok := part["text"].(string); ok {
			text += t
		}
	}
	return text, text != ""
}

func firstCandidateParts(response map[string]any) []map[string]any {
	candidates, _ := response["candidates"].([]any)
	if len(candidates) == 0 {
		return nil
	}
	candidate, ok := candidates[0].(map[string]any)
	if !ok {
		return nil
	}
	content, ok := candidate["content"].(map[string]any)
	if !ok {
		return nil
	}
	rawParts, _ := content["parts"].([]any)
	parts := make([]map[string]any, 0, len(rawParts))
	for _, raw := range rawParts {
		if part, ok := raw.(map[string]any); ok {
			parts = append(parts, part)
		}
	}
	return parts
}
