// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ambientlabs/agentrt/pkg/skills"
)

// OpenAI-style function-calling wire format. Tool declarations are
// wrapped as {"type":"function","function":{...}} with lowercase JSON
// Schema type tokens; responses carry a tool_calls array whose
// function.arguments value is a JSON-encoded string requiring a second
// parse step. All functions here are pure: no network, no persistence.

// ToolsToOpenAIFormat translates tool definitions to the OpenAI-style
// declaration schema.
func ToolsToOpenAIFormat(tools []skills.ToolDefinition) []map[string]any {
	out := make([]map[string]any, 0, len(tools))
	for _, tool := range tools {
		properties := map[string]any{}
		required := []string{}
		for _, param := range tool.Parameters {
			properties[param.Name] = map[string]any{
				"type":        param.Type.JSONSchemaType(),
				"description": param.Description,
			}
			if param.Required {
				required = append(required, param.Name)
			}
		}

		out = append(out, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        tool.QualifiedName(),
				"description": tool.Description,
				"parameters": map[string]any{
					"type":       "object",
					"properties": properties,
					"required":   required,
				},
			},
		})
	}
	return out
}

// ResolveToolName splits a wire call name into skill and tool
// components. Names in "skill.tool" form split directly; the reserved
// bare name activate_skill resolves to the system pseudo-skill; any
// other bare name is looked up in the supplied catalog and falls back
// to skill "unknown" when nothing matches.
func ResolveToolName(name string, available []skills.ToolDefinition) (string, string) {
	if idx := strings.Index(name, "."); idx >= 0 {
		return name[:idx], name[idx+1:]
	}
	if name == skills.ActivateSkillToolName {
		return skills.SystemSkillName, name
	}

	for _, tool := range available {
		if tool.Name == name && tool.SkillName != "" {
			return tool.SkillName, name
		}
	}
	return "unknown", name
}

// ParseOpenAIToolCalls extracts tool calls from an OpenAI-style response.
// The arguments string is parsed as JSON; malformed arguments yield an
// empty object rather than dropping the call.
func ParseOpenAIToolCalls(response map[string]any, available []skills.ToolDefinition) []skills.ToolCall {
	var calls []skills.ToolCall

	message := firstChoiceMessage(response)
	if message == nil {
		return calls
	}
	rawCalls, _ := message["tool_calls"].([]any)
	for _, raw := range rawCalls {
		tc, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id, _ := tc["id"].(string)
		function, ok := tc["function"].(map[string]any)
		if !ok {
			continue
		}
		name, _ := function["name"].(string)

		var arguments any = map[string]any{}
		if argStr, ok := function["arguments"].(string); ok {
			var parsed any
			if err := json.Unmarshal([]byte(argStr), &parsed); err == nil {
				arguments = parsed
			}
		}

		skillName, toolName := ResolveToolName(name, available)
		calls = append(calls, skills.ToolCall{
			ID:        id,
			SkillName: skillName,
			ToolName:  toolName,
			Arguments: arguments,
		})
	}
	return calls
}

// FormatOpenAIToolResults builds the tool-role messages carrying results
// back to an OpenAI-style model.
func FormatOpenAIToolResults(results []skills.ToolResult) []map[string]any {
	out := make([]map[string]any, 0, len(results))
	for _, result := range results {
		out = append(out, map[string]any{
			"role":         "tool",
			"tool_call_id": result.CallID,
			"content":      openAIResultContent(result),
		})
	}
	return out
}

func openAIResultContent(result skills.ToolResult) string {
	if !result.Success {
		errMsg := result.Error
		if errMsg == "" {
			errMsg = "Unknown error"
		}
		return "Error: " + errMsg
	}
	if result.Result == nil {
		return "Success"
	}
	data, err := json.Marshal(result.Result)
	if err != nil {
		return "Success"
	}
	return string(data)
}

// FormatOpenAIMessages converts conversation history to OpenAI-style
// wire messages. Consecutive tool-call messages merge into a single
// assistant message with a tool_calls array; thinking messages are
// internal state and are skipped; enrichment text is appended to the
// formatted tool-result content without touching the stored message.
func FormatOpenAIMessages(msgs []Message) []map[string]any {
	formatted := make([]map[string]any, 0, len(msgs))
	var pendingCalls []map[string]any

	flush := func() {
		if len(pendingCalls) == 0 {
			return
		}
		formatted = append(formatted, map[string]any{
			"role":       "assistant",
			"content":    nil,
			"tool_calls": pendingCalls,
		})
		pendingCalls = nil
	}

	for _, msg := range msgs {
		switch msg.Type {
		case MessageThinking:
			continue

		case MessageToolCall:
			if msg.ToolCall == nil {
				continue
			}
			args, err := json.Marshal(msg.ToolCall.Arguments)
			if err != nil {
				args = []byte("{}")
			}
			pendingCalls = append(pendingCalls, map[string]any{
				"id":   msg.ToolCall.ID,
				"type": "function",
				"function": map[string]any{
					"name":      msg.ToolCall.QualifiedName(),
					"arguments": string(args),
				},
			})

		case MessageToolResult:
			flush()
			if msg.ToolResult == nil {
				continue
			}
			content := openAIResultContent(*msg.ToolResult)
			if msg.Enrichment != "" {
				content = fmt.Sprintf("%s\n# Instructions:\n%s", content, msg.Enrichment)
			}
			formatted = append(formatted, map[string]any{
				"role":         "tool",
				"tool_call_id": msg.ToolResult.CallID,
				"content":      content,
			})

		default:
			flush()
			formatted = append(formatted, map[string]any{
				"role":    string(msg.Role),
				"content": msg.Content,
			})
		}
	}
	flush()

	return formatted
}

// HasOpenAIToolCalls reports whether an OpenAI-style response contains tool
// calls.
func HasOpenAIToolCalls(response map[string]any) bool {
	message := firstChoiceMessage(response)
	if message == nil {
		return false
	}
	calls, _ := message["tool_calls"].([]any)
	return len(calls) > 0
}

// ExtractOpenAIText extracts the assistant text from an OpenAI-style
// response. Used only when no tool calls are present.
func ExtractOpenAIText(response map[string]any) (string, bool) {
	message := firstChoiceMessage(response)
	if message == nil {
		return "", false
	}
	content, ok := message["content"].(string)
	return content, ok
}

func firstChoiceMessage(response map[string]any) map[string]any {
	choices, _ := response["choices"].([]any)
	if len(choices) == 0 {
		return nil
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return nil
	}
	message, _ := choice["message"].(map[string]any)
	return message
}
