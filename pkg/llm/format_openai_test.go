package llm

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ambientlabs/agentrt/pkg/skills"
)

func catalogForTests() []skills.ToolDefinition {
	return []skills.ToolDefinition{
		{
			SkillName:   "web-search",
			Name:        "search_web",
			Description: "Search the web for a query.",
			Parameters: []skills.ToolParameter{
				{Name: "query", Type: skills.TypeString, Description: "The search query", Required: true},
				{Name: "max_results", Type: skills.TypeInteger, Description: "Maximum results"},
			},
		},
		{
			SkillName:   "web-search",
			Name:        "fetch_webpage",
			Description: "Fetch the content of a web page.",
			Parameters: []skills.ToolParameter{
				{Name: "url", Type: skills.TypeString, Description: "The URL to fetch", Required: true},
			},
		},
	}
}

func TestToolsToOpenAIFormat(t *testing.T) {
	wire := ToolsToOpenAIFormat(catalogForTests())
	if len(wire) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(wire))
	}
	if wire[0]["type"] != "function" {
		t.Fatalf("expected function wrapper, got %v", wire[0]["type"])
	}
	fn := wire[0]["function"].(map[string]any)
	if fn["name"] != "web-search.search_web" {
		t.Fatalf("expected qualified name, got %v", fn["name"])
	}
	params := fn["parameters"].(map[string]any)
	if params["type"] != "object" {
		t.Fatalf("expected lowercase object type, got %v", params["type"])
	}
	props := params["properties"].(map[string]any)
	query := props["query"].(map[string]any)
	if query["type"] != "string" {
		t.Fatalf("expected lowercase string type, got %v", query["type"])
	}
	required := params["required"].([]string)
	if len(required) != 1 || required[0] != "query" {
		t.Fatalf("unexpected required list: %v", required)
	}
}

// openAIResponse builds a synthetic OpenAI-style reply carrying the given
// tool calls.
func openAIResponse(calls ...map[string]any) map[string]any {
	message := map[string]any{"role": "assistant"}
	if len(calls) > 0 {
		raw := make([]any, len(calls))
		for i, c := range calls {
			raw[i] = c
		}
		message["tool_calls"] = raw
	} else {
		message["content"] = "all done"
	}
	return map[string]any{
		"choices": []any{map[string]any{"message": message}},
	}
}

func TestParseOpenAIToolCallsRoundTrip(t *testing.T) {
	catalog := catalogForTests()
	response := openAIResponse(map[string]any{
		"id":   "call_1",
		"type": "function",
		"function": map[string]any{
			"name":      "web-search.search_web",
			"arguments": `{"query":"weather"}`,
		},
	})

	calls := ParseOpenAIToolCalls(response, catalog)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	call := calls[0]
	if call.ID != "call_1" || call.SkillName != "web-search" || call.ToolName != "search_web" {
		t.Fatalf("unexpected call: %+v", call)
	}
	args := call.Arguments.(map[string]any)
	if args["query"] != "weather" {
		t.Fatalf("unexpected arguments: %v", args)
	}
}

func TestParseOpenAIToolCallsMalformedArguments(t *testing.T) {
	response := openAIResponse(map[string]any{
		"id":   "call_1",
		"type": "function",
		"function": map[string]any{
			"name":      "web-search.search_web",
			"arguments": `{not json`,
		},
	})

	calls := ParseOpenAIToolCalls(response, catalogForTests())
	if len(calls) != 1 {
		t.Fatalf("malformed arguments must not drop the call")
	}
	args, ok := calls[0].Arguments.(map[string]any)
	if !ok || len(args) != 0 {
		t.Fatalf("expected empty object arguments, got %v", calls[0].Arguments)
	}
}

func TestResolveToolName(t *testing.T) {
	catalog := catalogForTests()

	skill, tool := ResolveToolName("web-search.search_web", catalog)
	if skill != "web-search" || tool != "search_web" {
		t.Fatalf("qualified name: got %s/%s", skill, tool)
	}

	skill, tool = ResolveToolName("activate_skill", catalog)
	if skill != skills.SystemSkillName || tool != skills.ActivateSkillToolName {
		t.Fatalf("activate_skill: got %s/%s", skill, tool)
	}

	skill, tool = ResolveToolName("search_web", catalog)
	if skill != "web-search" || tool != "search_web" {
		t.Fatalf("bare catalog name: got %s/%s", skill, tool)
	}

	skill, tool = ResolveToolName("mystery_tool", catalog)
	if skill != "unknown" || tool != "mystery_tool" {
		t.Fatalf("unresolved bare name: got %s/%s", skill, tool)
	}
}

func TestFormatOpenAIToolResults(t *testing.T) {
	results := []skills.ToolResult{
		skills.SuccessResult("call_1", map[string]any{"answer": 42}),
		skills.ErrorResult("call_2", "boom"),
	}

	wire := FormatOpenAIToolResults(results)
	if len(wire) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(wire))
	}
	if wire[0]["role"] != "tool" || wire[0]["tool_call_id"] != "call_1" {
		t.Fatalf("unexpected success message: %v", wire[0])
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(wire[0]["content"].(string)), &decoded); err != nil {
		t.Fatalf("success content should be JSON: %v", err)
	}
	if wire[1]["content"] != "Error: boom" {
		t.Fatalf("unexpected error content: %v", wire[1]["content"])
	}
}

func TestFormatOpenAIMessagesMergesToolCalls(t *testing.T) {
	call1 := skills.ToolCall{ID: "c1", SkillName: "web-search", ToolName: "search_web", Arguments: map[string]any{"query": "go"}}
	call2 := skills.ToolCall{ID: "c2", SkillName: "web-search", ToolName: "fetch_webpage", Arguments: map[string]any{"url": "https://example.com"}}
	result1 := skills.SuccessResult("c1", "ok")

	msgs := []Message{
		{Role: RoleUser, Type: MessageText, Content: "look this up"},
		{Role: RoleAssistant, Type: MessageThinking, Content: "planning"},
		{Role: RoleAssistant, Type: MessageToolCall, ToolCall: &call1},
		{Role: RoleAssistant, Type: MessageToolCall, ToolCall: &call2},
		{Role: RoleTool, Type: MessageToolResult, ToolResult: &result1},
	}

	wire := FormatOpenAIMessages(msgs)
	// user text, one merged assistant tool_calls message, one tool result;
	// the thinking message is dropped.
	if len(wire) != 3 {
		t.Fatalf("expected 3 wire messages, got %d: %v", len(wire), wire)
	}
	assistant := wire[1]
	if assistant["role"] != "assistant" {
		t.Fatalf("unexpected role: %v", assistant["role"])
	}
	toolCalls := assistant["tool_calls"].([]map[string]any)
	if len(toolCalls) != 2 {
		t.Fatalf("expected merged tool_calls array of 2, got %d", len(toolCalls))
	}
	fn := toolCalls[0]["function"].(map[string]any)
	if _, ok := fn["arguments"].(string); !ok {
		t.Fatalf("arguments must be a JSON-encoded string")
	}
	if wire[2]["role"] != "tool" || wire[2]["tool_call_id"] != "c1" {
		t.Fatalf("unexpected tool result message: %v", wire[2])
	}
}

func TestFormatOpenAIMessagesEnrichment(t *testing.T) {
	result := skills.SuccessResult("c1", map[string]any{"status": "skill_activated"})
	msgs := []Message{
		{Role: RoleTool, Type: MessageToolResult, ToolResult: &result, Enrichment: "Use search_web first."},
	}

	wire := FormatOpenAIMessages(msgs)
	content := wire[0]["content"].(string)
	if content == "" || !containsAll(content, "skill_activated", "# Instructions:", "Use search_web first.") {
		t.Fatalf("enrichment missing from content: %q", content)
	}
}

func TestExtractOpenAIText(t *testing.T) {
	text, ok := ExtractOpenAIText(openAIResponse())
	if !ok || text != "all done" {
		t.Fatalf("unexpected text: %q ok=%v", text, ok)
	}
	if HasOpenAIToolCalls(openAIResponse()) {
		t.Fatalf("plain text response must not report tool calls")
	}
	if _, ok := ExtractOpenAIText(map[string]any{}); ok {
		t.Fatalf("empty response should not yield text")
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
