package memory

import (
	"testing"

	"github.com/ambientlabs/agentrt/pkg/llm"
	"github.com/ambientlabs/agentrt/pkg/skills"
)

func textMsg(content string) Message {
	return Message{Role: llm.RoleUser, Type: llm.MessageText, Content: content}
}

func callMsg(id string) Message {
	return Message{
		Role: llm.RoleAssistant,
		Type: llm.MessageToolCall,
		ToolCall: &skills.ToolCall{
			ID: id, SkillName: "web-search", ToolName: "search_web",
		},
	}
}

func resultMsg(callID string) Message {
	result := skills.SuccessResult(callID, "ok")
	return Message{Role: llm.RoleTool, Type: llm.MessageToolResult, ToolResult: &result}
}

func TestPairWindowKeepsPairs(t *testing.T) {
	history := []Message{
		textMsg("one"),
		textMsg("two"),
		callMsg("c1"),
		resultMsg("c1"),
		textMsg("three"),
	}

	kept := PairWindow{}.Truncate(history, 1)
	if len(kept) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(kept))
	}
	if kept[0].Type != llm.MessageToolCall || kept[1].Type != llm.MessageToolResult {
		t.Fatalf("call/result pair must survive truncation: %+v", kept)
	}
	if kept[2].Content != "three" {
		t.Fatalf("newest text turn must be kept, got %q", kept[2].Content)
	}
}

func TestPairWindowNoTruncationNeeded(t *testing.T) {
	history := []Message{textMsg("one"), textMsg("two")}
	kept := PairWindow{}.Truncate(history, 5)
	if len(kept) != 2 {
		t.Fatalf("history under the limit must pass through, got %d", len(kept))
	}
}

func TestPairWindowDropsOldestText(t *testing.T) {
	history := []Message{
		textMsg("oldest"),
		textMsg("middle"),
		textMsg("newest"),
	}
	kept := PairWindow{}.Truncate(history, 2)
	if len(kept) != 2 || kept[0].Content != "middle" || kept[1].Content != "newest" {
		t.Fatalf("oldest text turn must go first, got %+v", kept)
	}
}

func TestPairWindowRescuesOrphanedCall(t *testing.T) {
	history := []Message{
		callMsg("c1"),
		textMsg("between"),
		resultMsg("c1"),
		textMsg("newest"),
	}
	kept := PairWindow{}.Truncate(history, 1)
	// The window starts at the result, but the call sits behind a
	// dropped text turn and must be pulled back in.
	if len(kept) != 3 {
		t.Fatalf("expected the pair plus the newest turn, got %d: %+v", len(kept), kept)
	}
	if kept[0].Type != llm.MessageToolCall || kept[0].ToolCall.ID != "c1" {
		t.Fatalf("orphaned call must lead the window, got %+v", kept[0])
	}
}

func TestPairWindowZeroLimit(t *testing.T) {
	history := []Message{textMsg("one")}
	kept := PairWindow{}.Truncate(history, 0)
	if len(kept) != 1 {
		t.Fatalf("non-positive limit must disable truncation")
	}
}
