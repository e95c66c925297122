package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ambientlabs/agentrt/pkg/llm"
	"github.com/ambientlabs/agentrt/pkg/skills"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "agent.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func TestSQLiteStoreMessages(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.CreateConversation(ctx, "conv-1", "test"); err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	// Idempotent.
	if err := store.CreateConversation(ctx, "conv-1", "test"); err != nil {
		t.Fatalf("re-create conversation: %v", err)
	}

	call := skills.ToolCall{ID: "c1", SkillName: "web-search", ToolName: "search_web", Arguments: map[string]any{"query": "go"}}
	result := skills.SuccessResult("c1", map[string]any{"hits": float64(2)})

	saved, err := store.AddMessage(ctx, Message{ConversationID: "conv-1", Role: llm.RoleUser, Type: llm.MessageText, Content: "hello"})
	if err != nil {
		t.Fatalf("add text: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatalf("message must get id and timestamp: %+v", saved)
	}
	if _, err := store.AddMessage(ctx, Message{ConversationID: "conv-1", Role: llm.RoleAssistant, Type: llm.MessageToolCall, ToolCall: &call}); err != nil {
		t.Fatalf("add call: %v", err)
	}
	if _, err := store.AddMessage(ctx, Message{ConversationID: "conv-1", Role: llm.RoleTool, Type: llm.MessageToolResult, ToolResult: &result}); err != nil {
		t.Fatalf("add result: %v", err)
	}

	msgs, err := store.GetMessages(ctx, "conv-1")
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "hello" || msgs[0].Role != llm.RoleUser {
		t.Fatalf("unexpected first message: %+v", msgs[0])
	}
	if msgs[1].ToolCall == nil || msgs[1].ToolCall.ID != "c1" {
		t.Fatalf("tool call metadata lost: %+v", msgs[1])
	}
	if msgs[2].ToolResult == nil || !msgs[2].ToolResult.Success {
		t.Fatalf("tool result metadata lost: %+v", msgs[2])
	}
}

func TestSQLiteStoreConversationSkills(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveConversationSkill(ctx, "conv-1", "web-search"); err != nil {
		t.Fatalf("save skill: %v", err)
	}
	// Re-activation in a later run must not duplicate.
	if err := store.SaveConversationSkill(ctx, "conv-1", "web-search"); err != nil {
		t.Fatalf("re-save skill: %v", err)
	}
	if err := store.SaveConversationSkill(ctx, "conv-1", "calendar"); err != nil {
		t.Fatalf("save second skill: %v", err)
	}

	names, err := store.LoadConversationSkills(ctx, "conv-1")
	if err != nil {
		t.Fatalf("load skills: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 skills, got %v", names)
	}

	other, err := store.LoadConversationSkills(ctx, "conv-2")
	if err != nil {
		t.Fatalf("load other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no skills for other conversation, got %v", other)
	}
}

func TestSQLiteStoreToolCallRecords(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	call := skills.ToolCall{ID: "c1", SkillName: "web-search", ToolName: "search_web", Arguments: map[string]any{"query": "go"}}
	if err := store.SaveToolCallRecord(ctx, "conv-1", call); err != nil {
		t.Fatalf("save record: %v", err)
	}

	var status string
	if err := store.db.QueryRow(`SELECT status FROM tool_calls WHERE id = ?`, "c1").Scan(&status); err != nil {
		t.Fatalf("query status: %v", err)
	}
	if status != string(ToolCallPending) {
		t.Fatalf("expected pending before dispatch, got %s", status)
	}

	if err := store.UpdateToolCallResult(ctx, "c1", skills.ErrorResult("c1", "boom")); err != nil {
		t.Fatalf("update record: %v", err)
	}
	var errText string
	if err := store.db.QueryRow(`SELECT status, error FROM tool_calls WHERE id = ?`, "c1").Scan(&status, &errText); err != nil {
		t.Fatalf("query updated: %v", err)
	}
	if status != string(ToolCallFailed) || errText != "boom" {
		t.Fatalf("unexpected record state: %s %s", status, errText)
	}
}
