// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	agerrors "github.com/ambientlabs/agentrt/pkg/errors"
	"github.com/ambientlabs/agentrt/pkg/llm"
	"github.com/ambientlabs/agentrt/pkg/skills"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the durable Store and CallRecorder implementation.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database handle and ensures schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if err := ensureSchema(db); err != nil {
		return nil, agerrors.DatabaseError("failed to ensure schema", err)
	}
	return &SQLiteStore{db: db}, nil
}

// OpenSQLiteStore opens (or creates) the database file at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, agerrors.DatabaseError("failed to open database", err)
	}
	// modernc.org/sqlite handles do not tolerate concurrent writers.
	db.SetMaxOpenConns(1)
	return NewSQLiteStore(db)
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS conversation_messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			message_type TEXT NOT NULL,
			metadata TEXT,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON conversation_messages(conversation_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS tool_calls (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			skill_name TEXT NOT NULL,
			tool_name TEXT NOT NULL,
			arguments TEXT,
			status TEXT NOT NULL,
			result TEXT,
			error TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tool_calls_conversation ON tool_calls(conversation_id);`,
		`CREATE TABLE IF NOT EXISTS conversation_skills (
			conversation_id TEXT NOT NULL,
			skill_name TEXT NOT NULL,
			activated_at INTEGER NOT NULL,
			UNIQUE(conversation_id, skill_name)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// messageMetadata is the JSON blob stored alongside structured messages.
type messageMetadata struct {
	ToolCall   *skills.ToolCall   `json:"tool_call,omitempty"`
	ToolResult *skills.ToolResult `json:"tool_result,omitempty"`
}

func (s *SQLiteStore) CreateConversation(ctx context.Context, id, title string) error {
	now := time.Now().UnixMilli()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		id, title, now, now)
	if err != nil {
		return agerrors.DatabaseError("failed to create conversation", err)
	}
	return nil
}

func (s *SQLiteStore) AddMessage(ctx context.Context, msg Message) (Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	var metadata any
	if msg.ToolCall != nil || msg.ToolResult != nil {
		data, err := json.Marshal(messageMetadata{ToolCall: msg.ToolCall, ToolResult: msg.ToolResult})
		if err != nil {
			return Message{}, agerrors.DatabaseError("failed to encode message metadata", err)
		}
		metadata = string(data)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_messages (id, conversation_id, role, content, message_type, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, string(msg.Role), msg.Content, string(msg.Type), metadata, msg.CreatedAt.UnixMilli())
	if err != nil {
		return Message{}, agerrors.DatabaseError("failed to add message", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ?`,
		time.Now().UnixMilli(), msg.ConversationID)
	if err != nil {
		return Message{}, agerrors.DatabaseError("failed to touch conversation", err)
	}
	return msg, nil
}

func (s *SQLiteStore) GetMessages(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, message_type, metadata, created_at
		 FROM conversation_messages WHERE conversation_id = ? ORDER BY created_at, id`,
		conversationID)
	if err != nil {
		return nil, agerrors.DatabaseError("failed to query messages", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var (
			msg       Message
			role      string
			msgType   string
			metadata  sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &msgType, &metadata, &createdAt); err != nil {
			return nil, agerrors.DatabaseError("failed to scan message", err)
		}
		msg.ConversationID = conversationID
		msg.Role = llm.Role(role)
		msg.Type = llm.MessageType(msgType)
		msg.CreatedAt = time.UnixMilli(createdAt)

		if metadata.Valid && metadata.String != "" {
			var meta messageMetadata
			if err := json.Unmarshal([]byte(metadata.String), &meta); err == nil {
				msg.ToolCall = meta.ToolCall
				msg.ToolResult = meta.ToolResult
			}
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, agerrors.DatabaseError("failed to iterate messages", err)
	}
	return msgs, nil
}

func (s *SQLiteStore) SaveConversationSkill(ctx context.Context, conversationID, skillName string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_skills (conversation_id, skill_name, activated_at) VALUES (?, ?, ?)
		 ON CONFLICT(conversation_id, skill_name) DO NOTHING`,
		conversationID, skillName, time.Now().UnixMilli())
	if err != nil {
		return agerrors.DatabaseError("failed to save conversation skill", err)
	}
	return nil
}

func (s *SQLiteStore) LoadConversationSkills(ctx context.Context, conversationID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT skill_name FROM conversation_skills WHERE conversation_id = ? ORDER BY activated_at`,
		conversationID)
	if err != nil {
		return nil, agerrors.DatabaseError("failed to query conversation skills", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, agerrors.DatabaseError("failed to scan skill name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, agerrors.DatabaseError("failed to iterate skills", err)
	}
	return names, nil
}

func (s *SQLiteStore) SaveToolCallRecord(ctx context.Context, conversationID string, call skills.ToolCall) error {
	args, err := json.Marshal(call.Arguments)
	if err != nil {
		args = []byte("{}")
	}
	now := time.Now().UnixMilli()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tool_calls (id, conversation_id, skill_name, tool_name, arguments, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		call.ID, conversationID, call.SkillName, call.ToolName, string(args), string(ToolCallPending), now, now)
	if err != nil {
		return agerrors.DatabaseError("failed to save tool call record", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateToolCallResult(ctx context.Context, callID string, result skills.ToolResult) error {
	status := ToolCallCompleted
	var resultJSON, errMsg any
	if result.Success {
		if data, err := json.Marshal(result.Result); err == nil {
			resultJSON = string(data)
		}
	} else {
		status = ToolCallFailed
		errMsg = result.Error
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE tool_calls SET status = ?, result = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), resultJSON, errMsg, time.Now().UnixMilli(), callID)
	if err != nil {
		return agerrors.DatabaseError("failed to update tool call record", err)
	}
	return nil
}

var (
	_ Store        = (*SQLiteStore)(nil)
	_ CallRecorder = (*SQLiteStore)(nil)
)
