// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ambientlabs/agentrt/pkg/skills"
)

// InMemoryStore is a mutex-guarded Store and CallRecorder for tests and
// ephemeral sessions.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages map[string][]Message
	skillSet map[string]map[string]bool
	skills   map[string][]string
	records  map[string]toolCallRecord
}

type toolCallRecord struct {
	ConversationID string
	Call           skills.ToolCall
	Status         ToolCallStatus
	Result         *skills.ToolResult
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		messages: make(map[string][]Message),
		skillSet: make(map[string]map[string]bool),
		skills:   make(map[string][]string),
		records:  make(map[string]toolCallRecord),
	}
}

func (s *InMemoryStore) CreateConversation(_ context.Context, id, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[id]; !ok {
		s.messages[id] = nil
	}
	return nil
}

func (s *InMemoryStore) AddMessage(_ context.Context, msg Message) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	return msg, nil
}

func (s *InMemoryStore) GetMessages(_ context.Context, conversationID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[conversationID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *InMemoryStore) SaveConversationSkill(_ context.Context, conversationID, skillName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.skillSet[conversationID]
	if set == nil {
		set = make(map[string]bool)
		s.skillSet[conversationID] = set
	}
	if set[skillName] {
		return nil
	}
	set[skillName] = true
	s.skills[conversationID] = append(s.skills[conversationID], skillName)
	return nil
}

func (s *InMemoryStore) LoadConversationSkills(_ context.Context, conversationID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := s.skills[conversationID]
	out := make([]string, len(names))
	copy(out, names)
	return out, nil
}

func (s *InMemoryStore) SaveToolCallRecord(_ context.Context, conversationID string, call skills.ToolCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[call.ID] = toolCallRecord{
		ConversationID: conversationID,
		Call:           call,
		Status:         ToolCallPending,
	}
	return nil
}

func (s *InMemoryStore) UpdateToolCallResult(_ context.Context, callID string, result skills.ToolResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[callID]
	if !ok {
		return nil
	}
	record.Status = ToolCallCompleted
	if !result.Success {
		record.Status = ToolCallFailed
	}
	record.Result = &result
	s.records[callID] = record
	return nil
}

// ToolCallStatusFor reports the recorded status of a call, for tests.
func (s *InMemoryStore) ToolCallStatusFor(callID string) (ToolCallStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[callID]
	if !ok {
		return "", false
	}
	return record.Status, true
}

var (
	_ Store        = (*InMemoryStore)(nil)
	_ CallRecorder = (*InMemoryStore)(nil)
)
