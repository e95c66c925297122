// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"sync"
)

// MockProvider is a configurable Provider for tests.
type MockProvider struct {
	NameValue    string
	Local        bool
	GenerateFunc func(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

func (m *MockProvider) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

func (m *MockProvider) IsLocal() bool { return m.Local }

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &GenerateResult{Text: "mock response"}, nil
}

// ScriptedProvider returns a fixed sequence of results, one per call,
// and records every request it receives. Calls beyond the script repeat
// the last result.
type ScriptedProvider struct {
	mu       sync.Mutex
	script   []*GenerateResult
	requests []GenerateRequest
	Local    bool
}

// NewScriptedProvider creates a ScriptedProvider from an ordered script.
func NewScriptedProvider(script ...*GenerateResult) *ScriptedProvider {
	return &ScriptedProvider{script: script}
}

func (s *ScriptedProvider) Name() string { return "scripted" }

func (s *ScriptedProvider) IsLocal() bool { return s.Local }

func (s *ScriptedProvider) Generate(_ context.Context, req GenerateRequest) (*GenerateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	idx := len(s.requests) - 1
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	if idx < 0 {
		return &GenerateResult{Text: "done"}, nil
	}
	return s.script[idx], nil
}

// CallCount reports how many Generate calls have been made.
func (s *ScriptedProvider) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Request returns the i-th recorded request.
func (s *ScriptedProvider) Request(i int) GenerateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[i]
}
