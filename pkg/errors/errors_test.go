// SPDX-License-Identifier: Apache-2.0
package errors

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("connection refused")
	ae := New(CodeLLMError, "model request failed", cause)

	if ae.Code != CodeLLMError {
		t.Errorf("expected CodeLLMError, got %v", ae.Code)
	}
	if ae.Message != "model request failed" {
		t.Errorf("expected message 'model request failed', got %q", ae.Message)
	}
	if ae.Err != cause {
		t.Errorf("expected cause to be preserved")
	}
	if !errors.Is(ae, cause) {
		t.Errorf("expected errors.Is to work with wrapped error")
	}
}

func TestWithContext(t *testing.T) {
	ae := New(CodeToolExecutionFailed, "tool failed", nil)
	ae.WithContext("tool", "search_web").
		WithContext("args", map[string]interface{}{"query": "weather"})

	if ae.Context["tool"] != "search_web" {
		t.Errorf("expected context tool to be 'search_web'")
	}
	if ae.Context["args"] == nil {
		t.Errorf("expected context args to be set")
	}
}

func TestSkillNotFoundIsRecoverable(t *testing.T) {
	ae := SkillNotFound("calendar")
	if !ae.Recoverable {
		t.Errorf("expected skill-not-found to be recoverable")
	}
	if ae.Context["skill"] != "calendar" {
		t.Errorf("expected skill context to be set")
	}
}

func TestMaxIterationsExceededIsFatal(t *testing.T) {
	ae := MaxIterationsExceeded(10)
	if ae.Recoverable {
		t.Errorf("expected max-iterations to be fatal")
	}
	if ae.Context["max_iterations"] != 10 {
		t.Errorf("expected max_iterations context, got %v", ae.Context["max_iterations"])
	}
}

func TestTooManyToolCalls(t *testing.T) {
	ae := TooManyToolCalls(7, 5)
	if ae.Code != CodeTooManyToolCalls {
		t.Errorf("expected CodeTooManyToolCalls, got %v", ae.Code)
	}
	if ae.Context["actual"] != 7 || ae.Context["max"] != 5 {
		t.Errorf("expected actual/max context, got %v", ae.Context)
	}
}

func TestErrorsAs(t *testing.T) {
	var target *AgentError
	wrapped := ToolNotFound("fetch_webpage", "web-search")
	if !errors.As(error(wrapped), &target) {
		t.Fatalf("expected errors.As to match AgentError")
	}
	if target.Code != CodeToolNotFound {
		t.Errorf("expected CodeToolNotFound, got %v", target.Code)
	}
}

func TestAsAgentErrorWrapsUnknown(t *testing.T) {
	plain := errors.New("boom")
	ae := AsAgentError(plain)
	if ae.Code != CodeToolExecutionFailed {
		t.Errorf("expected wrapped code, got %v", ae.Code)
	}
	if AsAgentError(nil) != nil {
		t.Errorf("expected nil for nil error")
	}
}

func TestMarshalJSON(t *testing.T) {
	ae := DatabaseError("insert failed", errors.New("disk full"))
	data, err := json.Marshal(ae)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["code"] != string(CodeDatabaseError) {
		t.Errorf("expected code in JSON, got %v", decoded["code"])
	}
}
