// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for the
// agent runtime.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies agent runtime errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeSkillNotFound indicates no skill with the given name is registered.
	CodeSkillNotFound ErrorCode = "SKILL_NOT_FOUND"

	// CodeToolNotFound indicates the named tool does not exist in its skill.
	CodeToolNotFound ErrorCode = "TOOL_NOT_FOUND"

	// CodeMaxIterationsExceeded indicates the agent loop hit its iteration cap.
	CodeMaxIterationsExceeded ErrorCode = "MAX_ITERATIONS_EXCEEDED"

	// CodeToolExecutionFailed indicates a tool invocation failed.
	CodeToolExecutionFailed ErrorCode = "TOOL_EXECUTION_FAILED"

	// CodeSkillParseError indicates a skill manifest could not be parsed.
	CodeSkillParseError ErrorCode = "SKILL_PARSE_ERROR"

	// CodeLLMError indicates a model provider error.
	CodeLLMError ErrorCode = "LLM_ERROR"

	// CodeDatabaseError indicates a persistence operation failed.
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"

	// CodeInvalidArguments indicates tool arguments failed validation.
	CodeInvalidArguments ErrorCode = "INVALID_ARGUMENTS"

	// CodeRegistryNotInitialized indicates the skill registry was queried before loading.
	CodeRegistryNotInitialized ErrorCode = "REGISTRY_NOT_INITIALIZED"

	// CodeTooManyToolCalls indicates a single turn exceeded the per-turn call cap.
	CodeTooManyToolCalls ErrorCode = "TOO_MANY_TOOL_CALLS"
)

// AgentError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type AgentError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Recoverable bool
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *AgentError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *AgentError) MarshalJSON() ([]byte, error) {
	type Alias AgentError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new AgentError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *AgentError {
	return &AgentError{
		Code:    code,
		Message: msg,
		Err:     cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *AgentError) WithContext(key string, value interface{}) *AgentError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *AgentError) WithRecoverable(recoverable bool) *AgentError {
	e.Recoverable = recoverable
	return e
}

// SkillNotFound reports an unknown skill name. Recoverable at the loop
// level: the failed activation is fed back to the model.
func SkillNotFound(name string) *AgentError {
	return New(CodeSkillNotFound, fmt.Sprintf("skill not found: %s", name), nil).
		WithContext("skill", name).
		WithRecoverable(true)
}

// ToolNotFound reports an unknown tool within a skill.
func ToolNotFound(tool, skill string) *AgentError {
	return New(CodeToolNotFound, fmt.Sprintf("tool not found: %s in skill %s", tool, skill), nil).
		WithContext("tool", tool).
		WithContext("skill", skill).
		WithRecoverable(true)
}

// MaxIterationsExceeded reports that the agent loop hit its iteration cap.
// Fatal to the current run.
func MaxIterationsExceeded(n int) *AgentError {
	return New(CodeMaxIterationsExceeded, fmt.Sprintf("maximum iterations (%d) exceeded", n), nil).
		WithContext("max_iterations", n)
}

// ToolExecutionFailed reports a failed tool invocation.
func ToolExecutionFailed(detail string, cause error) *AgentError {
	return New(CodeToolExecutionFailed, detail, cause).WithRecoverable(true)
}

// SkillParseError reports a manifest that could not be parsed. Recoverable
// at the registry level: the skill is skipped and loading continues.
func SkillParseError(detail string, cause error) *AgentError {
	return New(CodeSkillParseError, detail, cause).WithRecoverable(true)
}

// LLMError reports a model provider failure.
func LLMError(detail string, cause error) *AgentError {
	return New(CodeLLMError, detail, cause)
}

// DatabaseError reports a persistence failure.
func DatabaseError(detail string, cause error) *AgentError {
	return New(CodeDatabaseError, detail, cause)
}

// InvalidArguments reports tool arguments that failed validation.
func InvalidArguments(detail string) *AgentError {
	return New(CodeInvalidArguments, detail, nil).WithRecoverable(true)
}

// RegistryNotInitialized reports a query against an unloaded registry.
func RegistryNotInitialized() *AgentError {
	return New(CodeRegistryNotInitialized, "skill registry not initialized", nil)
}

// TooManyToolCalls reports a turn that exceeded the per-turn call cap.
// Fatal to the current run; the batch is rejected before execution.
func TooManyToolCalls(actual, max int) *AgentError {
	return New(CodeTooManyToolCalls, fmt.Sprintf("too many tool calls: %d exceeds max of %d", actual, max), nil).
		WithContext("actual", actual).
		WithContext("max", max)
}

// AsAgentError attempts to convert an error to an AgentError.
// Returns the error as AgentError if it is one, or wraps it otherwise.
func AsAgentError(err error) *AgentError {
	if err == nil {
		return nil
	}
	if ae, ok := err.(*AgentError); ok {
		return ae
	}
	return New(CodeToolExecutionFailed, "wrapped error", err)
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *AgentError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}
