// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

// Package executor dispatches model-requested tool calls to their owning
// skill implementations, running each batch concurrently with per-call
// failure isolation.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	agerrors "github.com/ambientlabs/agentrt/pkg/errors"
	"github.com/ambientlabs/agentrt/pkg/memory"
	"github.com/ambientlabs/agentrt/pkg/skills"
	"github.com/ambientlabs/agentrt/pkg/telemetry"
)

// DefaultCallTimeout bounds a single tool invocation.
const DefaultCallTimeout = 60 * time.Second

// Handler executes the tools of one skill. Implementations receive the
// resolved call and return a structured result value or an error.
type Handler interface {
	Execute(ctx context.Context, call skills.ToolCall) (any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, call skills.ToolCall) (any, error)

func (f HandlerFunc) Execute(ctx context.Context, call skills.ToolCall) (any, error) {
	return f(ctx, call)
}

// Executor routes tool calls to registered skill handlers. The handler
// map is built once at startup; ExecuteBatch is safe for concurrent use
// afterward.
type Executor struct {
	handlers map[string]Handler
	recorder memory.CallRecorder
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *telemetry.RuntimeMetrics
}

// Option configures an Executor.
type Option func(*Executor)

// WithRecorder enables tool-call audit records. Recorder failures are
// logged and never surface in results.
func WithRecorder(recorder memory.CallRecorder) Option {
	return func(e *Executor) { e.recorder = recorder }
}

// WithCallTimeout overrides the per-call timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithMetrics enables per-call instrumentation.
func WithMetrics(metrics *telemetry.RuntimeMetrics) Option {
	return func(e *Executor) { e.metrics = metrics }
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		handlers: make(map[string]Handler),
		timeout:  DefaultCallTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register binds a skill name to its handler. Adding a skill is a
// registration, not an edit to a dispatch chain.
func (e *Executor) Register(skillName string, handler Handler) {
	e.handlers[skillName] = handler
}

// ExecuteBatch runs every call in the batch concurrently and returns
// exactly one result per call, in input order. A failing, hanging, or
// panicking call affects only its own result slot.
func (e *Executor) ExecuteBatch(ctx context.Context, conversationID string, calls []skills.ToolCall) []skills.ToolResult {
	results := make([]skills.ToolResult, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call skills.ToolCall) {
			defer wg.Done()
			results[i] = e.executeOne(ctx, conversationID, call)
		}(i, call)
	}
	wg.Wait()

	return results
}

func (e *Executor) executeOne(ctx context.Context, conversationID string, call skills.ToolCall) (result skills.ToolResult) {
	if e.recorder != nil {
		if err := e.recorder.SaveToolCallRecord(ctx, conversationID, call); err != nil {
			e.logger.Warn("failed to save tool call record",
				"call_id", call.ID, "tool", call.QualifiedName(), "error", err)
		}
	}

	result = e.dispatch(ctx, call)

	if e.recorder != nil {
		if err := e.recorder.UpdateToolCallResult(ctx, call.ID, result); err != nil {
			e.logger.Warn("failed to update tool call record",
				"call_id", call.ID, "tool", call.QualifiedName(), "error", err)
		}
	}
	return result
}

func (e *Executor) dispatch(ctx context.Context, call skills.ToolCall) skills.ToolResult {
	// The activation control tool is handled by the runtime; the
	// executor just acknowledges it.
	if call.SkillName == skills.SystemSkillName && call.ToolName == skills.ActivateSkillToolName {
		skillName, _ := argumentString(call.Arguments, "skill_name")
		return skills.SuccessResult(call.ID, map[string]any{
			"status":     "skill_activated",
			"skill_name": skillName,
		})
	}

	// Calls whose bare name could not be resolved against the catalog
	// arrive attributed to the "unknown" skill; surface them as a
	// missing tool rather than a missing skill.
	if call.SkillName == "unknown" {
		return skills.ErrorResult(call.ID, agerrors.ToolNotFound(call.ToolName, call.SkillName).Error())
	}

	handler, ok := e.handlers[call.SkillName]
	if !ok {
		return skills.ErrorResult(call.ID, agerrors.SkillNotFound(call.SkillName).Error())
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)
	start := time.Now()

	// The handler runs in its own goroutine so the deadline holds even
	// when the handler ignores its context. A late return is discarded.
	go func() {
		// A panicking handler fails its own call, never the batch.
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("tool handler panicked",
					"call_id", call.ID, "tool", call.QualifiedName(), "panic", r)
				done <- outcome{err: agerrors.ToolExecutionFailed(fmt.Sprintf("panic: %v", r), nil)}
			}
		}()
		value, err := handler.Execute(callCtx, call)
		done <- outcome{value: value, err: err}
	}()

	select {
	case <-callCtx.Done():
		e.metrics.RecordToolExecution(ctx, call.SkillName, call.ToolName, false, time.Since(start))
		e.logger.Warn("tool call timed out",
			"call_id", call.ID, "tool", call.QualifiedName(), "timeout", e.timeout)
		return skills.ErrorResult(call.ID, agerrors.ToolExecutionFailed("timeout", callCtx.Err()).Error())

	case out := <-done:
		elapsed := time.Since(start)
		e.metrics.RecordToolExecution(ctx, call.SkillName, call.ToolName, out.err == nil, elapsed)

		if out.err != nil {
			if callCtx.Err() == context.DeadlineExceeded {
				e.logger.Warn("tool call timed out",
					"call_id", call.ID, "tool", call.QualifiedName(), "timeout", e.timeout)
				return skills.ErrorResult(call.ID, agerrors.ToolExecutionFailed("timeout", out.err).Error())
			}
			e.logger.Warn("tool call failed",
				"call_id", call.ID, "tool", call.QualifiedName(), "duration", elapsed, "error", out.err)
			return skills.ErrorResult(call.ID, out.err.Error())
		}

		e.logger.Debug("tool call completed",
			"call_id", call.ID, "tool", call.QualifiedName(), "duration", elapsed)
		return skills.SuccessResult(call.ID, out.value)
	}
}

func argumentString(arguments any, key string) (string, bool) {
	m, ok := arguments.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := m[key].(string)
	return s, ok
}
