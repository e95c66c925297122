// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

// Package runtime implements the agent loop: progressive skill
// disclosure, model requests, tool execution, and bounded iteration,
// driven as a state machine over one conversation at a time.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	agerrors "github.com/ambientlabs/agentrt/pkg/errors"
	"github.com/ambientlabs/agentrt/pkg/executor"
	"github.com/ambientlabs/agentrt/pkg/llm"
	"github.com/ambientlabs/agentrt/pkg/memory"
	"github.com/ambientlabs/agentrt/pkg/skills"
	"github.com/ambientlabs/agentrt/pkg/telemetry"
)

// ErrConversationRunning is returned when a second loop is started for a
// conversation that already has one in flight.
var ErrConversationRunning = errors.New("agent loop already running for this conversation")

// Runtime orchestrates the registry, provider, executor, and store into
// a bounded multi-turn exchange.
type Runtime struct {
	registry *skills.Registry
	provider llm.Provider
	executor *executor.Executor
	store    memory.Store
	config   skills.AgentRuntimeConfig
	truncate memory.TruncationStrategy
	logger   *slog.Logger
	metrics  *telemetry.RuntimeMetrics

	// running holds one entry per conversation with a loop in flight.
	running sync.Map
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithConfig overrides the default runtime limits.
func WithConfig(config skills.AgentRuntimeConfig) Option {
	return func(r *Runtime) { r.config = config }
}

// WithTruncation overrides the default pair-preserving truncation.
func WithTruncation(strategy memory.TruncationStrategy) Option {
	return func(r *Runtime) { r.truncate = strategy }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) { r.logger = logger }
}

// WithMetrics enables runtime instrumentation. A nil receiver is safe,
// so leaving this out costs nothing.
func WithMetrics(metrics *telemetry.RuntimeMetrics) Option {
	return func(r *Runtime) { r.metrics = metrics }
}

// New creates a Runtime. The registry must already be loaded.
func New(registry *skills.Registry, provider llm.Provider, exec *executor.Executor, store memory.Store, opts ...Option) *Runtime {
	r := &Runtime{
		registry: registry,
		provider: provider,
		executor: exec,
		store:    store,
		config:   skills.DefaultRuntimeConfig(),
		truncate: memory.PairWindow{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives the agent loop for one user message and returns the final
// assistant text. Partial text produced before a fatal condition is
// returned alongside the error.
func (r *Runtime) Run(ctx context.Context, conversationID, userMessage string) (string, error) {
	if !r.registry.Loaded() {
		return "", agerrors.RegistryNotInitialized()
	}
	if _, alreadyRunning := r.running.LoadOrStore(conversationID, true); alreadyRunning {
		return "", ErrConversationRunning
	}
	defer r.running.Delete(conversationID)

	if err := r.store.CreateConversation(ctx, conversationID, titleFromMessage(userMessage)); err != nil {
		return "", err
	}

	// Skills activated in earlier runs of this conversation stay active.
	active := make(map[string]bool)
	prior, err := r.store.LoadConversationSkills(ctx, conversationID)
	if err != nil {
		r.logger.Warn("failed to load prior skill activations", "conversation_id", conversationID, "error", err)
	}
	for _, name := range prior {
		active[name] = true
	}

	r.saveMessage(ctx, memory.Message{
		ConversationID: conversationID,
		Role:           llm.RoleUser,
		Content:        userMessage,
		Type:           llm.MessageText,
	})

	// Instructions injected after an activation live only for this run.
	enrichments := make(map[string]string)
	var partial string

	for iteration := 1; iteration <= r.config.MaxIterations; iteration++ {
		// Cancellation is advisory and polled only here, never mid-flight.
		if err := ctx.Err(); err != nil {
			r.logger.Info("agent loop cancelled",
				"conversation_id", conversationID, "iteration", iteration)
			return partial, nil
		}

		history, err := r.loadContext(ctx, conversationID, enrichments)
		if err != nil {
			return partial, err
		}
		catalog := r.buildCatalog(active)

		r.metrics.RecordModelRequest(ctx, r.provider.Name())
		result, err := r.provider.Generate(ctx, llm.GenerateRequest{
			SystemPrompt:   r.buildSystemPrompt(active),
			Messages:       history,
			Tools:          catalog,
			ConversationID: conversationID,
		})
		if err != nil {
			return partial, err
		}

		if result.Text != "" {
			if partial != "" {
				partial += "\n"
			}
			partial += result.Text
			r.saveMessage(ctx, memory.Message{
				ConversationID: conversationID,
				Role:           llm.RoleAssistant,
				Content:        result.Text,
				Type:           llm.MessageText,
			})
		}

		if !result.HasToolCalls() {
			r.metrics.RecordRunIterations(ctx, iteration)
			r.logger.Info("agent loop finished",
				"conversation_id", conversationID, "iterations", iteration)
			return partial, nil
		}

		if len(result.ToolCalls) > r.config.MaxToolCallsPerTurn {
			return partial, agerrors.TooManyToolCalls(len(result.ToolCalls), r.config.MaxToolCallsPerTurn)
		}

		for i := range result.ToolCalls {
			call := result.ToolCalls[i]
			r.saveMessage(ctx, memory.Message{
				ConversationID: conversationID,
				Role:           llm.RoleAssistant,
				Type:           llm.MessageToolCall,
				ToolCall:       &call,
			})
		}

		results := r.executor.ExecuteBatch(ctx, conversationID, result.ToolCalls)

		for i := range results {
			call := result.ToolCalls[i]
			toolResult := results[i]

			if call.SkillName == skills.SystemSkillName && call.ToolName == skills.ActivateSkillToolName {
				toolResult = r.handleActivation(ctx, conversationID, call, toolResult, active, enrichments)
			}

			r.saveMessage(ctx, memory.Message{
				ConversationID: conversationID,
				Role:           llm.RoleTool,
				Type:           llm.MessageToolResult,
				ToolResult:     &toolResult,
			})
		}
	}

	return partial, agerrors.MaxIterationsExceeded(r.config.MaxIterations)
}

// handleActivation applies a requested skill activation. Unknown skills
// are recoverable: the model gets an error-shaped result and the loop
// continues.
func (r *Runtime) handleActivation(ctx context.Context, conversationID string, call skills.ToolCall, result skills.ToolResult, active map[string]bool, enrichments map[string]string) skills.ToolResult {
	request := parseActivationRequest(call.Arguments)
	if request.SkillName == "" {
		return skills.ErrorResult(call.ID, agerrors.InvalidArguments("activate_skill requires skill_name").Error())
	}

	skill, ok := r.registry.GetSkill(request.SkillName)
	if !ok {
		r.metrics.RecordActivation(ctx, request.SkillName, false)
		r.logger.Warn("model requested unknown skill",
			"conversation_id", conversationID, "skill", request.SkillName)
		return skills.ErrorResult(call.ID, agerrors.SkillNotFound(request.SkillName).Error())
	}
	r.metrics.RecordActivation(ctx, skill.Name, true)

	if !active[skill.Name] {
		active[skill.Name] = true
		if err := r.store.SaveConversationSkill(ctx, conversationID, skill.Name); err != nil {
			r.logger.Warn("failed to persist skill activation",
				"conversation_id", conversationID, "skill", skill.Name, "error", err)
		}
	}
	if skill.Instructions != "" {
		enrichments[call.ID] = skill.Instructions
	}

	if r.config.EnableThinking {
		r.saveMessage(ctx, memory.Message{
			ConversationID: conversationID,
			Role:           llm.RoleAssistant,
			Content:        fmt.Sprintf("Activating skill %q: %s", skill.Name, request.Reason),
			Type:           llm.MessageThinking,
		})
	}

	r.logger.Info("skill activated",
		"conversation_id", conversationID, "skill", skill.Name, "reason", request.Reason)
	return result
}

// buildCatalog assembles the tool catalog for the current turn: the
// activation control tool plus the full definitions of active skills.
func (r *Runtime) buildCatalog(active map[string]bool) []skills.ToolDefinition {
	catalog := []skills.ToolDefinition{skills.ActivateSkillTool()}
	for _, name := range r.registry.SkillNames() {
		if active[name] {
			catalog = append(catalog, r.registry.SkillTools(name)...)
		}
	}
	return catalog
}

// saveMessage appends one message; persistence failures are logged and
// swallowed so they never abort an otherwise-successful turn.
func (r *Runtime) saveMessage(ctx context.Context, msg memory.Message) {
	if _, err := r.store.AddMessage(ctx, msg); err != nil {
		r.logger.Warn("failed to persist message",
			"conversation_id", msg.ConversationID, "type", msg.Type, "error", err)
	}
}

// titleFromMessage derives a conversation title from the opening user
// message, truncated at a word boundary.
func titleFromMessage(message string) string {
	const maxTitle = 50
	message = strings.TrimSpace(message)
	if len(message) <= maxTitle {
		return message
	}
	cut := message[:maxTitle]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}

func parseActivationRequest(arguments any) skills.SkillActivationRequest {
	var request skills.SkillActivationRequest
	m, ok := arguments.(map[string]any)
	if !ok {
		return request
	}
	request.SkillName, _ = m["skill_name"].(string)
	request.Reason, _ = m["reason"].(string)
	return request
}
