// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"net/http"
	"time"

	agerrors "github.com/ambientlabs/agentrt/pkg/errors"
	"github.com/ambientlabs/agentrt/pkg/skills"
)

// LocalProvider talks to a llama.cpp server through its OpenAI-compatible
// chat completions endpoint (the OpenAI-style wire format).
type LocalProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewLocal creates a LocalProvider.
func NewLocal(baseURL, model string) *LocalProvider {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &LocalProvider{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 300 * time.Second},
	}
}

func (p *LocalProvider) Name() string { return "local" }

func (p *LocalProvider) IsLocal() bool { return true }

// Generate sends one chat completion request and translates the reply.
func (p *LocalProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	body := buildOpenAIBody(p.model, req)

	response, err := postJSON(ctx, p.client, p.baseURL+"/v1/chat/completions", nil, body)
	if err != nil {
		return nil, agerrors.LLMError("local inference request failed", err)
	}
	return openAIResult(response, req.Tools), nil
}

// buildOpenAIBody assembles an OpenAI-style request body. The system prompt
// is prepended as a system-role message.
func buildOpenAIBody(model string, req GenerateRequest) map[string]any {
	messages := make([]map[string]any, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, map[string]any{
			"role":    "system",
			"content": req.SystemPrompt,
		})
	}
	messages = append(messages, FormatOpenAIMessages(req.Messages)...)

	body := map[string]any{
		"model":    model,
		"messages": messages,
		"stream":   false,
	}
	if len(req.Tools) > 0 {
		body["tools"] = ToolsToOpenAIFormat(req.Tools)
	}
	if req.Options.Temperature != 0 {
		body["temperature"] = req.Options.Temperature
	}
	if req.Options.MaxTokens != 0 {
		body["max_tokens"] = req.Options.MaxTokens
	}
	return body
}

// openAIResult translates an OpenAI-style response into the neutral result.
func openAIResult(response map[string]any, available []skills.ToolDefinition) *GenerateResult {
	result := &GenerateResult{Usage: parseOpenAIUsage(response)}
	if HasOpenAIToolCalls(response) {
		result.ToolCalls = ParseOpenAIToolCalls(response, available)
	}
	if text, ok := ExtractOpenAIText(response); ok {
		result.Text = text
	}
	return result
}
