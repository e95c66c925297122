// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"net/http"
	"time"

	agerrors "github.com/ambientlabs/agentrt/pkg/errors"
)

// OpenRouterProvider is the cloud adapter for OpenRouter's chat
// completions API (the OpenAI-style wire format).
type OpenRouterProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenRouter creates an OpenRouterProvider.
func NewOpenRouter(apiKey, model string) *OpenRouterProvider {
	return &OpenRouterProvider{
		baseURL: "https://openrouter.ai/api",
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func (p *OpenRouterProvider) WithBaseURL(baseURL string) *OpenRouterProvider {
	p.baseURL = baseURL
	return p
}

func (p *OpenRouterProvider) Name() string { return "openrouter" }

func (p *OpenRouterProvider) IsLocal() bool { return false }

// Generate sends one chat completion request and translates the reply.
func (p *OpenRouterProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	body := buildOpenAIBody(p.model, req)
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}

	response, err := postJSON(ctx, p.client, p.baseURL+"/v1/chat/completions", headers, body)
	if err != nil {
		return nil, agerrors.LLMError("openrouter request failed", err)
	}
	return openAIResult(response, req.Tools), nil
}
