// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"net/http"
	"time"

	agerrors "github.com/ambientlabs/agentrt/pkg/errors"
)

// CloudflareProvider is the cloud adapter for a Workers AI gateway that
// speaks the Gemini-style wire format. The system prompt travels as a separate
// systemInstruction block rather than a leading message.
type CloudflareProvider struct {
	workerURL string
	apiKey    string
	model     string
	client    *http.Client
}

// NewCloudflare creates a CloudflareProvider.
func NewCloudflare(workerURL, apiKey, model string) *CloudflareProvider {
	return &CloudflareProvider{
		workerURL: workerURL,
		apiKey:    apiKey,
		model:     model,
		client:    &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *CloudflareProvider) Name() string { return "cloudflare" }

func (p *CloudflareProvider) IsLocal() bool { return false }

// Generate sends one request to the worker and translates the reply.
func (p *CloudflareProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	body := map[string]any{
		"model":    p.model,
		"contents": FormatGeminiMessages(req.Messages),
	}
	if req.SystemPrompt != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]any{{"text": req.SystemPrompt}},
		}
	}
	if len(req.Tools) > 0 {
		body["tools"] = []map[string]any{ToolsToGeminiFormat(req.Tools)}
	}
	if req.Options.Temperature != 0 || req.Options.MaxTokens != 0 {
		generation := map[string]any{}
		if req.Options.Temperature != 0 {
			generation["temperature"] = req.Options.Temperature
		}
		if req.Options.MaxTokens != 0 {
			generation["maxOutputTokens"] = req.Options.MaxTokens
		}
		body["generationConfig"] = generation
	}

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	response, err := postJSON(ctx, p.client, p.workerURL, headers, body)
	if err != nil {
		return nil, agerrors.LLMError("cloudflare worker request failed", err)
	}

	result := &GenerateResult{Usage: parseGeminiUsage(response)}
	if HasGeminiToolCalls(response) {
		result.ToolCalls = ParseGeminiToolCalls(response, req.Tools)
	}
	if text, ok := ExtractGeminiText(response); ok {
		result.Text = text
	}
	return result, nil
}
