// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// postJSON sends a JSON body and decodes the JSON reply into a generic
// map so the format translators can pick it apart.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body any) (map[string]any, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return decoded, nil
}

// parseOpenAIUsage pulls token counts out of an OpenAI-style response.
func parseOpenAIUsage(response map[string]any) Usage {
	usage, _ := response["usage"].(map[string]any)
	return Usage{
		PromptTokens:     intField(usage, "prompt_tokens"),
		CompletionTokens: intField(usage, "completion_tokens"),
		TotalTokens:      intField(usage, "total_tokens"),
	}
}

// parseGeminiUsage pulls token counts out of a Gemini-style response.
func parseGeminiUsage(response map[string]any) Usage {
	usage, _ := response["usageMetadata"].(map[string]any)
	return Usage{
		PromptTokens:     intField(usage, "promptTokenCount"),
		CompletionTokens: intField(usage, "candidatesTokenCount"),
		TotalTokens:      intField(usage, "totalTokenCount"),
	}
}

func intField(m map[string]any, key string) int {
	if m == nil {
		return 0
	}
	if f, ok := m[key].(float64); ok {
		return int(f)
	}
	return 0
}
