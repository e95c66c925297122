// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads runtime configuration from defaults, an optional
// YAML file, and AGENTRT_-prefixed environment variables, in that order.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ambientlabs/agentrt/pkg/skills"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Provider  ProviderConfig  `koanf:"provider"`
	Runtime   RuntimeConfig   `koanf:"runtime"`
	Skills    SkillsConfig    `koanf:"skills"`
	Store     StoreConfig     `koanf:"store"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type ProviderConfig struct {
	Kind      string `koanf:"kind"` // local, openrouter, cloudflare
	Model     string `koanf:"model"`
	BaseURL   string `koanf:"base_url"`
	APIKey    string `koanf:"api_key"`
	WorkerURL string `koanf:"worker_url"`
}

type RuntimeConfig struct {
	LocalContextLimit   int           `koanf:"local_context_limit"`
	CloudContextLimit   int           `koanf:"cloud_context_limit"`
	MaxToolCallsPerTurn int           `koanf:"max_tool_calls_per_turn"`
	MaxIterations       int           `koanf:"max_iterations"`
	EnableThinking      bool          `koanf:"enable_thinking"`
	ToolCallTimeout     time.Duration `koanf:"tool_call_timeout"`
}

// AgentConfig maps the runtime section onto the agent loop limits.
func (r RuntimeConfig) AgentConfig() skills.AgentRuntimeConfig {
	return skills.AgentRuntimeConfig{
		LocalContextLimit:   r.LocalContextLimit,
		CloudContextLimit:   r.CloudContextLimit,
		MaxToolCallsPerTurn: r.MaxToolCallsPerTurn,
		MaxIterations:       r.MaxIterations,
		EnableThinking:      r.EnableThinking,
	}
}

type SkillsConfig struct {
	Dir string `koanf:"dir"`
}

type StoreConfig struct {
	Path string `koanf:"path"`
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp, none
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

// Load reads configuration. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := skills.DefaultRuntimeConfig()
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("provider.kind", "local")
	k.Set("provider.base_url", "http://localhost:8080")
	k.Set("runtime.local_context_limit", defaults.LocalContextLimit)
	k.Set("runtime.cloud_context_limit", defaults.CloudContextLimit)
	k.Set("runtime.max_tool_calls_per_turn", defaults.MaxToolCallsPerTurn)
	k.Set("runtime.max_iterations", defaults.MaxIterations)
	k.Set("runtime.enable_thinking", defaults.EnableThinking)
	k.Set("runtime.tool_call_timeout", "60s")
	k.Set("skills.dir", "skills")
	k.Set("store.path", "agentrt.db")
	k.Set("telemetry.exporter", "none")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// AGENTRT_PROVIDER_API_KEY -> provider.api_key. Section names are
	// single words, so only the first underscore separates section from
	// key; the rest stay part of the key.
	if err := k.Load(env.Provider("AGENTRT_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "AGENTRT_"))
		section, key, found := strings.Cut(s, "_")
		if !found {
			return s
		}
		return section + "." + key
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
