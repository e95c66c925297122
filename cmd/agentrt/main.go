// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

// Command agentrt runs one agent turn from the command line: it loads
// the bundled skills, opens the conversation store, picks a model
// provider, and drives the agent loop for a single user message.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/ambientlabs/agentrt/pkg/config"
	"github.com/ambientlabs/agentrt/pkg/executor"
	"github.com/ambientlabs/agentrt/pkg/llm"
	"github.com/ambientlabs/agentrt/pkg/memory"
	"github.com/ambientlabs/agentrt/pkg/runtime"
	"github.com/ambientlabs/agentrt/pkg/skills"
	"github.com/ambientlabs/agentrt/pkg/telemetry"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		configPath     = flag.String("config", "", "path to config file")
		conversationID = flag.String("conversation", "", "conversation id (new one when empty)")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: agentrt [flags] <message>")
		os.Exit(2)
	}
	message := strings.Join(flag.Args(), " ")

	if err := run(ctx, *configPath, *conversationID, message); err != nil {
		fmt.Fprintf(os.Stderr, "agentrt: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, conversationID, message string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	shutdown, err := telemetry.InitWithConfig("agentrt", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer shutdown(context.Background())

	metrics, err := telemetry.NewRuntimeMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	registry := skills.NewRegistry()
	if err := registry.LoadBundledSkills(cfg.Skills.Dir); err != nil {
		return fmt.Errorf("load skills: %w", err)
	}
	logger.Info("skills loaded", "count", registry.Len(), "dir", cfg.Skills.Dir)

	store, err := memory.OpenSQLiteStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	provider, err := buildProvider(cfg.Provider)
	if err != nil {
		return err
	}
	logger.Info("provider selected", "name", provider.Name(), "local", provider.IsLocal())

	exec := executor.New(
		executor.WithRecorder(store),
		executor.WithCallTimeout(cfg.Runtime.ToolCallTimeout),
		executor.WithMetrics(metrics),
	)

	rt := runtime.New(registry, provider, exec, store,
		runtime.WithConfig(cfg.Runtime.AgentConfig()),
		runtime.WithMetrics(metrics),
	)

	if conversationID == "" {
		conversationID = uuid.NewString()
		logger.Info("starting new conversation", "conversation_id", conversationID)
	}

	text, err := rt.Run(ctx, conversationID, message)
	if text != "" {
		fmt.Println(text)
	}
	return err
}

func buildProvider(cfg config.ProviderConfig) (llm.Provider, error) {
	switch cfg.Kind {
	case "", "local":
		return llm.NewLocal(cfg.BaseURL, cfg.Model), nil
	case "openrouter":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openrouter requires provider.api_key")
		}
		return llm.NewOpenRouter(cfg.APIKey, cfg.Model), nil
	case "cloudflare":
		if cfg.WorkerURL == "" {
			return nil, fmt.Errorf("cloudflare requires provider.worker_url")
		}
		return llm.NewCloudflare(cfg.WorkerURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider kind: %s", cfg.Kind)
	}
}
