// Copyright 2026 © The Ambient Labs Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics tracks agent loop behavior: tool executions, skill
// activations, and loop iteration counts.
type RuntimeMetrics struct {
	toolCounter       metric.Int64Counter
	toolDuration      metric.Float64Histogram
	activationCounter metric.Int64Counter
	iterationHist     metric.Int64Histogram
	modelCounter      metric.Int64Counter
}

// NewRuntimeMetrics registers the runtime instruments on the global
// meter provider.
func NewRuntimeMetrics() (*RuntimeMetrics, error) {
	meter := otel.Meter("agentrt/runtime")

	toolCounter, err := meter.Int64Counter(
		"agentrt.tools.executions",
		metric.WithDescription("Tool executions by skill, tool, and outcome"),
	)
	if err != nil {
		return nil, err
	}

	toolDuration, err := meter.Float64Histogram(
		"agentrt.tools.duration",
		metric.WithDescription("Tool execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activationCounter, err := meter.Int64Counter(
		"agentrt.skills.activations",
		metric.WithDescription("Skill activations by skill and outcome"),
	)
	if err != nil {
		return nil, err
	}

	iterationHist, err := meter.Int64Histogram(
		"agentrt.loop.iterations",
		metric.WithDescription("Iterations used per agent run"),
	)
	if err != nil {
		return nil, err
	}

	modelCounter, err := meter.Int64Counter(
		"agentrt.model.requests",
		metric.WithDescription("Model requests by provider"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		toolCounter:       toolCounter,
		toolDuration:      toolDuration,
		activationCounter: activationCounter,
		iterationHist:     iterationHist,
		modelCounter:      modelCounter,
	}, nil
}

// RecordToolExecution records one tool call outcome.
func (m *RuntimeMetrics) RecordToolExecution(ctx context.Context, skill, tool string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("skill", skill),
		attribute.String("tool", tool),
		attribute.String("outcome", outcome),
	)
	m.toolCounter.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordActivation records one skill activation attempt.
func (m *RuntimeMetrics) RecordActivation(ctx context.Context, skill string, ok bool) {
	if m == nil {
		return
	}
	outcome := "activated"
	if !ok {
		outcome = "unknown_skill"
	}
	m.activationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("skill", skill),
		attribute.String("outcome", outcome),
	))
}

// RecordRunIterations records how many loop iterations a run consumed.
func (m *RuntimeMetrics) RecordRunIterations(ctx context.Context, iterations int) {
	if m == nil {
		return
	}
	m.iterationHist.Record(ctx, int64(iterations))
}

// RecordModelRequest records one provider request.
func (m *RuntimeMetrics) RecordModelRequest(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.modelCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
	))
}
