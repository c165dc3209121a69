// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package mcts

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/AleutianAI/decisioncore/decision"
)

const tracerName = "decisioncore.mcts"

// Tracer provides OpenTelemetry tracing and structured logging for
// decisions. Spans are per-decision; per-iteration activity is debug-level
// logging only, since iterations complete in microseconds.
//
// Thread Safety: Safe for concurrent use.
type Tracer struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	enabled bool
}

// NewTracer creates a tracer.
//
// Inputs:
//   - logger: Logger for structured logging (nil falls back to slog.Default).
//   - enabled: Whether spans are emitted. When false all span methods
//     return no-ops and only logging remains.
//
// Outputs:
//   - *Tracer: Tracer instance.
func NewTracer(logger *slog.Logger, enabled bool) *Tracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracer{
		tracer:  otel.Tracer(tracerName),
		logger:  logger,
		enabled: enabled,
	}
}

// StartDecision starts the span covering one whole decide call.
//
// Inputs:
//   - ctx: Parent context.
//   - id: Decision identifier.
//   - initial: State the decision is made for.
//   - actionCount: Number of candidate actions.
//   - cfg: Effective search configuration.
//
// Outputs:
//   - context.Context: Context carrying the span.
//   - trace.Span: The created span (no-op when tracing is disabled).
func (t *Tracer) StartDecision(ctx context.Context, id string, initial decision.State, actionCount int, cfg Config) (context.Context, trace.Span) {
	t.logger.InfoContext(ctx, "decision started",
		slog.String("decision_id", id),
		slog.String("state_id", truncateForObs(initial.ID, 100)),
		slog.Int("actions", actionCount),
		slog.Int("max_iterations", cfg.MaxIterations),
		slog.Int("simulation_depth", cfg.SimulationDepth),
		slog.Bool("use_rave", cfg.UseRAVE),
		slog.Int("parallel", cfg.ParallelSimulations),
	)

	if !t.enabled {
		return ctx, noop.Span{}
	}

	return t.tracer.Start(ctx, "mcts.decide",
		trace.WithAttributes(
			attribute.String("mcts.decision_id", id),
			attribute.String("mcts.state_id", truncateForObs(initial.ID, 100)),
			attribute.Int("mcts.actions", actionCount),
			attribute.Int("mcts.max_iterations", cfg.MaxIterations),
			attribute.Float64("mcts.exploration_constant", cfg.ExplorationConstant),
			attribute.Int("mcts.simulation_depth", cfg.SimulationDepth),
			attribute.Bool("mcts.use_rave", cfg.UseRAVE),
			attribute.Int("mcts.parallel_simulations", cfg.ParallelSimulations),
			attribute.String("mcts.parallel_mode", cfg.ParallelMode.String()),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndDecision completes the decision span and logs the outcome.
//
// Inputs:
//   - ctx: Context carrying the span.
//   - span: The span returned by StartDecision.
//   - result: The finished decision.
func (t *Tracer) EndDecision(ctx context.Context, span trace.Span, result *DecisionResult) {
	diag := result.Diagnostics

	span.SetAttributes(
		attribute.String("mcts.selected_action", result.SelectedAction.ID),
		attribute.Float64("mcts.confidence", result.Confidence),
		attribute.Float64("mcts.estimated_value", result.EstimatedValue),
		attribute.Int("mcts.iterations", diag.Iterations),
		attribute.Int("mcts.tree_nodes", result.TreeStats.TotalNodes),
		attribute.Int("mcts.tree_max_depth", result.TreeStats.MaxDepth),
		attribute.Bool("mcts.truncated", diag.Truncated),
		attribute.Bool("mcts.degraded", diag.Degraded),
		attribute.Int("mcts.policy_failures", diag.PolicyFailures),
	)

	if diag.Degraded {
		span.AddEvent("degraded",
			trace.WithAttributes(attribute.String("reason", diag.DegradedReason)),
		)
		t.logger.WarnContext(ctx, "decision degraded",
			slog.String("decision_id", result.DecisionID),
			slog.String("reason", diag.DegradedReason),
		)
	}
	if diag.Truncated {
		span.AddEvent("truncated")
	}

	span.SetStatus(codes.Ok, "")
	span.End()

	t.logger.InfoContext(ctx, "decision completed",
		slog.String("decision_id", result.DecisionID),
		slog.String("selected_action", result.SelectedAction.ID),
		slog.Float64("confidence", result.Confidence),
		slog.Int("iterations", diag.Iterations),
		slog.Int("tree_nodes", result.TreeStats.TotalNodes),
		slog.Bool("truncated", diag.Truncated),
		slog.Bool("degraded", diag.Degraded),
		slog.Int("policy_failures", diag.PolicyFailures),
		slog.Duration("elapsed", diag.Elapsed),
	)
}

// RecordIteration logs one committed iteration at debug level.
func (t *Tracer) RecordIteration(ctx context.Context, iteration int, reward float64, steps int) {
	t.logger.DebugContext(ctx, "iteration committed",
		slog.Int("iteration", iteration),
		slog.Float64("reward", reward),
		slog.Int("steps", steps),
	)
}

// RecordPolicyFailure records a recovered policy error as a span event and
// a warning log.
func (t *Tracer) RecordPolicyFailure(ctx context.Context, iteration int, phase string, err error) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("policy_failure",
			trace.WithAttributes(
				attribute.Int("iteration", iteration),
				attribute.String("phase", phase),
				attribute.String("error", err.Error()),
			),
		)
	}

	t.logger.WarnContext(ctx, "policy failure recovered",
		slog.Int("iteration", iteration),
		slog.String("phase", phase),
		slog.String("error", err.Error()),
	)
}

// truncateForObs truncates a string for use in span attributes.
func truncateForObs(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// LoggerWithTrace returns a logger annotated with the trace context.
//
// Inputs:
//   - ctx: Context that may contain trace information.
//   - logger: Base logger.
//
// Outputs:
//   - *slog.Logger: Logger with trace_id and span_id if available.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		slog.String("trace_id", spanCtx.TraceID().String()),
		slog.String("span_id", spanCtx.SpanID().String()),
	)
}
