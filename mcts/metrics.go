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
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for decision metrics.
var meter = otel.Meter("decisioncore.mcts")

// Metrics for decide calls.
var (
	decisionsTotal      metric.Int64Counter
	iterationsTotal     metric.Int64Counter
	policyFailuresTotal metric.Int64Counter
	truncationsTotal    metric.Int64Counter

	decisionDuration   metric.Float64Histogram
	decisionConfidence metric.Float64Histogram
	treeNodesHist      metric.Int64Histogram
	treeDepthHist      metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		decisionsTotal, err = meter.Int64Counter(
			"mcts_decisions_total",
			metric.WithDescription("Total decide calls by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		iterationsTotal, err = meter.Int64Counter(
			"mcts_iterations_total",
			metric.WithDescription("Total committed search iterations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		policyFailuresTotal, err = meter.Int64Counter(
			"mcts_policy_failures_total",
			metric.WithDescription("Total recovered policy errors"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		truncationsTotal, err = meter.Int64Counter(
			"mcts_truncations_total",
			metric.WithDescription("Total decisions truncated by deadline"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		decisionDuration, err = meter.Float64Histogram(
			"mcts_decision_duration_seconds",
			metric.WithDescription("Wall-clock time per decide call"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		decisionConfidence, err = meter.Float64Histogram(
			"mcts_decision_confidence",
			metric.WithDescription("Confidence of the selected action"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		treeNodesHist, err = meter.Int64Histogram(
			"mcts_tree_nodes",
			metric.WithDescription("Final tree size in nodes"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		treeDepthHist, err = meter.Int64Histogram(
			"mcts_tree_depth",
			metric.WithDescription("Final tree maximum depth"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordDecision records the metrics for one finished decide call.
//
// Thread Safety: Safe for concurrent use.
func recordDecision(ctx context.Context, result *DecisionResult) {
	if err := initMetrics(); err != nil {
		return
	}

	diag := result.Diagnostics
	outcome := "completed"
	if diag.Degraded {
		outcome = "degraded"
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))

	decisionsTotal.Add(ctx, 1, attrs)
	iterationsTotal.Add(ctx, int64(diag.Iterations))
	if diag.PolicyFailures > 0 {
		policyFailuresTotal.Add(ctx, int64(diag.PolicyFailures))
	}
	if diag.Truncated {
		truncationsTotal.Add(ctx, 1)
	}

	decisionDuration.Record(ctx, diag.Elapsed.Seconds(), attrs)
	decisionConfidence.Record(ctx, result.Confidence)
	treeNodesHist.Record(ctx, int64(result.TreeStats.TotalNodes))
	treeDepthHist.Record(ctx, int64(result.TreeStats.MaxDepth))
}
