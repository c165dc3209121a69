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
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/decisioncore/decision"
)

// DecisionResult is what a decide call hands back: the chosen action plus
// everything needed to audit how the choice was made. It is plain data; no
// tree internals leak and the whole structure serializes as-is.
type DecisionResult struct {
	// DecisionID uniquely identifies this decide call in logs and audits.
	DecisionID string `json:"decision_id"`

	// SelectedAction is the root child with the highest visit count, the
	// standard low-variance MCTS selection rule.
	SelectedAction decision.Action `json:"selected_action"`

	// Confidence is visits(selected)/visits(root) in [0,1]. Degraded
	// decisions report 0.
	Confidence float64 `json:"confidence"`

	// EstimatedValue is the selected child's mean reward.
	EstimatedValue float64 `json:"estimated_value"`

	// ActionStats ranks every expanded root child by visit count.
	ActionStats []ActionStat `json:"action_stats"`

	// TreeStats summarizes the final tree shape.
	TreeStats TreeStats `json:"tree_stats"`

	// Diagnostics carries the run metadata: truncation, degradation,
	// failures, seed, timing.
	Diagnostics Diagnostics `json:"diagnostics"`
}

// ActionStat is the per-action summary in a result.
type ActionStat struct {
	Action     decision.Action `json:"action"`
	VisitCount uint64          `json:"visit_count"`
	MeanReward float64         `json:"mean_reward"`

	// UCBScore is the plain UCB1 score recomputed against the final root
	// statistics. Diagnostic only; selection is by visit count.
	UCBScore float64 `json:"ucb_score"`
}

// TreeStats summarizes the search tree once the loop has finished.
type TreeStats struct {
	TotalNodes   int     `json:"total_nodes"`
	TotalVisits  uint64  `json:"total_visits"`
	MaxDepth     int     `json:"max_depth"`
	AverageDepth float64 `json:"average_depth"`
	LeafNodes    int     `json:"leaf_nodes"`
}

// PolicyFailure is one recorded policy error. The engine keeps a bounded
// sample; the total count lives in Diagnostics.PolicyFailures.
type PolicyFailure struct {
	Iteration int    `json:"iteration"`
	Phase     string `json:"phase"`
	Error     string `json:"error"`
}

// Diagnostics describes how the search ran.
type Diagnostics struct {
	// Truncated is set when the deadline expired before the iteration
	// budget was spent. Truncation is a normal termination, not an error.
	Truncated bool `json:"truncated"`

	// Degraded is set when no search informed the choice (non-positive
	// budget, or truncation before the first expansion) and the action
	// was drawn uniformly at random.
	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degraded_reason,omitempty"`

	// Iterations counts fully committed search iterations.
	Iterations int `json:"iterations"`

	// PolicyFailures counts recovered policy errors across all rollouts;
	// FailureSamples keeps the first few for inspection.
	PolicyFailures int             `json:"policy_failures"`
	FailureSamples []PolicyFailure `json:"failure_samples,omitempty"`

	// Seed is the effective seed of the run, for replaying a decision.
	Seed int64 `json:"seed"`

	// Elapsed is the wall-clock time spent inside decide.
	Elapsed time.Duration `json:"elapsed"`
}

// Degradation reasons surfaced in Diagnostics.DegradedReason.
const (
	degradedNoBudget  = "non-positive iteration budget"
	degradedEmptyTree = "search ended before any expansion"
)

// newDecisionID mints the per-call identifier.
func newDecisionID() string {
	return uuid.NewString()
}

// diagUCB recomputes the diagnostic UCB1 score against final root
// statistics. Unvisited entries report 0 rather than +Inf so results stay
// JSON-encodable.
func diagUCB(mean float64, visits, rootVisits uint64, c float64) float64 {
	if visits == 0 || rootVisits == 0 {
		return 0
	}
	return ucb1(mean, visits, rootVisits, c)
}

// sortActionStats orders by visit count descending, ties by ascending
// action ID so equal-visit orderings are still deterministic.
func sortActionStats(stats []ActionStat) {
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].VisitCount != stats[j].VisitCount {
			return stats[i].VisitCount > stats[j].VisitCount
		}
		return stats[i].Action.ID < stats[j].Action.ID
	})
}

// buildDecision assembles a result from per-action root statistics. stats
// must be non-empty; degraded paths use uniformDecision instead.
func buildDecision(id string, stats []ActionStat, rootVisits uint64, ts TreeStats, cfg Config, diag Diagnostics) *DecisionResult {
	for i := range stats {
		stats[i].UCBScore = diagUCB(stats[i].MeanReward, stats[i].VisitCount, rootVisits, cfg.ExplorationConstant)
	}
	sortActionStats(stats)

	selected := stats[0]
	confidence := 0.0
	if rootVisits > 0 {
		confidence = float64(selected.VisitCount) / float64(rootVisits)
	}
	return &DecisionResult{
		DecisionID:     id,
		SelectedAction: selected.Action,
		Confidence:     confidence,
		EstimatedValue: selected.MeanReward,
		ActionStats:    stats,
		TreeStats:      ts,
		Diagnostics:    diag,
	}
}

// treeDecision reads the per-action statistics out of a finished tree and
// builds the result. Returns nil when the root has no expanded children;
// the caller then degrades to a uniform choice.
func treeDecision(id string, t *tree, cfg Config, diag Diagnostics) *DecisionResult {
	root := t.node(t.root())
	if len(root.children) == 0 {
		return nil
	}
	stats := make([]ActionStat, 0, len(root.children))
	for _, e := range root.children {
		c := t.node(e.id)
		stats = append(stats, ActionStat{
			Action:     t.actions[e.action],
			VisitCount: c.visits,
			MeanReward: c.meanReward(),
		})
	}
	return buildDecision(id, stats, root.visits, t.stats(), cfg, diag)
}

// uniformDecision is the graceful degradation path: a uniform random choice
// with zero confidence and zeroed statistics.
func uniformDecision(id string, rng *rand.Rand, actions []decision.Action, ts TreeStats, cfg Config, diag Diagnostics, reason string) *DecisionResult {
	diag.Degraded = true
	diag.DegradedReason = reason

	stats := make([]ActionStat, 0, len(actions))
	for _, a := range actions {
		stats = append(stats, ActionStat{Action: a})
	}
	sortActionStats(stats)

	return &DecisionResult{
		DecisionID:     id,
		SelectedAction: actions[rng.Intn(len(actions))],
		Confidence:     0,
		EstimatedValue: 0,
		ActionStats:    stats,
		TreeStats:      ts,
		Diagnostics:    diag,
	}
}
