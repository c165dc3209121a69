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
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/decisioncore/decision"
)

// Leaf parallelization runs several rollouts from the same expanded node
// concurrently and commits their mean as a single backpropagation, so the
// root-visits-equals-iterations invariant survives batching. Root
// parallelization instead grows one independent tree per worker and merges
// the root statistics afterwards; it suits large budgets where lock-free
// workers beat sharing a tree.

// rolloutBatch runs batch rollouts from start concurrently and aggregates
// them into one result: mean reward, the union of played actions (for RAVE
// credit), and the first failure with the total failure count.
//
// Each slot gets its own RNG seeded from the caller's, drawn before the
// batch starts so results do not depend on goroutine scheduling. A context
// cancellation in any slot discards the whole batch.
func (s *search) rolloutBatch(ctx context.Context, rng *rand.Rand, start decision.State, batch int) (rolloutResult, error) {
	seeds := make([]int64, batch)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	results := make([]rolloutResult, batch)
	errs := make([]error, batch)

	g := new(errgroup.Group)
	for i := 0; i < batch; i++ {
		g.Go(func() error {
			slot := rand.New(rand.NewSource(seeds[i]))
			results[i], errs[i] = s.rollout(ctx, slot, start)
			return nil
		})
	}
	_ = g.Wait() // slots report through errs, never through the group

	var agg rolloutResult
	for i := 0; i < batch; i++ {
		if errs[i] != nil {
			return rolloutResult{}, errs[i]
		}
		agg.reward += results[i].reward
		agg.steps += results[i].steps
		agg.played = append(agg.played, results[i].played...)
		agg.failures += results[i].failures
		if agg.failure == nil && results[i].failure != nil {
			agg.failure = results[i].failure
			agg.phase = results[i].phase
		}
	}
	agg.reward /= float64(batch)
	agg.steps /= batch
	return agg, nil
}

// decideRootParallel grows one independent tree per worker, each with its
// own slice of the iteration budget and its own seed stream, then merges
// per-action visit counts and rewards at the root.
//
// Workers share nothing mutable; the merge after the join is the only
// synchronization point.
func (e *Engine) decideRootParallel(ctx context.Context, s *search, initial decision.State, id string, seed int64, start time.Time) *DecisionResult {
	workers := e.cfg.ParallelSimulations
	shares := splitBudget(e.cfg.MaxIterations, workers)

	trees := make([]*tree, workers)
	searches := make([]*search, workers)
	completed := make([]int, workers)
	truncated := make([]bool, workers)

	g := new(errgroup.Group)
	for w := 0; w < workers; w++ {
		ws := s.clone()
		searches[w] = ws
		g.Go(func() error {
			rng := rand.New(rand.NewSource(deriveSeed(seed, uint64(w))))
			t := newTree(initial, ws.actions, e.cfg.UseRAVE)
			done, trunc := e.searchLoop(ctx, ws, t, rng, shares[w])
			trees[w], completed[w], truncated[w] = t, done, trunc
			return nil
		})
	}
	_ = g.Wait()

	diag := Diagnostics{Seed: seed}
	for w := 0; w < workers; w++ {
		diag.Iterations += completed[w]
		diag.Truncated = diag.Truncated || truncated[w]
		s.failures.merge(searches[w].failures)
	}
	diag.PolicyFailures = s.failures.count
	diag.FailureSamples = s.failures.samples
	diag.Elapsed = time.Since(start)

	stats, rootVisits, ts := mergeRootStats(trees)
	if len(stats) > 0 && rootVisits > 0 {
		return buildDecision(id, stats, rootVisits, ts, e.cfg, diag)
	}

	diag.Degraded = true
	rng := rand.New(rand.NewSource(deriveSeed(seed, uint64(workers))))
	return uniformDecision(id, rng, s.actions, ts, e.cfg, diag, degradedEmptyTree)
}

// mergeRootStats combines the root-level statistics of independent trees:
// visit counts and total rewards are summed per action, tree shapes are
// summed (depths node-weighted) for the aggregate TreeStats.
func mergeRootStats(trees []*tree) ([]ActionStat, uint64, TreeStats) {
	if len(trees) == 0 {
		return nil, 0, TreeStats{}
	}
	actions := trees[0].actions

	type sum struct {
		visits uint64
		reward float64
	}
	sums := make([]sum, len(actions))

	var rootVisits uint64
	var merged TreeStats
	var depthWeighted float64

	for _, t := range trees {
		root := t.node(t.root())
		rootVisits += root.visits
		for _, edge := range root.children {
			child := t.node(edge.id)
			sums[edge.action].visits += child.visits
			sums[edge.action].reward += child.totalReward
		}

		ts := t.stats()
		merged.TotalNodes += ts.TotalNodes
		merged.TotalVisits += ts.TotalVisits
		merged.LeafNodes += ts.LeafNodes
		if ts.MaxDepth > merged.MaxDepth {
			merged.MaxDepth = ts.MaxDepth
		}
		depthWeighted += ts.AverageDepth * float64(ts.TotalNodes)
	}
	if merged.TotalNodes > 0 {
		merged.AverageDepth = depthWeighted / float64(merged.TotalNodes)
	}

	stats := make([]ActionStat, 0, len(actions))
	for i, m := range sums {
		if m.visits == 0 {
			continue
		}
		stats = append(stats, ActionStat{
			Action:     actions[i],
			VisitCount: m.visits,
			MeanReward: m.reward / float64(m.visits),
		})
	}
	return stats, rootVisits, merged
}

// splitBudget divides total iterations across parts, handing the remainder
// to the earliest workers. Shares sum exactly to total.
func splitBudget(total, parts int) []int {
	shares := make([]int, parts)
	base := total / parts
	rem := total % parts
	for i := range shares {
		shares[i] = base
		if i < rem {
			shares[i]++
		}
	}
	return shares
}

// deriveSeed maps (seed, stream) to an independent worker seed using the
// splitmix64 finalizer, so root-parallel trees stay deterministic per
// worker index without correlated streams.
func deriveSeed(seed int64, stream uint64) int64 {
	z := uint64(seed) + (stream+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}
