// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package policy defines the pluggable rollout strategy used by the search
// engine. A SimulationPolicy answers two questions: "what would the agent
// plausibly do next" and "how good is this terminal or cutoff state". The
// engine supplies every call with an explicitly seeded random source, which
// is what keeps whole decisions reproducible, including parallel rollout
// batches where each rollout owns a derived generator.
package policy

import (
	"context"
	"math/rand"

	"github.com/AleutianAI/decisioncore/decision"
)

// SimulationPolicy drives the rollout phase of the search. Implementations
// may encode arbitrary domain heuristics; the engine only requires that the
// same rng stream and inputs produce the same outputs, so that fixed-seed
// runs stay deterministic.
//
// Thread Safety: Methods must be safe for concurrent calls. The engine never
// shares an rng between concurrent calls, so implementations that draw
// randomness only from the supplied rng are safe without locking.
type SimulationPolicy interface {
	// SelectAction picks a plausible next action during a rollout, without
	// expanding the search tree.
	//
	// Inputs:
	//   - ctx: Context for cancellation. Checked by long-running policies.
	//   - rng: Seeded random source owned by this rollout.
	//   - state: Current simulated state. Read-only.
	//   - actions: Candidate actions, in the caller's original order.
	//
	// Outputs:
	//   - decision.Action: The chosen action.
	//   - error: Non-nil aborts the current iteration only; the engine
	//     records the failure and continues searching.
	SelectAction(ctx context.Context, rng *rand.Rand, state decision.State, actions []decision.Action) (decision.Action, error)

	// EvaluateTerminal scores a terminal or depth-cutoff state.
	//
	// The engine never assumes a reward range; it only compares rewards
	// relatively. Policies that keep rewards in [0,1] get confidence
	// values that read naturally.
	EvaluateTerminal(ctx context.Context, rng *rand.Rand, state decision.State) (float64, error)
}

// RewardDefaulter is an optional extension. When a policy call fails
// mid-rollout the engine uses DefaultReward as that iteration's reward
// instead of 0, letting a policy declare its own neutral value.
type RewardDefaulter interface {
	DefaultReward() float64
}

// Funcs adapts two closures into a SimulationPolicy. Either field may be
// nil: a nil Select falls back to prior-weighted uniform sampling and a nil
// Evaluate returns the neutral reward 0.5. Handy for tests and for callers
// that only care about one half of the contract.
type Funcs struct {
	Select   func(ctx context.Context, rng *rand.Rand, state decision.State, actions []decision.Action) (decision.Action, error)
	Evaluate func(ctx context.Context, rng *rand.Rand, state decision.State) (float64, error)
}

// SelectAction implements SimulationPolicy.
func (f Funcs) SelectAction(ctx context.Context, rng *rand.Rand, state decision.State, actions []decision.Action) (decision.Action, error) {
	if f.Select == nil {
		return sampleWeighted(rng, actions)
	}
	return f.Select(ctx, rng, state, actions)
}

// EvaluateTerminal implements SimulationPolicy.
func (f Funcs) EvaluateTerminal(ctx context.Context, rng *rand.Rand, state decision.State) (float64, error) {
	if f.Evaluate == nil {
		return neutralReward, nil
	}
	return f.Evaluate(ctx, rng, state)
}
