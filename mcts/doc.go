// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package mcts selects one action out of a candidate set by Monte Carlo
// Tree Search: repeated select/expand/simulate/backpropagate iterations
// over a tree that is private to each decide call.
//
// Selection uses UCB1, optionally blended with RAVE ("all moves as first")
// statistics to speed up convergence on small budgets. Rollouts are driven
// by a policy.SimulationPolicy; the built-in default walks actions
// uniformly weighted by their priors. The final choice is the root child
// with the highest visit count, never the highest mean, which keeps the
// selection robust against lucky low-visit spikes.
//
// Basic usage:
//
//	engine, err := mcts.New(mcts.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	result, err := engine.Decide(ctx, state, actions)
//
// Runs are deterministic for a fixed Config.Seed, including both parallel
// modes. Deadlines truncate a search instead of failing it, and a search
// that never managed an expansion degrades to a uniform random pick; both
// conditions are reported in the result diagnostics rather than as errors.
package mcts
