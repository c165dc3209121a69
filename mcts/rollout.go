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
	"fmt"
	"math"
	"math/rand"

	"github.com/AleutianAI/decisioncore/decision"
	"github.com/AleutianAI/decisioncore/policy"
)

// Rollout phases, used in failure diagnostics.
const (
	phaseSelectAction     = "select_action"
	phaseEvaluateTerminal = "evaluate_terminal"
)

// rolloutResult is the outcome of one simulation (or one aggregated leaf
// batch of simulations) from an expanded node.
type rolloutResult struct {
	reward float64
	played []int // action indices chosen during the rollout
	steps  int

	// failure is the first policy error that aborted a rollout in this
	// result, nil on success. failures counts aborted rollouts, which can
	// exceed one for a leaf batch. The reward already carries the
	// policy's declared default for failed rollouts.
	failure  error
	phase    string
	failures int
}

// rollout simulates one future from start: repeatedly ask the policy for
// the next action and advance the model until a terminal state or the depth
// limit, then score the end state. The reward is discounted once per step
// taken when a discount factor below 1 is configured.
//
// A policy error aborts the rollout and substitutes the policy's declared
// default reward (0 without a RewardDefaulter); the caller records the
// failure and still commits the iteration. Context cancellation is
// different: it surfaces as a ctx error and the caller discards the whole
// iteration.
func (s *search) rollout(ctx context.Context, rng *rand.Rand, start decision.State) (rolloutResult, error) {
	var res rolloutResult
	cur := start.Clone()

	for res.steps < s.cfg.SimulationDepth && !cur.Terminal {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		a, err := s.policy.SelectAction(ctx, rng, cur, s.actions)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			res.failure = fmt.Errorf("%w: %v", ErrPolicyFailure, err)
			res.phase = phaseSelectAction
			res.failures = 1
			res.reward = s.defaultReward
			return res, nil
		}
		idx, ok := s.index[a.ID]
		if !ok {
			res.failure = fmt.Errorf("%w: %q", ErrForeignAction, a.ID)
			res.phase = phaseSelectAction
			res.failures = 1
			res.reward = s.defaultReward
			return res, nil
		}
		res.played = append(res.played, idx)
		cur = advance(cur, s.actions[idx])
		res.steps++
	}

	reward, err := s.policy.EvaluateTerminal(ctx, rng, cur)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		res.failure = fmt.Errorf("%w: %v", ErrPolicyFailure, err)
		res.phase = phaseEvaluateTerminal
		res.failures = 1
		res.reward = s.defaultReward
		return res, nil
	}
	res.reward = discounted(reward, s.cfg.DiscountFactor, res.steps)
	return res, nil
}

// discounted applies the per-step discount to a terminal reward.
func discounted(reward, factor float64, steps int) float64 {
	if factor >= 1 || steps == 0 {
		return reward
	}
	return reward * math.Pow(factor, float64(steps))
}

// defaultRewardFor resolves the reward substituted for failed rollouts: the
// policy's own declared default when it implements RewardDefaulter, else 0.
func defaultRewardFor(p policy.SimulationPolicy) float64 {
	if d, ok := p.(policy.RewardDefaulter); ok {
		return d.DefaultReward()
	}
	return 0
}
