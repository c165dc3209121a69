// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package policy

import (
	"context"
	"math"
	"math/rand"

	"github.com/AleutianAI/decisioncore/decision"
)

// neutralReward is the score reported for states a policy has no opinion on.
const neutralReward = 0.5

// Uniform is the default rollout policy. Action selection samples
// proportionally to the supplied priors, treating actions without a prior as
// carrying uniform weight 1/len(actions). Terminal evaluation squashes the
// mean feature value through a logistic so states with stronger features
// score higher; states without features score the neutral 0.5.
//
// Thread Safety: Stateless; safe for concurrent use.
type Uniform struct{}

// NewUniform returns the default prior-weighted uniform policy.
func NewUniform() *Uniform {
	return &Uniform{}
}

// SelectAction implements SimulationPolicy.
func (u *Uniform) SelectAction(_ context.Context, rng *rand.Rand, _ decision.State, actions []decision.Action) (decision.Action, error) {
	return sampleWeighted(rng, actions)
}

// EvaluateTerminal implements SimulationPolicy.
func (u *Uniform) EvaluateTerminal(_ context.Context, _ *rand.Rand, state decision.State) (float64, error) {
	if len(state.Features) == 0 {
		return neutralReward, nil
	}
	var sum float64
	for _, f := range state.Features {
		sum += f
	}
	mean := sum / float64(len(state.Features))
	return 1.0 / (1.0 + math.Exp(-mean)), nil
}

// DefaultReward implements RewardDefaulter.
func (u *Uniform) DefaultReward() float64 {
	return neutralReward
}

// sampleWeighted draws one action proportionally to prior weight. Unset
// priors contribute 1/len(actions) so a mixed list still sums sensibly.
func sampleWeighted(rng *rand.Rand, actions []decision.Action) (decision.Action, error) {
	if len(actions) == 0 {
		return decision.Action{}, decision.ErrNoActions
	}
	uniform := 1.0 / float64(len(actions))
	var total float64
	for _, a := range actions {
		total += actionWeight(a, uniform)
	}
	r := rng.Float64() * total
	for _, a := range actions {
		r -= actionWeight(a, uniform)
		if r < 0 {
			return a, nil
		}
	}
	// Float roundoff can leave r at exactly the upper edge.
	return actions[len(actions)-1], nil
}

func actionWeight(a decision.Action, uniform float64) float64 {
	if a.HasPrior() {
		return a.Prior
	}
	return uniform
}
