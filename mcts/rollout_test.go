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
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/AleutianAI/decisioncore/decision"
	"github.com/AleutianAI/decisioncore/policy"
)

// pickFirst always chooses the first candidate, making rollout paths
// fully predictable.
func pickFirst(_ context.Context, _ *rand.Rand, _ decision.State, actions []decision.Action) (decision.Action, error) {
	return actions[0], nil
}

func newRolloutSearch(t *testing.T, cfg Config, pol policy.SimulationPolicy) *search {
	t.Helper()
	engine, err := New(cfg, WithPolicy(pol))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return engine.newSearch(testActions())
}

func TestDiscounted(t *testing.T) {
	tests := []struct {
		name   string
		reward float64
		factor float64
		steps  int
		want   float64
	}{
		{"no discount", 1.0, 1.0, 5, 1.0},
		{"zero steps", 1.0, 0.9, 0, 1.0},
		{"two steps", 1.0, 0.5, 2, 0.25},
		{"three steps", 0.8, 0.9, 3, 0.8 * 0.9 * 0.9 * 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := discounted(tt.reward, tt.factor, tt.steps)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("discounted(%v, %v, %d) = %v, want %v",
					tt.reward, tt.factor, tt.steps, got, tt.want)
			}
		})
	}
}

func TestDefaultRewardFor(t *testing.T) {
	if got := defaultRewardFor(policy.NewUniform()); got != 0.5 {
		t.Errorf("defaultRewardFor(Uniform) = %v, want 0.5", got)
	}
	if got := defaultRewardFor(policy.Funcs{}); got != 0 {
		t.Errorf("defaultRewardFor without RewardDefaulter = %v, want 0", got)
	}
}

func TestRolloutRunsToDepthCap(t *testing.T) {
	s := newRolloutSearch(t, Config{
		MaxIterations:   10,
		SimulationDepth: 3,
		DiscountFactor:  0.5,
	}, policy.Funcs{
		Select: pickFirst,
		Evaluate: func(_ context.Context, _ *rand.Rand, _ decision.State) (float64, error) {
			return 1.0, nil
		},
	})

	res, err := s.rollout(context.Background(), rand.New(rand.NewSource(1)), decision.State{ID: "s0"})
	if err != nil {
		t.Fatalf("rollout() error = %v", err)
	}

	if res.steps != 3 {
		t.Errorf("steps = %d, want 3 (depth cap)", res.steps)
	}
	if len(res.played) != 3 {
		t.Errorf("played %d actions, want 3", len(res.played))
	}
	if res.reward != 0.125 {
		t.Errorf("reward = %v, want 1.0 * 0.5^3 = 0.125", res.reward)
	}
	if res.failure != nil {
		t.Errorf("unexpected failure: %v", res.failure)
	}
}

func TestRolloutTerminalStartSkipsSimulation(t *testing.T) {
	selectCalls := 0
	s := newRolloutSearch(t, Config{
		MaxIterations:   10,
		SimulationDepth: 5,
	}, policy.Funcs{
		Select: func(ctx context.Context, rng *rand.Rand, state decision.State, actions []decision.Action) (decision.Action, error) {
			selectCalls++
			return pickFirst(ctx, rng, state, actions)
		},
		Evaluate: func(_ context.Context, _ *rand.Rand, _ decision.State) (float64, error) {
			return 0.9, nil
		},
	})

	res, err := s.rollout(context.Background(), rand.New(rand.NewSource(1)),
		decision.State{ID: "s0", Terminal: true})
	if err != nil {
		t.Fatalf("rollout() error = %v", err)
	}
	if selectCalls != 0 {
		t.Errorf("SelectAction called %d times for a terminal start, want 0", selectCalls)
	}
	if res.steps != 0 || res.reward != 0.9 {
		t.Errorf("result = {steps %d, reward %v}, want {0, 0.9}", res.steps, res.reward)
	}
}

func TestRolloutSubstitutesDeclaredDefault(t *testing.T) {
	s := newRolloutSearch(t, Config{
		MaxIterations:   10,
		SimulationDepth: 2,
	}, haltingPolicy{})

	res, err := s.rollout(context.Background(), rand.New(rand.NewSource(1)), decision.State{ID: "s0"})
	if err != nil {
		t.Fatalf("policy failure should not surface as an error: %v", err)
	}
	if !errors.Is(res.failure, ErrPolicyFailure) {
		t.Errorf("failure = %v, want ErrPolicyFailure", res.failure)
	}
	if res.phase != phaseSelectAction {
		t.Errorf("phase = %s, want %s", res.phase, phaseSelectAction)
	}
	if res.reward != 0.25 {
		t.Errorf("reward = %v, want the policy's declared default 0.25", res.reward)
	}
	if res.failures != 1 {
		t.Errorf("failures = %d, want 1", res.failures)
	}
}

func TestRolloutEvaluateFailure(t *testing.T) {
	s := newRolloutSearch(t, Config{
		MaxIterations:   10,
		SimulationDepth: 0,
	}, policy.Funcs{
		Evaluate: func(_ context.Context, _ *rand.Rand, _ decision.State) (float64, error) {
			return 0, errors.New("model unavailable")
		},
	})

	res, err := s.rollout(context.Background(), rand.New(rand.NewSource(1)), decision.State{ID: "s0"})
	if err != nil {
		t.Fatalf("rollout() error = %v", err)
	}
	if res.phase != phaseEvaluateTerminal {
		t.Errorf("phase = %s, want %s", res.phase, phaseEvaluateTerminal)
	}
	if !errors.Is(res.failure, ErrPolicyFailure) {
		t.Errorf("failure = %v, want ErrPolicyFailure", res.failure)
	}
}

func TestRolloutForeignAction(t *testing.T) {
	s := newRolloutSearch(t, Config{
		MaxIterations:   10,
		SimulationDepth: 2,
	}, policy.Funcs{
		Select: func(_ context.Context, _ *rand.Rand, _ decision.State, _ []decision.Action) (decision.Action, error) {
			return decision.Action{ID: "intruder"}, nil
		},
	})

	res, err := s.rollout(context.Background(), rand.New(rand.NewSource(1)), decision.State{ID: "s0"})
	if err != nil {
		t.Fatalf("rollout() error = %v", err)
	}
	if !errors.Is(res.failure, ErrForeignAction) {
		t.Errorf("failure = %v, want ErrForeignAction", res.failure)
	}
}

func TestRolloutCancellation(t *testing.T) {
	s := newRolloutSearch(t, Config{
		MaxIterations:   10,
		SimulationDepth: 2,
	}, policy.Funcs{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.rollout(ctx, rand.New(rand.NewSource(1)), decision.State{ID: "s0"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

// haltingPolicy fails every selection and declares its own neutral reward.
type haltingPolicy struct{}

func (haltingPolicy) SelectAction(context.Context, *rand.Rand, decision.State, []decision.Action) (decision.Action, error) {
	return decision.Action{}, errors.New("selector halted")
}

func (haltingPolicy) EvaluateTerminal(context.Context, *rand.Rand, decision.State) (float64, error) {
	return 0, errors.New("evaluator halted")
}

func (haltingPolicy) DefaultReward() float64 {
	return 0.25
}
