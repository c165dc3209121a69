// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/decisioncore/decision"
	"github.com/AleutianAI/decisioncore/policy"
)

// Scenario is a self-contained decision problem the CLI can search: the
// deciding state, the candidate actions, and a reward table that scores a
// rollout by the first action it took from the root.
//
// The reward table is a deliberate simplification. Real callers plug a
// domain policy into the engine; the CLI needs something declarative enough
// to live in a YAML file while still giving the search a meaningful
// gradient to converge on.
type Scenario struct {
	// Name identifies the scenario in output and logs.
	Name string `yaml:"name" json:"name"`

	// Description is shown in the run header.
	Description string `yaml:"description" json:"description"`

	// State is the state the decision is being made for.
	State ScenarioState `yaml:"state" json:"state"`

	// Actions are the candidates, each with its table reward.
	Actions []ScenarioAction `yaml:"actions" json:"actions"`

	// DefaultReward scores rollouts the table does not cover (nil means
	// the neutral 0.5).
	DefaultReward *float64 `yaml:"default_reward" json:"default_reward,omitempty"`
}

// ScenarioState mirrors decision.State for YAML loading.
type ScenarioState struct {
	ID       string    `yaml:"id" json:"id"`
	Features []float64 `yaml:"features" json:"features,omitempty"`
}

// ScenarioAction is one candidate with its simulated outcome quality.
type ScenarioAction struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description,omitempty"`
	Prior       float64 `yaml:"prior" json:"prior"`

	// Reward in [0,1] for rollouts whose first move from the root was
	// this action.
	Reward float64 `yaml:"reward" json:"reward"`
}

// scenarioNeutralReward scores rollouts with no table entry when the
// scenario does not set default_reward.
const scenarioNeutralReward = 0.5

// LoadScenario reads and validates a YAML scenario file.
//
// Inputs:
//   - path: Scenario file path.
//
// Outputs:
//   - *Scenario: Parsed, validated scenario.
//   - error: Non-nil if the file is unreadable, unparsable, or invalid.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", path, err)
	}
	return &s, nil
}

// Validate checks the scenario beyond what the engine validates itself:
// action IDs, priors, and the state go through the decision package rules,
// and table rewards must sit in [0,1] so confidence output reads naturally.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name must not be empty")
	}
	if err := s.DecisionState().Validate(); err != nil {
		return err
	}
	if err := decision.ValidateActions(s.DecisionActions()); err != nil {
		return err
	}
	for _, a := range s.Actions {
		if a.Reward < 0 || a.Reward > 1 {
			return fmt.Errorf("action %q: reward must be in [0,1], got %v", a.ID, a.Reward)
		}
	}
	if s.DefaultReward != nil && (*s.DefaultReward < 0 || *s.DefaultReward > 1) {
		return fmt.Errorf("default_reward must be in [0,1], got %v", *s.DefaultReward)
	}
	return nil
}

// DecisionState converts the scenario state for the engine.
func (s *Scenario) DecisionState() decision.State {
	return decision.State{
		ID:       s.State.ID,
		Features: s.State.Features,
	}
}

// DecisionActions converts the scenario actions for the engine.
func (s *Scenario) DecisionActions() []decision.Action {
	actions := make([]decision.Action, 0, len(s.Actions))
	for _, a := range s.Actions {
		actions = append(actions, decision.Action{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Prior:       a.Prior,
		})
	}
	return actions
}

// Policy builds the simulation policy backing the scenario: rollout moves
// are sampled by prior (the policy.Funcs default) and terminal states score
// by the first action taken from the root.
//
// The first move is recovered from the engine's path-encoded state IDs by
// trimming the root ID prefix, so root IDs containing "/" stay safe.
func (s *Scenario) Policy() policy.SimulationPolicy {
	rewards := make(map[string]float64, len(s.Actions))
	for _, a := range s.Actions {
		rewards[a.ID] = a.Reward
	}
	rootID := s.State.ID
	fallback := scenarioNeutralReward
	if s.DefaultReward != nil {
		fallback = *s.DefaultReward
	}

	return policy.Funcs{
		Evaluate: func(_ context.Context, _ *rand.Rand, state decision.State) (float64, error) {
			if state.ID == rootID {
				return fallback, nil
			}
			path := strings.TrimPrefix(state.ID, rootID+"/")
			first, _, _ := strings.Cut(path, "/")
			if r, ok := rewards[first]; ok {
				return r, nil
			}
			return fallback, nil
		},
	}
}

// DemoScenario is the built-in scenario used when no file is given: an
// agent picking the next remediation step for a service latency regression.
// The reward table makes rolling back clearly best, so preset comparisons
// have a stable right answer.
func DemoScenario() *Scenario {
	return &Scenario{
		Name:        "checkout-latency-regression",
		Description: "Choose the next remediation step for a latency regression in the checkout service.",
		State: ScenarioState{
			ID:       "checkout-latency-regression",
			Features: []float64{0.92, 0.40, 0.18},
		},
		Actions: []ScenarioAction{
			{
				ID:          "rollback_deploy",
				Name:        "Roll back deploy",
				Description: "Revert to the last green build",
				Prior:       0.35,
				Reward:      0.85,
			},
			{
				ID:          "restart_service",
				Name:        "Restart service",
				Description: "Bounce the checkout pods",
				Prior:       0.20,
				Reward:      0.35,
			},
			{
				ID:          "scale_up",
				Name:        "Scale up",
				Description: "Add replicas to absorb the latency",
				Prior:       0.25,
				Reward:      0.45,
			},
			{
				ID:          "page_oncall",
				Name:        "Page on-call",
				Description: "Escalate to a human operator",
				Prior:       0.20,
				Reward:      0.60,
			},
		},
	}
}
