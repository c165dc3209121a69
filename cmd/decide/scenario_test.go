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
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/decisioncore/decision"
	"github.com/AleutianAI/decisioncore/mcts"
)

// =============================================================================
// Test Fixtures
// =============================================================================

// validScenarioYAML returns a valid YAML string for testing file loading.
func validScenarioYAML() string {
	return `name: "canary-rollout"
description: "Pick the next step for a failing canary."
state:
  id: "canary-failing"
  features: [0.82, 0.15]
actions:
  - id: "rollback"
    name: "Roll back"
    description: "Revert to the last green build"
    prior: 0.5
    reward: 0.9
  - id: "patch-forward"
    name: "Patch forward"
    prior: 0.3
    reward: 0.55
  - id: "scale-up"
    name: "Scale up"
    prior: 0.2
    reward: 0.2
default_reward: 0.4
`
}

// writeScenarioFile writes content to a temp file and returns its path.
func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// =============================================================================
// Loading
// =============================================================================

func TestLoadScenario_ValidYAML(t *testing.T) {
	path := writeScenarioFile(t, validScenarioYAML())

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "canary-rollout", s.Name)
	assert.Equal(t, "canary-failing", s.State.ID)
	assert.Equal(t, []float64{0.82, 0.15}, s.State.Features)
	require.Len(t, s.Actions, 3)
	assert.Equal(t, "rollback", s.Actions[0].ID)
	assert.Equal(t, 0.9, s.Actions[0].Reward)
	assert.Equal(t, 0.5, s.Actions[0].Prior)
	require.NotNil(t, s.DefaultReward)
	assert.Equal(t, 0.4, *s.DefaultReward)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario file")
}

func TestLoadScenario_BadYAML(t *testing.T) {
	path := writeScenarioFile(t, "actions: [unclosed")

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scenario YAML")
}

func TestLoadScenario_InvalidScenario(t *testing.T) {
	path := writeScenarioFile(t, `name: "broken"
state:
  id: "s0"
actions: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, decision.ErrNoActions)
}

// =============================================================================
// Validation
// =============================================================================

func TestScenarioValidate(t *testing.T) {
	base := func() *Scenario {
		return &Scenario{
			Name:  "test",
			State: ScenarioState{ID: "s0"},
			Actions: []ScenarioAction{
				{ID: "a", Reward: 0.5},
				{ID: "b", Reward: 0.7},
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("empty name", func(t *testing.T) {
		s := base()
		s.Name = ""
		assert.Error(t, s.Validate())
	})

	t.Run("empty state id", func(t *testing.T) {
		s := base()
		s.State.ID = ""
		assert.ErrorIs(t, s.Validate(), decision.ErrInvalidState)
	})

	t.Run("duplicate actions", func(t *testing.T) {
		s := base()
		s.Actions[1].ID = "a"
		assert.ErrorIs(t, s.Validate(), decision.ErrDuplicateAction)
	})

	t.Run("prior out of range", func(t *testing.T) {
		s := base()
		s.Actions[0].Prior = 1.5
		assert.ErrorIs(t, s.Validate(), decision.ErrInvalidPrior)
	})

	t.Run("reward out of range", func(t *testing.T) {
		s := base()
		s.Actions[0].Reward = 1.2
		err := s.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reward must be in [0,1]")
	})

	t.Run("default reward out of range", func(t *testing.T) {
		s := base()
		bad := -0.1
		s.DefaultReward = &bad
		require.Error(t, s.Validate())
	})
}

// =============================================================================
// Policy
// =============================================================================

func TestScenarioPolicy_RewardsByFirstMove(t *testing.T) {
	path := writeScenarioFile(t, validScenarioYAML())
	s, err := LoadScenario(path)
	require.NoError(t, err)

	pol := s.Policy()
	rng := rand.New(rand.NewSource(1))
	ctx := context.Background()

	eval := func(stateID string) float64 {
		reward, evalErr := pol.EvaluateTerminal(ctx, rng, decision.State{ID: stateID})
		require.NoError(t, evalErr)
		return reward
	}

	// Root state scores the default.
	assert.Equal(t, 0.4, eval("canary-failing"))

	// First move decides the reward, regardless of the rest of the path.
	assert.Equal(t, 0.9, eval("canary-failing/rollback"))
	assert.Equal(t, 0.9, eval("canary-failing/rollback/scale-up/patch-forward"))
	assert.Equal(t, 0.55, eval("canary-failing/patch-forward/rollback"))

	// Unknown first moves fall back to the default.
	assert.Equal(t, 0.4, eval("canary-failing/mystery"))
}

func TestScenarioPolicy_RootIDWithSlash(t *testing.T) {
	s := &Scenario{
		Name:  "slashed",
		State: ScenarioState{ID: "env/prod"},
		Actions: []ScenarioAction{
			{ID: "a", Reward: 0.8},
			{ID: "b", Reward: 0.2},
		},
	}
	require.NoError(t, s.Validate())

	pol := s.Policy()
	rng := rand.New(rand.NewSource(1))

	reward, err := pol.EvaluateTerminal(context.Background(), rng, decision.State{ID: "env/prod/a/b"})
	require.NoError(t, err)
	assert.Equal(t, 0.8, reward)

	reward, err = pol.EvaluateTerminal(context.Background(), rng, decision.State{ID: "env/prod"})
	require.NoError(t, err)
	assert.Equal(t, scenarioNeutralReward, reward)
}

// =============================================================================
// Demo scenario
// =============================================================================

func TestDemoScenario_Valid(t *testing.T) {
	s := DemoScenario()
	require.NoError(t, s.Validate())
	assert.NotEmpty(t, s.Name)
	assert.NotEmpty(t, s.Actions)
}

func TestDemoScenario_SearchFindsBestAction(t *testing.T) {
	s := DemoScenario()

	// Fast preset with a bigger budget: pure UCB1 converges decisively on
	// the highest-reward action in the demo table.
	cfg, err := mcts.FromPreset(mcts.PresetFast)
	require.NoError(t, err)
	cfg.MaxIterations = 200
	cfg.Seed = 11

	engine, err := mcts.New(cfg, mcts.WithPolicy(s.Policy()))
	require.NoError(t, err)

	result, err := engine.Decide(context.Background(), s.DecisionState(), s.DecisionActions())
	require.NoError(t, err)

	assert.Equal(t, "rollback_deploy", result.SelectedAction.ID)
	assert.Greater(t, result.Confidence, 0.3)
	assert.False(t, result.Diagnostics.Degraded)
	assert.Equal(t, 200, result.Diagnostics.Iterations)
}

// =============================================================================
// Config resolution
// =============================================================================

func TestResolveConfig_PresetBase(t *testing.T) {
	restoreFlags(t)
	presetName = "thorough"

	cfg, err := resolveConfig()
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.MaxIterations)
	assert.Equal(t, mcts.ParallelRoot, cfg.ParallelMode)
}

func TestResolveConfig_FlagOverrides(t *testing.T) {
	restoreFlags(t)
	presetName = "fast"
	iterations = 77
	seed = 1234
	deadlineMS = 250

	cfg, err := resolveConfig()
	require.NoError(t, err)
	assert.Equal(t, 77, cfg.MaxIterations)
	assert.Equal(t, int64(1234), cfg.Seed)
	assert.Equal(t, int64(250), cfg.DeadlineMS)
}

func TestResolveConfig_UnknownPreset(t *testing.T) {
	restoreFlags(t)
	presetName = "ludicrous"

	_, err := resolveConfig()
	assert.ErrorIs(t, err, mcts.ErrUnknownPreset)
}

// restoreFlags resets the package-level flag variables after a test that
// mutates them.
func restoreFlags(t *testing.T) {
	t.Helper()
	savedPreset, savedConfig, savedIter := presetName, configPath, iterations
	savedSeed, savedDeadline := seed, deadlineMS
	t.Cleanup(func() {
		presetName, configPath, iterations = savedPreset, savedConfig, savedIter
		seed, deadlineMS = savedSeed, savedDeadline
	})
	presetName, configPath, iterations = "balanced", "", 0
	seed, deadlineMS = 0, 0
}

// =============================================================================
// Helpers
// =============================================================================

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"error", "ERROR"},
		{"verbose", "INFO"},
		{"", "INFO"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, parseLogLevel(tc.input).String(), "input %q", tc.input)
	}
}

func TestStdoutExporterIf(t *testing.T) {
	assert.Equal(t, "stdout", stdoutExporterIf(true))
	assert.Equal(t, "none", stdoutExporterIf(false))
}
