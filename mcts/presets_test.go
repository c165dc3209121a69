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
	"errors"
	"testing"
)

func TestFromPreset(t *testing.T) {
	tests := []struct {
		preset         Preset
		wantIterations int
		wantDepth      int
		wantRAVE       bool
		wantMode       ParallelMode
		wantParallel   int
	}{
		{PresetFast, 40, 2, false, ParallelLeaf, 1},
		{PresetBalanced, 100, 5, true, ParallelLeaf, 1},
		{PresetThorough, 400, 8, true, ParallelRoot, 4},
	}

	for _, tt := range tests {
		t.Run(tt.preset.String(), func(t *testing.T) {
			cfg, err := FromPreset(tt.preset)
			if err != nil {
				t.Fatalf("FromPreset(%s) error = %v", tt.preset, err)
			}
			if cfg.MaxIterations != tt.wantIterations {
				t.Errorf("MaxIterations = %d, want %d", cfg.MaxIterations, tt.wantIterations)
			}
			if cfg.SimulationDepth != tt.wantDepth {
				t.Errorf("SimulationDepth = %d, want %d", cfg.SimulationDepth, tt.wantDepth)
			}
			if cfg.UseRAVE != tt.wantRAVE {
				t.Errorf("UseRAVE = %v, want %v", cfg.UseRAVE, tt.wantRAVE)
			}
			if cfg.ParallelMode != tt.wantMode {
				t.Errorf("ParallelMode = %s, want %s", cfg.ParallelMode, tt.wantMode)
			}
			if cfg.ParallelSimulations != tt.wantParallel {
				t.Errorf("ParallelSimulations = %d, want %d", cfg.ParallelSimulations, tt.wantParallel)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset config should validate, got %v", err)
			}
		})
	}
}

func TestFromPresetUnknown(t *testing.T) {
	_, err := FromPreset("ludicrous")
	if err == nil {
		t.Fatal("FromPreset should reject unknown names")
	}
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("error = %v, want ErrUnknownPreset", err)
	}
}

func TestPresetsOrdering(t *testing.T) {
	presets := Presets()
	if len(presets) != 3 {
		t.Fatalf("Presets() = %d entries, want 3", len(presets))
	}

	var budgets []int
	for _, p := range presets {
		cfg, err := FromPreset(p)
		if err != nil {
			t.Fatalf("FromPreset(%s) error = %v", p, err)
		}
		budgets = append(budgets, cfg.MaxIterations)
	}
	for i := 1; i < len(budgets); i++ {
		if budgets[i] <= budgets[i-1] {
			t.Errorf("preset budgets should grow with thoroughness, got %v", budgets)
		}
	}
}

func TestBalancedPresetMatchesDefault(t *testing.T) {
	cfg, err := FromPreset(PresetBalanced)
	if err != nil {
		t.Fatalf("FromPreset(balanced) error = %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("balanced preset = %+v, want DefaultConfig", cfg)
	}
}
