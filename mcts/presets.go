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
	"fmt"
	"math"
)

// Preset names a curated configuration trading decision quality against
// latency.
type Preset string

const (
	// PresetFast favors latency: a small budget, shallow rollouts, no
	// RAVE. For reflex-grade decisions on the hot path.
	PresetFast Preset = "fast"

	// PresetBalanced is the general-purpose default: a moderate budget
	// with RAVE-accelerated convergence.
	PresetBalanced Preset = "balanced"

	// PresetThorough favors quality: a large budget, deep rollouts, and
	// root-parallel workers. For decisions worth waiting on.
	PresetThorough Preset = "thorough"
)

// String implements fmt.Stringer.
func (p Preset) String() string {
	return string(p)
}

// Presets lists the known presets in latency order.
func Presets() []Preset {
	return []Preset{PresetFast, PresetBalanced, PresetThorough}
}

// FromPreset resolves a preset to its configuration.
//
// Outputs:
//   - Config: Ready to pass to New; callers may tweak fields afterwards.
//   - error: ErrUnknownPreset for names not in Presets().
func FromPreset(p Preset) (Config, error) {
	switch p {
	case PresetFast:
		return Config{
			MaxIterations:       40,
			ExplorationConstant: 1.0,
			SimulationDepth:     2,
			DiscountFactor:      1.0,
			UseRAVE:             false,
			RAVEBias:            DefaultRAVEBias,
			ParallelSimulations: 1,
			ParallelMode:        ParallelLeaf,
		}, nil
	case PresetBalanced:
		return DefaultConfig(), nil
	case PresetThorough:
		return Config{
			MaxIterations:       400,
			ExplorationConstant: math.Sqrt2,
			SimulationDepth:     8,
			DiscountFactor:      1.0,
			UseRAVE:             true,
			RAVEBias:            DefaultRAVEBias,
			ParallelSimulations: 4,
			ParallelMode:        ParallelRoot,
		}, nil
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownPreset, string(p))
	}
}
