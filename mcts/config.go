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
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ParallelMode selects how a parallel simulation budget is spent.
type ParallelMode string

const (
	// ParallelLeaf batches rollouts from the same expanded node: each
	// iteration runs parallel_simulations rollouts concurrently, joins
	// them, and commits their mean as one backpropagation.
	ParallelLeaf ParallelMode = "leaf"

	// ParallelRoot runs fully independent trees concurrently, splitting
	// the iteration budget, and merges their root statistics at the end.
	// No tree is ever shared between goroutines.
	ParallelRoot ParallelMode = "root"
)

// String returns the string representation of the parallel mode.
func (m ParallelMode) String() string {
	return string(m)
}

// DefaultRAVEBias is the k constant in β = k/(N+k) used when RAVE is
// enabled without an explicit bias. Around k real visits the search trusts
// the AMAF estimate and the visit-count estimate equally.
const DefaultRAVEBias = 250.0

// Config tunes one engine. The zero value is not usable directly; start
// from DefaultConfig or a preset and override fields.
type Config struct {
	// MaxIterations is the search budget. A non-positive budget degrades
	// to a uniform random choice with zero confidence instead of erroring.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// ExplorationConstant scales the UCB1 exploration bonus.
	ExplorationConstant float64 `json:"exploration_constant" yaml:"exploration_constant"`

	// SimulationDepth caps rollout length in steps. Zero means rollouts
	// score the expanded node's state immediately.
	SimulationDepth int `json:"simulation_depth" yaml:"simulation_depth"`

	// DiscountFactor in (0,1] discounts the rollout reward once per step
	// taken. 1 disables discounting; 0 is normalized to 1.
	DiscountFactor float64 `json:"discount_factor" yaml:"discount_factor"`

	// UseRAVE enables the all-moves-as-first estimate in selection.
	UseRAVE bool `json:"use_rave" yaml:"use_rave"`

	// RAVEBias is the k constant in β = k/(N+k). Only meaningful with
	// UseRAVE; 0 is normalized to DefaultRAVEBias.
	RAVEBias float64 `json:"rave_bias" yaml:"rave_bias"`

	// ParallelSimulations is the rollout batch size (leaf mode) or the
	// number of independent trees (root mode). 0 is normalized to 1.
	ParallelSimulations int `json:"parallel_simulations" yaml:"parallel_simulations"`

	// ParallelMode picks leaf- or root-level parallelism. Empty is
	// normalized to leaf.
	ParallelMode ParallelMode `json:"parallel_mode" yaml:"parallel_mode"`

	// DeadlineMS is an optional wall-clock budget in milliseconds. 0
	// means no deadline. Expiry truncates the search; it is not an error.
	DeadlineMS int64 `json:"deadline_ms" yaml:"deadline_ms"`

	// Seed fixes the random source for reproducible decisions. 0 seeds
	// from the wall clock.
	Seed int64 `json:"seed" yaml:"seed"`
}

// DefaultConfig mirrors the balanced preset.
func DefaultConfig() Config {
	return Config{
		MaxIterations:       100,
		ExplorationConstant: math.Sqrt2,
		SimulationDepth:     5,
		DiscountFactor:      1.0,
		UseRAVE:             true,
		RAVEBias:            DefaultRAVEBias,
		ParallelSimulations: 1,
		ParallelMode:        ParallelLeaf,
	}
}

// Deadline returns DeadlineMS as a duration, 0 when unset.
func (c Config) Deadline() time.Duration {
	return time.Duration(c.DeadlineMS) * time.Millisecond
}

// normalized fills the zero values that have a single sensible meaning so
// that a sparsely populated literal still validates.
func (c Config) normalized() Config {
	if c.DiscountFactor == 0 {
		c.DiscountFactor = 1.0
	}
	if c.ParallelSimulations == 0 {
		c.ParallelSimulations = 1
	}
	if c.ParallelMode == "" {
		c.ParallelMode = ParallelLeaf
	}
	if c.UseRAVE && c.RAVEBias == 0 {
		c.RAVEBias = DefaultRAVEBias
	}
	return c
}

// Validate checks field ranges. MaxIterations is deliberately not checked:
// a non-positive budget is a documented degradation path, not a config
// error.
func (c Config) Validate() error {
	if c.ExplorationConstant < 0 {
		return fmt.Errorf("%w: exploration_constant must be >= 0, got %v", ErrInvalidConfig, c.ExplorationConstant)
	}
	if c.SimulationDepth < 0 {
		return fmt.Errorf("%w: simulation_depth must be >= 0, got %d", ErrInvalidConfig, c.SimulationDepth)
	}
	if c.DiscountFactor <= 0 || c.DiscountFactor > 1 {
		return fmt.Errorf("%w: discount_factor must be in (0,1], got %v", ErrInvalidConfig, c.DiscountFactor)
	}
	if c.UseRAVE && c.RAVEBias <= 0 {
		return fmt.Errorf("%w: rave_bias must be > 0 when RAVE is enabled, got %v", ErrInvalidConfig, c.RAVEBias)
	}
	if c.ParallelSimulations < 1 {
		return fmt.Errorf("%w: parallel_simulations must be >= 1, got %d", ErrInvalidConfig, c.ParallelSimulations)
	}
	if c.ParallelMode != ParallelLeaf && c.ParallelMode != ParallelRoot {
		return fmt.Errorf("%w: parallel_mode must be %q or %q, got %q", ErrInvalidConfig, ParallelLeaf, ParallelRoot, c.ParallelMode)
	}
	if c.DeadlineMS < 0 {
		return fmt.Errorf("%w: deadline_ms must be >= 0, got %d", ErrInvalidConfig, c.DeadlineMS)
	}
	return nil
}

// LoadConfig loads configuration with priority: env > file > defaults.
//
// Inputs:
//   - configPath: Path to a YAML/JSON config file (optional, can be empty).
//
// Outputs:
//   - Config: Merged, normalized, validated configuration.
//   - error: Non-nil if the file exists but is invalid, or validation fails.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, &config); err != nil {
			return config, fmt.Errorf("load config file: %w", err)
		}
	}

	loadConfigFromEnv(&config)

	config = config.normalized()
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func loadConfigFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if jsonErr := json.Unmarshal(data, config); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}

	return nil
}

func loadConfigFromEnv(config *Config) {
	if v := os.Getenv("MCTS_MAX_ITERATIONS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.MaxIterations = i
		}
	}
	if v := os.Getenv("MCTS_EXPLORATION_CONSTANT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.ExplorationConstant = f
		}
	}
	if v := os.Getenv("MCTS_SIMULATION_DEPTH"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.SimulationDepth = i
		}
	}
	if v := os.Getenv("MCTS_DISCOUNT_FACTOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.DiscountFactor = f
		}
	}
	if v := os.Getenv("MCTS_USE_RAVE"); v != "" {
		config.UseRAVE = v == "true" || v == "1"
	}
	if v := os.Getenv("MCTS_RAVE_BIAS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.RAVEBias = f
		}
	}
	if v := os.Getenv("MCTS_PARALLEL_SIMULATIONS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.ParallelSimulations = i
		}
	}
	if v := os.Getenv("MCTS_PARALLEL_MODE"); v != "" {
		config.ParallelMode = ParallelMode(v)
	}
	if v := os.Getenv("MCTS_DEADLINE_MS"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.DeadlineMS = i
		}
	}
	if v := os.Getenv("MCTS_SEED"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Seed = i
		}
	}
}
