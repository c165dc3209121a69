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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	presetName   string // which preset the run starts from (fast/balanced/thorough)
	configPath   string // optional config file layered over the preset
	scenarioPath string // optional YAML scenario; empty runs the built-in demo
	iterations   int    // CLI override for max_iterations
	seed         int64  // CLI override for the run seed
	deadlineMS   int64  // CLI override for deadline_ms
	jsonOutput   bool
	enableTrace  bool
	enableMetric bool
	logLevel     string // debug/info/warn/error
	logDir       string // optional directory for JSON file logs

	rootCmd = &cobra.Command{
		Use:   "decide",
		Short: "Run the decisioncore MCTS engine against decision scenarios",
		Long: `decide is the CLI harness for the decisioncore search engine. It loads
				a decision scenario, runs Monte Carlo Tree Search over the candidate
				actions, and prints the ranked result with full diagnostics.`,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Search a scenario and print the ranked actions",
		Run:   runDecide, // Defined in cmd_run.go
	}

	presetsCmd = &cobra.Command{
		Use:   "presets",
		Short: "List the built-in search presets",
		Run:   runPresets, // Defined in cmd_presets.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Emit machine-readable JSON instead of tables")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Minimum log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"Directory for JSON file logs (disabled when empty)")

	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "",
		"Path to a YAML scenario file (default: built-in demo scenario)")
	runCmd.Flags().StringVar(&presetName, "preset", "balanced",
		"Search preset: fast, balanced, or thorough")
	runCmd.Flags().StringVar(&configPath, "config", "",
		"Path to a YAML/JSON engine config; replaces --preset as the base")
	runCmd.Flags().IntVar(&iterations, "iterations", 0,
		"Override the iteration budget (0 keeps the preset/config value)")
	runCmd.Flags().Int64Var(&seed, "seed", 0,
		"Fix the random seed for a reproducible run (0 seeds from the clock)")
	runCmd.Flags().Int64Var(&deadlineMS, "deadline-ms", 0,
		"Wall-clock budget in milliseconds (0 keeps the preset/config value)")
	runCmd.Flags().BoolVar(&enableTrace, "trace", false,
		"Emit OpenTelemetry spans to stdout")
	runCmd.Flags().BoolVar(&enableMetric, "metrics", false,
		"Emit OpenTelemetry metric snapshots to stdout")

	rootCmd.AddCommand(presetsCmd)
}
