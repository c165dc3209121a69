// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command decide runs the decisioncore MCTS engine from the terminal.
//
// It searches a decision scenario (a state, candidate actions with priors,
// and a per-action reward table) and prints the ranked outcome, which makes
// it the fastest way to try presets, tune exploration constants, and replay
// decisions by seed.
//
// Usage:
//
//	go run ./cmd/decide run
//	go run ./cmd/decide run --preset thorough --seed 42
//	go run ./cmd/decide run --scenario scenarios/remediation.yaml --json
//	go run ./cmd/decide presets
//
// With stdout telemetry (spans and metric snapshots as JSON):
//
//	go run ./cmd/decide run --trace --metrics
//
// Scenario files are YAML:
//
//	name: canary-rollout
//	description: Pick the next step for a failing canary.
//	state:
//	  id: canary-failing
//	  features: [0.82, 0.15]
//	actions:
//	  - id: rollback
//	    name: Roll back
//	    prior: 0.5
//	    reward: 0.9
//	  - id: patch-forward
//	    name: Patch forward
//	    prior: 0.3
//	    reward: 0.55
//	default_reward: 0.5
package main

import (
	"log/slog"
	"os"
)

func main() {
	// Execute the root command. Cobra handles parsing the arguments.
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Error executing command", "error", err)
		os.Exit(1)
	}
}
