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
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/decisioncore/mcts"
	"github.com/AleutianAI/decisioncore/pkg/logging"
	"github.com/AleutianAI/decisioncore/pkg/telemetry"
)

func runDecide(_ *cobra.Command, _ []string) {
	log := logging.New(logging.Config{
		Level:   parseLogLevel(logLevel),
		LogDir:  logDir,
		Service: "decide",
	})
	defer func() {
		if closeErr := log.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "close logger: %v\n", closeErr)
		}
	}()

	// 1. Load the scenario (file or built-in demo)
	scenario := DemoScenario()
	if scenarioPath != "" {
		loaded, err := LoadScenario(scenarioPath)
		if err != nil {
			log.Error("Failed to load scenario", "path", scenarioPath, "error", err)
			return
		}
		scenario = loaded
	}

	// 2. Resolve the engine configuration
	cfg, err := resolveConfig()
	if err != nil {
		log.Error("Failed to resolve engine config", "error", err)
		return
	}

	// Ctrl+C truncates the search instead of killing the run; the engine
	// reports whatever statistics were committed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Optional stdout telemetry
	if enableTrace || enableMetric {
		tcfg := telemetry.DefaultConfig()
		tcfg.ServiceName = "decide"
		tcfg.TraceExporter = stdoutExporterIf(enableTrace)
		tcfg.MetricExporter = stdoutExporterIf(enableMetric)

		shutdown, err := telemetry.Init(ctx, tcfg)
		if err != nil {
			log.Error("Failed to initialize telemetry", "error", err)
			return
		}
		defer func() {
			if shutdownErr := shutdown(context.Background()); shutdownErr != nil {
				log.Warn("Telemetry shutdown failed", "error", shutdownErr)
			}
		}()
	}

	// 4. Build the engine and decide
	engine, err := mcts.New(cfg,
		mcts.WithPolicy(scenario.Policy()),
		mcts.WithLogger(log.Slog()),
		mcts.WithTracer(mcts.NewTracer(log.Slog(), enableTrace)),
	)
	if err != nil {
		log.Error("Failed to create engine", "error", err)
		return
	}

	result, err := engine.Decide(ctx, scenario.DecisionState(), scenario.DecisionActions())
	if err != nil {
		log.Error("Decision failed", "error", err)
		return
	}

	// 5. Print the outcome
	if jsonOutput {
		printResultJSON(result)
		return
	}
	printRunHeader(scenario, engine.Config())
	printResultTable(result)
}

// resolveConfig builds the effective engine configuration. The base is the
// preset, or the config file when --config is given (the file layers over
// defaults and MCTS_* env vars); CLI flags override either base.
func resolveConfig() (mcts.Config, error) {
	var cfg mcts.Config
	var err error
	if configPath != "" {
		cfg, err = mcts.LoadConfig(configPath)
	} else {
		cfg, err = mcts.FromPreset(mcts.Preset(presetName))
	}
	if err != nil {
		return mcts.Config{}, err
	}

	if iterations > 0 {
		cfg.MaxIterations = iterations
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if deadlineMS > 0 {
		cfg.DeadlineMS = deadlineMS
	}
	return cfg, nil
}

// parseLogLevel maps the --log-level flag to a logging.Level, defaulting
// to Info for unknown values.
func parseLogLevel(level string) logging.Level {
	switch level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// stdoutExporterIf returns the stdout exporter name when enabled is set.
func stdoutExporterIf(enabled bool) string {
	if enabled {
		return "stdout"
	}
	return "none"
}

func printResultJSON(result *mcts.DecisionResult) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printRunHeader(scenario *Scenario, cfg mcts.Config) {
	fmt.Printf("\nScenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("   %s\n", scenario.Description)
	}
	fmt.Printf("   Candidates:     %d\n", len(scenario.Actions))
	fmt.Printf("   Iterations:     %d\n", cfg.MaxIterations)
	fmt.Printf("   Exploration:    %.3f\n", cfg.ExplorationConstant)
	fmt.Printf("   Rollout depth:  %d\n", cfg.SimulationDepth)
	fmt.Printf("   RAVE:           %v\n", cfg.UseRAVE)
	fmt.Printf("   Parallel:       %d (%s)\n", cfg.ParallelSimulations, cfg.ParallelMode)
	if cfg.DeadlineMS > 0 {
		fmt.Printf("   Deadline:       %dms\n", cfg.DeadlineMS)
	}
	fmt.Println("---------------------------------------------------")
}

func printResultTable(result *mcts.DecisionResult) {
	diag := result.Diagnostics

	label := result.SelectedAction.ID
	if result.SelectedAction.Name != "" {
		label = fmt.Sprintf("%s (%s)", result.SelectedAction.ID, result.SelectedAction.Name)
	}
	fmt.Printf("\nSelected: %s\n", label)
	fmt.Printf("   Confidence:     %.1f%%\n", result.Confidence*100)
	fmt.Printf("   Est. value:     %.3f\n", result.EstimatedValue)

	fmt.Printf("\n   %-3s %-22s %8s %8s %8s\n", "#", "ACTION", "VISITS", "MEAN", "UCB")
	for i, stat := range result.ActionStats {
		fmt.Printf("   %-3d %-22s %8d %8.3f %8.3f\n",
			i+1, stat.Action.ID, stat.VisitCount, stat.MeanReward, stat.UCBScore)
	}

	ts := result.TreeStats
	fmt.Printf("\n   Tree:           %d nodes, %d visits, depth %d (avg %.2f), %d leaves\n",
		ts.TotalNodes, ts.TotalVisits, ts.MaxDepth, ts.AverageDepth, ts.LeafNodes)
	fmt.Printf("   Iterations:     %d\n", diag.Iterations)
	fmt.Printf("   Seed:           %d\n", diag.Seed)
	fmt.Printf("   Elapsed:        %s\n", diag.Elapsed)

	if diag.PolicyFailures > 0 {
		fmt.Printf("   Failures:       %d recovered policy errors\n", diag.PolicyFailures)
	}
	if diag.Truncated {
		fmt.Println("   Truncated:      deadline expired before the budget was spent")
	}
	if diag.Degraded {
		fmt.Printf("\nDegraded decision: %s\n", diag.DegradedReason)
		fmt.Printf("   The selection was drawn uniformly at random.\n")
		return
	}

	fmt.Printf("\n✅ Decision %s completed.\n", result.DecisionID)
}
