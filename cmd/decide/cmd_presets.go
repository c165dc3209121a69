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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/decisioncore/mcts"
)

func runPresets(_ *cobra.Command, _ []string) {
	type presetRow struct {
		Name   string      `json:"name"`
		Config mcts.Config `json:"config"`
	}

	rows := make([]presetRow, 0, len(mcts.Presets()))
	for _, p := range mcts.Presets() {
		cfg, err := mcts.FromPreset(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolve preset %q: %v\n", p, err)
			return
		}
		rows = append(rows, presetRow{Name: p.String(), Config: cfg})
	}

	if jsonOutput {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "encode presets: %v\n", err)
			return
		}
		fmt.Println(string(data))
		return
	}

	fmt.Printf("\n%-10s %6s %6s %8s %6s %5s %-5s\n",
		"PRESET", "ITER", "DEPTH", "EXPLORE", "RAVE", "PAR", "MODE")
	for _, row := range rows {
		rave := "off"
		if row.Config.UseRAVE {
			rave = "on"
		}
		fmt.Printf("%-10s %6d %6d %8.3f %6s %5d %-5s\n",
			row.Name,
			row.Config.MaxIterations,
			row.Config.SimulationDepth,
			row.Config.ExplorationConstant,
			rave,
			row.Config.ParallelSimulations,
			row.Config.ParallelMode)
	}
	fmt.Println("\nUse a preset with: decide run --preset <name>")
}
