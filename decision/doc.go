// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package decision defines the domain value types consumed by the search
// engine: the immutable decision state presented by the orchestrator and the
// candidate actions it is choosing between.
//
// The types here are pure data. They carry no search behavior; the engine in
// package mcts owns tree growth and statistics, and package policy owns
// rollout heuristics. Keeping the model inert lets the orchestrator, the
// engine, and custom policies share values freely across goroutines.
package decision
