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

import "errors"

// Sentinel errors for the mcts package. Validation errors for states and
// actions live in package decision; the engine returns those unwrapped so
// callers can match them with errors.Is.
var (
	// Configuration errors
	ErrInvalidConfig = errors.New("invalid engine configuration")
	ErrUnknownPreset = errors.New("unknown preset name")

	// Policy errors. Never returned from Decide; recorded in diagnostics
	// and wrapped in failure samples so callers can classify them.
	ErrPolicyFailure = errors.New("simulation policy call failed")
	ErrForeignAction = errors.New("policy selected an action outside the candidate list")

	// Audit errors
	ErrAuditChainBroken = errors.New("audit hash chain broken")
)
