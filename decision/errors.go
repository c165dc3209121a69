// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package decision

import "errors"

// Validation errors for the decision model. These are precondition failures:
// the engine reports them synchronously before any search work starts.
var (
	// ErrNoActions indicates an empty candidate action list.
	ErrNoActions = errors.New("no candidate actions provided")

	// ErrEmptyActionID indicates an action with a missing identifier.
	ErrEmptyActionID = errors.New("action id is empty")

	// ErrDuplicateAction indicates two candidate actions sharing an ID.
	ErrDuplicateAction = errors.New("duplicate action id")

	// ErrInvalidPrior indicates a prior probability outside [0,1].
	ErrInvalidPrior = errors.New("prior probability outside [0,1]")

	// ErrInvalidState indicates a state with a missing identifier.
	ErrInvalidState = errors.New("state id is empty")
)
