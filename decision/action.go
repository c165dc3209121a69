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

import (
	"fmt"
	"strings"
)

// Action is one candidate choice offered to the engine: invoking a skill,
// calling a tool, or falling back to direct model reasoning. The engine only
// compares actions; mapping an ID back to a concrete invocation is the
// caller's job.
//
// Thread Safety: Immutable after construction. Safe for concurrent reads.
type Action struct {
	// ID is the stable identifier. Required, unique within one decide call.
	// Selection ties are broken by lowest ID, so IDs also pin determinism.
	ID string `json:"id"`

	// Name is a short human-readable label.
	Name string `json:"name,omitempty"`

	// Description explains what executing the action would do.
	Description string `json:"description,omitempty"`

	// Prior is an optional prior probability in [0,1] biasing expansion
	// order and the default rollout policy. The zero value means "no
	// prior"; such actions are weighted uniformly.
	Prior float64 `json:"prior,omitempty"`
}

// HasPrior reports whether an explicit prior was supplied.
func (a Action) HasPrior() bool {
	return a.Prior > 0
}

// String returns a compact label for logs and tree dumps.
func (a Action) String() string {
	if a.Name == "" {
		return a.ID
	}
	return fmt.Sprintf("%s (%s)", a.ID, a.Name)
}

// Validate checks a single action's invariants.
//
// Outputs:
//   - error: Non-nil when the ID is empty or the prior is out of range.
func (a Action) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrEmptyActionID
	}
	if a.Prior < 0 || a.Prior > 1 {
		return fmt.Errorf("%w: action %q has prior %v", ErrInvalidPrior, a.ID, a.Prior)
	}
	return nil
}

// ValidateActions checks the full candidate list supplied to a decide call.
//
// Inputs:
//   - actions: Ordered candidate list from the orchestrator.
//
// Outputs:
//   - error: ErrNoActions for an empty list, otherwise the first per-action
//     or duplicate-ID violation found, wrapped with the offending index.
func ValidateActions(actions []Action) error {
	if len(actions) == 0 {
		return ErrNoActions
	}
	seen := make(map[string]struct{}, len(actions))
	for i, a := range actions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateAction, a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}
