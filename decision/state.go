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

import "strings"

// State is an opaque snapshot of the agent's situation at one point in a
// simulated future. The engine treats it as an identity plus bookkeeping;
// only policies read the feature vector.
//
// Thread Safety: Immutable after construction. The engine never mutates a
// state in place; simulated successors are fresh values.
type State struct {
	// ID is the stable identifier. Simulated successors extend it with the
	// action path, so a policy can recover the simulated history from the
	// ID alone.
	ID string `json:"id"`

	// Features is a numeric feature vector for policy heuristics. The
	// engine never interprets it.
	Features []float64 `json:"features,omitempty"`

	// Terminal marks a state with no meaningful successors. Rollouts stop
	// here and score the state directly.
	Terminal bool `json:"terminal,omitempty"`

	// Depth counts steps from the decision root.
	Depth int `json:"depth,omitempty"`
}

// Validate checks the state invariants required at the decide boundary.
func (s State) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrInvalidState
	}
	return nil
}

// Clone returns a deep copy. The feature slice is copied so the clone can
// outlive any buffer the caller reuses.
func (s State) Clone() State {
	out := s
	if len(s.Features) > 0 {
		out.Features = make([]float64, len(s.Features))
		copy(out.Features, s.Features)
	}
	return out
}
