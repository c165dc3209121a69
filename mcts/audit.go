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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// AuditEventType labels an entry in the audit trail.
type AuditEventType string

const (
	// AuditDecisionStart records that a decide call began.
	AuditDecisionStart AuditEventType = "decision_start"

	// AuditDecisionEnd records the outcome of a decide call.
	AuditDecisionEnd AuditEventType = "decision_end"
)

// String returns the string representation.
func (t AuditEventType) String() string {
	return string(t)
}

// AuditEvent is one immutable record in the audit trail. Unset fields are
// omitted from the serialized form; which fields are set depends on the
// event type.
type AuditEvent struct {
	// Timestamp when this event was recorded (Unix milliseconds UTC).
	Timestamp int64 `json:"timestamp"`

	// Type is the kind of event.
	Type AuditEventType `json:"type"`

	// DecisionID ties start and end events of one decide call together.
	DecisionID string `json:"decision_id"`

	// StateID is the deciding state (start events).
	StateID string `json:"state_id,omitempty"`

	// ActionCount is the number of candidates (start events).
	ActionCount int `json:"action_count,omitempty"`

	// ActionID is the selected action (end events).
	ActionID string `json:"action_id,omitempty"`

	// Confidence of the selection (end events).
	Confidence float64 `json:"confidence,omitempty"`

	// Iterations committed by the search (end events).
	Iterations int `json:"iterations,omitempty"`

	// Truncated and Degraded mirror the result diagnostics (end events).
	Truncated bool `json:"truncated,omitempty"`
	Degraded  bool `json:"degraded,omitempty"`

	// PolicyFailures counts recovered policy errors (end events).
	PolicyFailures int `json:"policy_failures,omitempty"`

	// ChainHash is the running hash at this entry, set during Record.
	ChainHash string `json:"chain_hash,omitempty"`
}

// genesisHash is the initial hash value for the audit chain.
const genesisHash = "genesis"

// DefaultAuditCapacity bounds an AuditTrail when no capacity is given.
const DefaultAuditCapacity = 4096

// AuditTrail maintains an immutable decision log with hash chain
// verification.
//
// Each entry's chain hash covers the previous hash plus the entry data, so
// any in-place edit, reorder, or deletion is detectable with Verify. The
// trail is bounded: once full, new events are counted as dropped rather
// than recorded, which keeps the existing chain verifiable.
//
// Thread Safety: Safe for concurrent use.
type AuditTrail struct {
	mu       sync.RWMutex
	entries  []AuditEvent
	hash     string
	capacity int
	dropped  int
}

// NewAuditTrail creates an audit trail bounded to capacity entries.
// A non-positive capacity uses DefaultAuditCapacity.
//
// Thread Safety: The returned trail is safe for concurrent use.
func NewAuditTrail(capacity int) *AuditTrail {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return &AuditTrail{
		entries:  make([]AuditEvent, 0),
		hash:     genesisHash,
		capacity: capacity,
	}
}

// Record appends an event to the trail.
//
// The event's timestamp is set if unset, and a chain hash is computed over
// the previous hash and the event data. Events arriving after the trail is
// full are dropped and counted, never silently lost.
//
// Thread Safety: Safe for concurrent use.
func (a *AuditTrail) Record(event AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.entries) >= a.capacity {
		a.dropped++
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	// The chain hash is assigned below; a caller-supplied value must not
	// leak into the hashed bytes or Verify would reject the entry.
	event.ChainHash = ""

	h := sha256.New()
	h.Write([]byte(a.hash))
	data, _ := json.Marshal(event)
	h.Write(data)
	a.hash = hex.EncodeToString(h.Sum(nil))

	event.ChainHash = a.hash
	a.entries = append(a.entries, event)
}

// Verify recomputes the hash chain from genesis and checks every entry.
//
// Outputs:
//   - error: nil if the trail is intact, ErrAuditChainBroken (with the
//     first bad index) if any entry was tampered with.
//
// Thread Safety: Safe for concurrent use.
func (a *AuditTrail) Verify() error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	hash := genesisHash
	for i, entry := range a.entries {
		unchained := entry
		unchained.ChainHash = ""

		h := sha256.New()
		h.Write([]byte(hash))
		data, _ := json.Marshal(unchained)
		h.Write(data)
		hash = hex.EncodeToString(h.Sum(nil))

		if entry.ChainHash != hash {
			return fmt.Errorf("%w: entry %d", ErrAuditChainBroken, i)
		}
	}

	if hash != a.hash {
		return fmt.Errorf("%w: head hash mismatch", ErrAuditChainBroken)
	}
	return nil
}

// Entries returns a copy of all events.
//
// Thread Safety: Safe for concurrent use.
func (a *AuditTrail) Entries() []AuditEvent {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]AuditEvent, len(a.entries))
	copy(result, a.entries)
	return result
}

// EntriesByDecision returns the events recorded for one decision ID.
//
// Thread Safety: Safe for concurrent use.
func (a *AuditTrail) EntriesByDecision(decisionID string) []AuditEvent {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]AuditEvent, 0, 2)
	for _, entry := range a.entries {
		if entry.DecisionID == decisionID {
			result = append(result, entry)
		}
	}
	return result
}

// Len returns the number of recorded events.
//
// Thread Safety: Safe for concurrent use.
func (a *AuditTrail) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// Dropped returns how many events were rejected because the trail was full.
//
// Thread Safety: Safe for concurrent use.
func (a *AuditTrail) Dropped() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dropped
}

// CurrentHash returns the head of the hash chain.
//
// Thread Safety: Safe for concurrent use.
func (a *AuditTrail) CurrentHash() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.hash
}
