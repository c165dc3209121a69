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
	"github.com/AleutianAI/decisioncore/decision"
)

// nodeID addresses a node inside a tree's arena. Handles stay valid for the
// lifetime of the tree even as the arena's backing array grows; raw *node
// pointers must never be held across an expand call.
type nodeID int32

// noNode is the null handle: the root's parent and failed lookups.
const noNode nodeID = -1

// childEdge links a parent to the child reached by playing one action.
// Children are appended in expansion order, which keeps iteration
// deterministic without a sorted container.
type childEdge struct {
	action int // index into the tree's candidate action list
	id     nodeID
}

// raveStat accumulates all-moves-as-first statistics for one action at one
// node: every rollout that played the action anywhere below the node
// contributes its reward here, regardless of where on the path it was
// played.
type raveStat struct {
	visits uint64
	reward float64
}

// node is one explored (state, path-of-actions) position.
//
// Fields are plain values on purpose. A tree belongs to exactly one decide
// call: the search loop mutates it from a single goroutine and parallel
// rollouts only read cloned states, so per-node locking and atomics would
// buy nothing. Root-parallel search runs one whole tree per goroutine and
// merges afterwards.
type node struct {
	parent nodeID
	action int // action index that led here; -1 at the root
	depth  int
	state  decision.State

	visits      uint64
	totalReward float64

	children []childEdge
	untried  []int // action indices not yet expanded, best prior first

	// rave is indexed by action, allocated only when RAVE is enabled.
	rave []raveStat
}

// meanReward returns totalReward averaged over visits, 0 when unvisited.
func (n *node) meanReward() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.totalReward / float64(n.visits)
}

// expandable reports whether the node still has untried actions. Terminal
// states are created with an empty untried list, so they are never
// expandable.
func (n *node) expandable() bool {
	return len(n.untried) > 0
}

// childFor returns the handle of the child reached by the given action
// index, or noNode if that action has not been expanded here.
func (n *node) childFor(action int) nodeID {
	for _, e := range n.children {
		if e.action == action {
			return e.id
		}
	}
	return noNode
}
