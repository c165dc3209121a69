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
	"math"
)

// ucb1 computes the classic upper-confidence score: mean reward plus the
// exploration bonus c·sqrt(ln N(parent) / N(child)). An unvisited child
// scores +Inf so it is always taken before any visited sibling.
func ucb1(mean float64, childVisits, parentVisits uint64, c float64) float64 {
	if childVisits == 0 {
		return math.Inf(1)
	}
	return mean + c*math.Sqrt(math.Log(float64(parentVisits))/float64(childVisits))
}

// childScore blends the exploitation estimate with the RAVE estimate:
//
//	(1−β)·Q + β·AMAF + c·sqrt(ln N(parent) / N(child))
//
// where β = k / (N(child) + k) decays toward zero as the child accumulates
// real visits. With RAVE off, or before the parent holds any AMAF sample
// for the action, this reduces to plain UCB1.
func (t *tree) childScore(parent *node, e childEdge, c, raveBias float64, useRAVE bool) float64 {
	child := t.node(e.id)
	if child.visits == 0 {
		return math.Inf(1)
	}
	q := child.meanReward()
	bonus := c * math.Sqrt(math.Log(float64(parent.visits))/float64(child.visits))
	if !useRAVE {
		return q + bonus
	}
	rs := parent.rave[e.action]
	if rs.visits == 0 {
		return q + bonus
	}
	beta := raveBias / (float64(child.visits) + raveBias)
	amaf := rs.reward / float64(rs.visits)
	return (1-beta)*q + beta*amaf + bonus
}

// selectChild returns the child edge maximizing childScore. Exact score
// ties break toward the lowest action ID, which pins the descent order for
// reproducible runs.
func (t *tree) selectChild(id nodeID, c, raveBias float64, useRAVE bool) (childEdge, bool) {
	n := t.node(id)
	if len(n.children) == 0 {
		return childEdge{}, false
	}
	var (
		best      childEdge
		bestScore = math.Inf(-1)
		bestID    string
		found     bool
	)
	for _, e := range n.children {
		score := t.childScore(n, e, c, raveBias, useRAVE)
		actionID := t.actions[e.action].ID
		if !found || score > bestScore || (score == bestScore && actionID < bestID) {
			best, bestScore, bestID, found = e, score, actionID, true
		}
	}
	return best, found
}

// selectLeaf runs the selection phase: descend from the root through the
// highest-scoring children until reaching a node that still has untried
// actions, a terminal state, or a dead end.
func (t *tree) selectLeaf(c, raveBias float64, useRAVE bool) nodeID {
	cur := t.root()
	for {
		n := t.node(cur)
		if n.expandable() || n.state.Terminal {
			return cur
		}
		e, ok := t.selectChild(cur, c, raveBias, useRAVE)
		if !ok {
			return cur
		}
		cur = e.id
	}
}
