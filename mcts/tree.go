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
	"fmt"
	"sort"
	"strings"

	"github.com/AleutianAI/decisioncore/decision"
)

// tree is the arena-backed search tree for a single decide call.
//
// All nodes live in one slice and reference each other by index, so the
// structure is acyclic by construction and there is nothing for the garbage
// collector to chase. The tree grows monotonically: nodes are appended by
// expansion and never removed, and the whole arena is dropped once the
// result has been built.
//
// Thread Safety: Not safe for concurrent mutation. One tree is owned by one
// search goroutine; root-parallel search builds several trees and merges
// their root statistics afterwards.
type tree struct {
	arena   []node
	actions []decision.Action
	useRAVE bool

	// expandOrder caches the action indices sorted by descending prior,
	// input order as the tiebreak. Every new node copies it into its
	// untried list.
	expandOrder []int
}

// newTree creates a tree containing only the root node.
func newTree(root decision.State, actions []decision.Action, useRAVE bool) *tree {
	t := &tree{
		arena:       make([]node, 0, 64),
		actions:     actions,
		useRAVE:     useRAVE,
		expandOrder: priorOrder(actions),
	}
	t.arena = append(t.arena, t.newNode(noNode, -1, root))
	return t
}

// priorOrder returns action indices ordered by descending prior, preserving
// input order between equal priors. Expansion pops from the front, which
// implements "highest prior first, falling back to first-in-order".
func priorOrder(actions []decision.Action) []int {
	order := make([]int, len(actions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return actions[order[a]].Prior > actions[order[b]].Prior
	})
	return order
}

// newNode builds an arena entry. Terminal states get no untried actions so
// selection stops at them and rollouts score them directly.
func (t *tree) newNode(parent nodeID, action int, state decision.State) node {
	n := node{
		parent: parent,
		action: action,
		state:  state,
	}
	if parent != noNode {
		n.depth = t.arena[parent].depth + 1
	}
	if !state.Terminal {
		n.untried = make([]int, len(t.expandOrder))
		copy(n.untried, t.expandOrder)
	}
	if t.useRAVE {
		n.rave = make([]raveStat, len(t.actions))
	}
	return n
}

// node returns the arena entry for a handle. The pointer is only valid
// until the next expand call.
func (t *tree) node(id nodeID) *node {
	return &t.arena[id]
}

// root returns the root handle (always the first arena slot).
func (t *tree) root() nodeID {
	return 0
}

// size returns the number of nodes in the arena.
func (t *tree) size() int {
	return len(t.arena)
}

// expand instantiates the best untried child of parent and returns its
// handle together with the action index that was played.
func (t *tree) expand(parent nodeID) (nodeID, int) {
	p := t.node(parent)
	if len(p.untried) == 0 {
		return noNode, -1
	}
	action := p.untried[0]
	next := advance(p.state, t.actions[action])
	fresh := t.newNode(parent, action, next)

	// The append may move the arena; re-fetch the parent afterwards.
	t.arena = append(t.arena, fresh)
	id := nodeID(len(t.arena) - 1)
	p = t.node(parent)
	p.untried = p.untried[1:]
	p.children = append(p.children, childEdge{action: action, id: id})
	return id, action
}

// advance synthesizes the successor reached by playing an action. The
// decision model is pure data, so simulated futures are derived here: the
// ID extends along the action path, the feature vector is shared (it is
// immutable), and depth counts up. Terminality only ever comes from the
// caller's initial state or the rollout depth cutoff.
func advance(s decision.State, a decision.Action) decision.State {
	return decision.State{
		ID:       s.ID + "/" + a.ID,
		Features: s.Features,
		Depth:    s.Depth + 1,
	}
}

// backpropagate commits one iteration: reward and a visit at every node
// from the expanded node up to the root, plus the all-moves-as-first update
// when RAVE is on. rolloutActions are the action indices the rollout phase
// played below the expanded node.
//
// The AMAF bookkeeping follows the climb: at each ancestor, every action
// played strictly below it this iteration (the rollout actions plus the
// tree edges climbed so far) is credited once. All candidate actions are
// legal everywhere in this model, so no legality filter is needed.
func (t *tree) backpropagate(from nodeID, reward float64, rolloutActions []int) {
	var seen []bool
	if t.useRAVE {
		seen = make([]bool, len(t.actions))
		for _, a := range rolloutActions {
			seen[a] = true
		}
	}

	for cur := from; cur != noNode; {
		n := t.node(cur)
		n.visits++
		n.totalReward += reward
		if t.useRAVE {
			for a, played := range seen {
				if played {
					n.rave[a].visits++
					n.rave[a].reward += reward
				}
			}
			if n.action >= 0 {
				seen[n.action] = true
			}
		}
		cur = n.parent
	}
}

// stats walks the arena once and summarizes its shape.
func (t *tree) stats() TreeStats {
	s := TreeStats{TotalNodes: len(t.arena)}
	var depthSum int
	for i := range t.arena {
		n := &t.arena[i]
		s.TotalVisits += n.visits
		depthSum += n.depth
		if n.depth > s.MaxDepth {
			s.MaxDepth = n.depth
		}
		if len(n.children) == 0 {
			s.LeafNodes++
		}
	}
	if len(t.arena) > 0 {
		s.AverageDepth = float64(depthSum) / float64(len(t.arena))
	}
	return s
}

// formatLimits bound the human-readable dump so a deep search cannot
// produce megabytes of text.
const (
	formatMaxDepth    = 4
	formatMaxChildren = 8
)

// format renders the tree for logs and the CLI: one line per node with
// visits and mean reward, children ordered by visit count.
func (t *tree) format() string {
	var sb strings.Builder
	root := t.node(t.root())
	s := t.stats()
	sb.WriteString(fmt.Sprintf("root %q (visits: %d, mean: %.3f)\n",
		root.state.ID, root.visits, root.meanReward()))
	sb.WriteString(fmt.Sprintf("nodes: %d, max depth: %d, leaves: %d\n",
		s.TotalNodes, s.MaxDepth, s.LeafNodes))
	t.formatChildren(&sb, t.root(), "", 1)
	return sb.String()
}

func (t *tree) formatChildren(sb *strings.Builder, id nodeID, prefix string, depth int) {
	if depth > formatMaxDepth {
		return
	}
	n := t.node(id)
	edges := make([]childEdge, len(n.children))
	copy(edges, n.children)
	sort.SliceStable(edges, func(a, b int) bool {
		return t.node(edges[a].id).visits > t.node(edges[b].id).visits
	})

	shown := edges
	if len(shown) > formatMaxChildren {
		shown = shown[:formatMaxChildren]
	}
	for i, e := range shown {
		last := i == len(shown)-1 && len(edges) <= formatMaxChildren
		branch := "├── "
		if last {
			branch = "└── "
		}
		c := t.node(e.id)
		sb.WriteString(fmt.Sprintf("%s%s%s (visits: %d, mean: %.3f)\n",
			prefix, branch, t.actions[e.action].ID, c.visits, c.meanReward()))

		childPrefix := prefix + "│   "
		if last {
			childPrefix = prefix + "    "
		}
		t.formatChildren(sb, e.id, childPrefix, depth+1)
	}
	if len(edges) > formatMaxChildren {
		sb.WriteString(fmt.Sprintf("%s└── … %d more\n", prefix, len(edges)-formatMaxChildren))
	}
}
