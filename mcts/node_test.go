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
	"testing"

	"github.com/AleutianAI/decisioncore/decision"
)

func testActions() []decision.Action {
	return []decision.Action{
		{ID: "a", Name: "Action A"},
		{ID: "b", Name: "Action B"},
		{ID: "c", Name: "Action C"},
	}
}

func TestNodeMeanReward(t *testing.T) {
	n := node{}
	if n.meanReward() != 0 {
		t.Errorf("meanReward with 0 visits = %v, want 0", n.meanReward())
	}

	n.visits = 4
	n.totalReward = 3.0
	if n.meanReward() != 0.75 {
		t.Errorf("meanReward = %v, want 0.75", n.meanReward())
	}
}

func TestNodeExpandable(t *testing.T) {
	n := node{untried: []int{0, 1, 2}}
	if !n.expandable() {
		t.Error("node with untried actions should be expandable")
	}

	n.untried = nil
	if n.expandable() {
		t.Error("node without untried actions should not be expandable")
	}
}

func TestNodeChildFor(t *testing.T) {
	n := node{
		children: []childEdge{
			{action: 0, id: 1},
			{action: 2, id: 2},
		},
	}

	if got := n.childFor(0); got != 1 {
		t.Errorf("childFor(0) = %v, want 1", got)
	}
	if got := n.childFor(2); got != 2 {
		t.Errorf("childFor(2) = %v, want 2", got)
	}
	if got := n.childFor(1); got != noNode {
		t.Errorf("childFor(1) = %v, want noNode", got)
	}
}

func TestNewNodeRoot(t *testing.T) {
	tr := newTree(decision.State{ID: "s0"}, testActions(), false)
	root := tr.node(tr.root())

	if root.parent != noNode {
		t.Errorf("root parent = %v, want noNode", root.parent)
	}
	if root.action != -1 {
		t.Errorf("root action = %d, want -1", root.action)
	}
	if root.depth != 0 {
		t.Errorf("root depth = %d, want 0", root.depth)
	}
	if len(root.untried) != 3 {
		t.Errorf("root untried = %d actions, want 3", len(root.untried))
	}
	if root.rave != nil {
		t.Error("rave stats should not be allocated when RAVE is off")
	}
}

func TestNewNodeTerminalState(t *testing.T) {
	tr := newTree(decision.State{ID: "s0", Terminal: true}, testActions(), false)
	root := tr.node(tr.root())

	if root.expandable() {
		t.Error("terminal state should never be expandable")
	}
}

func TestNewNodeRAVEAllocation(t *testing.T) {
	tr := newTree(decision.State{ID: "s0"}, testActions(), true)
	root := tr.node(tr.root())

	if len(root.rave) != 3 {
		t.Errorf("rave stats = %d entries, want 3", len(root.rave))
	}
}
