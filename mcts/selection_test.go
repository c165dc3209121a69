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
	"testing"

	"github.com/AleutianAI/decisioncore/decision"
)

func TestUCB1(t *testing.T) {
	if got := ucb1(0.5, 0, 10, 1.4); !math.IsInf(got, 1) {
		t.Errorf("ucb1 for unvisited child = %v, want +Inf", got)
	}

	// With a zero exploration constant the score is the mean itself.
	if got := ucb1(0.7, 5, 100, 0); got != 0.7 {
		t.Errorf("ucb1 with c=0 = %v, want 0.7", got)
	}

	// mean 0, c 1, parent 8, child 2: sqrt(ln 8 / 2).
	got := ucb1(0, 2, 8, 1)
	want := 1.019667
	if math.Abs(got-want) > 1e-5 {
		t.Errorf("ucb1(0, 2, 8, 1) = %v, want %v", got, want)
	}

	// More parent visits raises the bonus; more child visits lowers it.
	if ucb1(0, 2, 100, 1) <= ucb1(0, 2, 10, 1) {
		t.Error("bonus should grow with parent visits")
	}
	if ucb1(0, 50, 100, 1) >= ucb1(0, 2, 100, 1) {
		t.Error("bonus should shrink with child visits")
	}
}

func TestChildScorePlainReducesToUCB1(t *testing.T) {
	tr := newTree(decision.State{ID: "s0"}, testActions(), false)
	id, _ := tr.expand(tr.root())
	tr.backpropagate(id, 0.8, nil)
	tr.backpropagate(id, 0.4, nil)

	root := tr.node(tr.root())
	child := tr.node(id)
	e := root.children[0]

	got := tr.childScore(root, e, 1.4, DefaultRAVEBias, false)
	want := ucb1(child.meanReward(), child.visits, root.visits, 1.4)
	if got != want {
		t.Errorf("childScore without RAVE = %v, want ucb1 = %v", got, want)
	}
}

func TestChildScoreFallsBackWithoutAMAF(t *testing.T) {
	tr := newTree(decision.State{ID: "s0"}, testActions(), true)
	id, _ := tr.expand(tr.root())

	// Fill in visit statistics by hand so the parent holds no AMAF
	// sample for the expanded action.
	tr.node(id).visits = 2
	tr.node(id).totalReward = 1.0
	tr.node(tr.root()).visits = 4

	root := tr.node(tr.root())
	e := root.children[0]

	got := tr.childScore(root, e, 1.0, DefaultRAVEBias, true)
	want := ucb1(0.5, 2, 4, 1.0)
	if got != want {
		t.Errorf("childScore without AMAF sample = %v, want plain ucb1 = %v", got, want)
	}
}

func TestChildScoreRAVEBlend(t *testing.T) {
	tr := newTree(decision.State{ID: "s0"}, testActions(), true)
	id, action := tr.expand(tr.root())

	tr.node(id).visits = 2
	tr.node(id).totalReward = 0.5 // Q = 0.25
	root := tr.node(tr.root())
	root.visits = 8
	root.rave[action] = raveStat{visits: 3, reward: 3.0} // AMAF = 1.0

	// k = 2 and two child visits give beta = 0.5; with c = 0 the score
	// is exactly the blend 0.5*0.25 + 0.5*1.0.
	got := tr.childScore(root, root.children[0], 0, 2, true)
	if got != 0.625 {
		t.Errorf("blended score = %v, want 0.625", got)
	}

	// A larger bias leans harder on the AMAF estimate.
	strong := tr.childScore(root, root.children[0], 0, 200, true)
	if strong <= got {
		t.Errorf("score with k=200 = %v, should exceed score with k=2 = %v", strong, got)
	}
}

func TestSelectChildPrefersUnvisited(t *testing.T) {
	tr := newTree(decision.State{ID: "s0"}, testActions(), false)
	first, _ := tr.expand(tr.root())
	tr.backpropagate(first, 1.0, nil)
	second, _ := tr.expand(tr.root())

	e, ok := tr.selectChild(tr.root(), 1.4, 0, false)
	if !ok {
		t.Fatal("selectChild found no children")
	}
	if e.id != second {
		t.Errorf("selected %v, want the unvisited child %v", e.id, second)
	}
}

func TestSelectChildTieBreaksOnActionID(t *testing.T) {
	// Input order puts "b" first so it is expanded first; on an exact
	// score tie the lower action ID must still win.
	actions := []decision.Action{{ID: "b"}, {ID: "a"}}
	tr := newTree(decision.State{ID: "s0"}, actions, false)
	bID, _ := tr.expand(tr.root())
	aID, _ := tr.expand(tr.root())

	tr.node(bID).visits = 2
	tr.node(bID).totalReward = 1.0
	tr.node(aID).visits = 2
	tr.node(aID).totalReward = 1.0
	tr.node(tr.root()).visits = 4

	e, ok := tr.selectChild(tr.root(), 1.4, 0, false)
	if !ok {
		t.Fatal("selectChild found no children")
	}
	if got := actions[e.action].ID; got != "a" {
		t.Errorf("tie broke to %q, want \"a\"", got)
	}
}

func TestSelectLeafReturnsExpandableRoot(t *testing.T) {
	tr := newTree(decision.State{ID: "s0"}, testActions(), false)
	if got := tr.selectLeaf(1.4, 0, false); got != tr.root() {
		t.Errorf("selectLeaf on fresh tree = %v, want root", got)
	}
}

func TestSelectLeafDescendsToBestChild(t *testing.T) {
	tr := newTree(decision.State{ID: "s0"}, testActions(), false)
	rewards := []float64{1.0, 0.0, 0.5}
	for i := 0; i < 3; i++ {
		id, action := tr.expand(tr.root())
		tr.backpropagate(id, rewards[action], nil)
	}

	// Root is exhausted, so selection must descend; with no exploration
	// bonus the highest-mean child wins.
	leaf := tr.selectLeaf(0, 0, false)
	if got := tr.node(leaf).state.ID; got != "s0/a" {
		t.Errorf("descended to %q, want s0/a", got)
	}
}

func TestSelectLeafStopsAtTerminalRoot(t *testing.T) {
	tr := newTree(decision.State{ID: "s0", Terminal: true}, testActions(), false)
	if got := tr.selectLeaf(1.4, 0, false); got != tr.root() {
		t.Errorf("selectLeaf on terminal root = %v, want root", got)
	}
}

func TestSelectLeafStopsAtDeadEnd(t *testing.T) {
	tr := newTree(decision.State{ID: "s0"}, nil, false)
	if got := tr.selectLeaf(1.4, 0, false); got != tr.root() {
		t.Errorf("selectLeaf with no actions = %v, want root", got)
	}
}
