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
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/AleutianAI/decisioncore/decision"
	"github.com/AleutianAI/decisioncore/policy"
)

// Engine runs Monte Carlo Tree Search over a set of candidate actions and
// returns the action the search converged on.
//
// The engine performs the classic MCTS loop:
//  1. SELECT: Traverse the tree using UCB1 (optionally RAVE-blended) to find a leaf
//  2. EXPAND: Attach one child for an untried action, highest prior first
//  3. SIMULATE: Roll the policy forward from the new node until terminal or depth cap
//  4. BACKPROPAGATE: Update visit counts and rewards up the path to the root
//
// An Engine is cheap to construct and holds no per-decision state: every
// Decide call builds a private tree, runs the iteration budget against it,
// and discards it once the result has been extracted.
//
// Thread Safety: Safe for concurrent use. Concurrent Decide calls never
// share trees, RNGs, or diagnostics.
type Engine struct {
	cfg    Config
	policy policy.SimulationPolicy
	logger *slog.Logger
	tracer *Tracer
	audit  *AuditTrail
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithPolicy sets the simulation policy used for rollouts and terminal
// evaluation. Defaults to policy.NewUniform() when unset or nil.
func WithPolicy(p policy.SimulationPolicy) Option {
	return func(e *Engine) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the tracer for span and debug-log emission.
func WithTracer(tracer *Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithAudit attaches an audit trail that records one tamper-evident entry
// pair per decision. Nil (the default) disables auditing.
func WithAudit(trail *AuditTrail) Option {
	return func(e *Engine) {
		e.audit = trail
	}
}

// New creates an Engine.
//
// Inputs:
//   - cfg: Search configuration. Zero-value fields are filled from
//     DefaultConfig before validation.
//   - opts: Optional policy, logger, tracer, and audit overrides.
//
// Outputs:
//   - *Engine: Ready for concurrent Decide calls.
//   - error: ErrInvalidConfig if the configuration fails validation.
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		policy: policy.NewUniform(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tracer == nil {
		e.tracer = NewTracer(e.logger, false)
	}
	return e, nil
}

// Config returns the engine's effective (normalized) configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// search carries the per-call state of a single Decide invocation so that
// concurrent calls on a shared Engine never touch the same data.
//
// Thread Safety: Not safe for concurrent use. Root-parallel workers each
// operate on their own clone.
type search struct {
	cfg           Config
	policy        policy.SimulationPolicy
	actions       []decision.Action
	index         map[string]int
	defaultReward float64
	failures      *failureLog
}

func (e *Engine) newSearch(actions []decision.Action) *search {
	index := make(map[string]int, len(actions))
	for i, a := range actions {
		index[a.ID] = i
	}
	return &search{
		cfg:           e.cfg,
		policy:        e.policy,
		actions:       actions,
		index:         index,
		defaultReward: defaultRewardFor(e.policy),
		failures:      &failureLog{},
	}
}

// clone returns a copy with a fresh failure log, so root-parallel workers
// can record failures without locking.
func (s *search) clone() *search {
	c := *s
	c.failures = &failureLog{}
	return &c
}

// maxFailureSamples bounds the failure excerpts carried in Diagnostics.
// The failure count stays exact; only the samples are capped.
const maxFailureSamples = 8

// failureLog accumulates policy failures observed during one search.
// All writes happen on the goroutine driving the iteration loop.
type failureLog struct {
	count   int
	samples []PolicyFailure
}

func (f *failureLog) record(iteration int, res rolloutResult) {
	f.count += res.failures
	if len(f.samples) < maxFailureSamples {
		f.samples = append(f.samples, PolicyFailure{
			Iteration: iteration,
			Phase:     res.phase,
			Error:     res.failure.Error(),
		})
	}
}

func (f *failureLog) merge(other *failureLog) {
	f.count += other.count
	for _, s := range other.samples {
		if len(f.samples) >= maxFailureSamples {
			break
		}
		f.samples = append(f.samples, s)
	}
}

// Decide searches from initial over actions and returns the action the
// search converged on, with full statistics and diagnostics.
//
// Inputs:
//   - ctx: Cancellation and deadline control. An expiring context
//     truncates the search rather than failing it.
//   - initial: The state the decision is being made for.
//   - actions: Candidate actions. Must be non-empty with unique IDs.
//
// Outputs:
//   - *DecisionResult: Selected action, confidence, per-action statistics,
//     tree statistics, and diagnostics. Always JSON-serializable.
//   - error: Validation errors from the decision package for bad inputs.
//     Policy failures and deadline expiry never surface as errors; they
//     are reported through Diagnostics.
//
// A non-positive iteration budget degrades to a uniform random pick with
// zero confidence instead of failing.
//
// Thread Safety: Safe for concurrent use.
func (e *Engine) Decide(ctx context.Context, initial decision.State, actions []decision.Action) (*DecisionResult, error) {
	start := time.Now()

	if err := initial.Validate(); err != nil {
		return nil, err
	}
	if err := decision.ValidateActions(actions); err != nil {
		return nil, err
	}

	seed := e.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	id := newDecisionID()

	ctx, span := e.tracer.StartDecision(ctx, id, initial, len(actions), e.cfg)
	e.auditStart(id, initial, len(actions))

	var result *DecisionResult
	if e.cfg.MaxIterations <= 0 {
		diag := Diagnostics{Degraded: true, Seed: seed, Elapsed: time.Since(start)}
		result = uniformDecision(id, rng, actions, TreeStats{}, e.cfg, diag, degradedNoBudget)
	} else {
		runCtx := ctx
		if d := e.cfg.Deadline(); d > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}

		s := e.newSearch(actions)
		if e.cfg.ParallelMode == ParallelRoot && e.cfg.ParallelSimulations > 1 {
			result = e.decideRootParallel(runCtx, s, initial, id, seed, start)
		} else {
			result = e.decideSerial(runCtx, s, initial, id, seed, rng, start)
		}
	}

	e.tracer.EndDecision(ctx, span, result)
	e.auditEnd(result)
	recordDecision(ctx, result)
	return result, nil
}

// decideSerial runs the whole iteration budget on the calling goroutine,
// using leaf-batched rollouts when the configuration asks for them.
func (e *Engine) decideSerial(ctx context.Context, s *search, initial decision.State, id string, seed int64, rng *rand.Rand, start time.Time) *DecisionResult {
	t := newTree(initial, s.actions, e.cfg.UseRAVE)
	completed, truncated := e.searchLoop(ctx, s, t, rng, e.cfg.MaxIterations)

	if e.logger.Enabled(ctx, slog.LevelDebug) {
		e.logger.DebugContext(ctx, "final search tree",
			slog.String("decision_id", id),
			slog.String("tree", t.format()),
		)
	}

	diag := Diagnostics{
		Truncated:      truncated,
		Iterations:     completed,
		PolicyFailures: s.failures.count,
		FailureSamples: s.failures.samples,
		Seed:           seed,
		Elapsed:        time.Since(start),
	}
	if result := treeDecision(id, t, e.cfg, diag); result != nil {
		return result
	}
	diag.Degraded = true
	return uniformDecision(id, rng, s.actions, t.stats(), e.cfg, diag, degradedEmptyTree)
}

// searchLoop drives up to iterations passes until the budget is spent or
// ctx expires. A cancelled iteration is discarded, not counted.
func (e *Engine) searchLoop(ctx context.Context, s *search, t *tree, rng *rand.Rand, iterations int) (completed int, truncated bool) {
	for i := 0; i < iterations; i++ {
		if ctx.Err() != nil {
			return completed, true
		}
		if err := e.runIteration(ctx, s, t, rng, i); err != nil {
			return completed, true
		}
		completed++
	}
	return completed, false
}

// runIteration performs one select/expand/simulate/backpropagate pass.
// The only error it returns is context cancellation; policy failures are
// absorbed into the iteration using the policy's default reward.
func (e *Engine) runIteration(ctx context.Context, s *search, t *tree, rng *rand.Rand, iteration int) error {
	// 1. SELECT
	leaf := t.selectLeaf(e.cfg.ExplorationConstant, e.cfg.RAVEBias, e.cfg.UseRAVE)

	// 2. EXPAND
	target := leaf
	if t.node(leaf).expandable() {
		child, _ := t.expand(leaf)
		target = child
	}
	state := t.node(target).state

	// 3. SIMULATE
	batch := 1
	if e.cfg.ParallelMode == ParallelLeaf {
		batch = e.cfg.ParallelSimulations
	}
	var res rolloutResult
	var err error
	if batch <= 1 {
		res, err = s.rollout(ctx, rng, state)
	} else {
		res, err = s.rolloutBatch(ctx, rng, state, batch)
	}
	if err != nil {
		return err
	}
	if res.failure != nil {
		s.failures.record(iteration, res)
		e.tracer.RecordPolicyFailure(ctx, iteration, res.phase, res.failure)
	}

	// 4. BACKPROPAGATE
	t.backpropagate(target, res.reward, res.played)
	e.tracer.RecordIteration(ctx, iteration, res.reward, res.steps)
	return nil
}

func (e *Engine) auditStart(id string, initial decision.State, actionCount int) {
	if e.audit == nil {
		return
	}
	e.audit.Record(AuditEvent{
		Type:        AuditDecisionStart,
		DecisionID:  id,
		StateID:     initial.ID,
		ActionCount: actionCount,
	})
}

func (e *Engine) auditEnd(result *DecisionResult) {
	if e.audit == nil {
		return
	}
	e.audit.Record(AuditEvent{
		Type:           AuditDecisionEnd,
		DecisionID:     result.DecisionID,
		ActionID:       result.SelectedAction.ID,
		Confidence:     result.Confidence,
		Iterations:     result.Diagnostics.Iterations,
		Truncated:      result.Diagnostics.Truncated,
		Degraded:       result.Diagnostics.Degraded,
		PolicyFailures: result.Diagnostics.PolicyFailures,
	})
}
