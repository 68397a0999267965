// Package engine orchestrates one decision cycle: snapshot validation,
// derived metrics, constraint evaluation, priority allocation, council
// consensus, the circuit breaker, and plan finalization, with the risk
// scorer's output carried into the next cycle.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cadencehq/cadence/internal/config"
	"github.com/cadencehq/cadence/internal/constraints"
	"github.com/cadencehq/cadence/internal/council"
	"github.com/cadencehq/cadence/internal/matrix"
	"github.com/cadencehq/cadence/internal/planner"
	"github.com/cadencehq/cadence/internal/risk"
	"github.com/cadencehq/cadence/internal/safety"
	"github.com/cadencehq/cadence/internal/session"
	"github.com/cadencehq/cadence/internal/types"
)

// CycleResult is everything one decision cycle produces.
type CycleResult struct {
	State         *types.HealthState       `json:"state"`
	Metrics       *types.ComputedMetrics   `json:"metrics"`
	Constraints   *types.ConstraintSet     `json:"constraints"`
	Weights       map[types.Domain]float64 `json:"weights"`
	TradeOffs     []types.TradeOffDecision `json:"trade_offs"`
	Consensus     *types.ConsensusResult   `json:"consensus"`
	Breaker       safety.Assessment        `json:"breaker"`
	Schedule      []types.Task             `json:"schedule"`
	FutureImpacts []types.FutureImpact     `json:"future_impacts,omitempty"`
	// Signals computed this cycle; they shape the next one.
	Signals      []types.AdaptiveSignal `json:"signals,omitempty"`
	Conservative bool                   `json:"conservative,omitempty"`
}

// Engine wires the pipeline components together.
type Engine struct {
	cfg       *config.Config
	evaluator *constraints.Evaluator
	matrix    *matrix.Engine
	council   *council.Council
	breaker   *safety.Breaker
	scorer    *risk.Scorer
	adjuster  *planner.Adjuster

	now func() time.Time
}

// New builds an engine. rationalizer may be nil; the council then uses
// templated rationales throughout.
func New(cfg *config.Config, rationalizer council.Rationalizer) *Engine {
	return &Engine{
		cfg:       cfg,
		evaluator: constraints.New(cfg),
		matrix:    matrix.New(cfg),
		council:   council.New(cfg, rationalizer),
		breaker:   safety.New(cfg),
		scorer:    risk.New(cfg),
		adjuster:  planner.New(cfg),
		now:       time.Now,
	}
}

// RunCycle executes one full decision cycle against the session. The
// snapshot must have been set via the session beforehand. An internal
// invariant failure yields a maximally conservative result together
// with ErrConservativeFallback; a validation failure returns the error
// with no state change.
func (e *Engine) RunCycle(ctx context.Context, sess *session.Session) (*CycleResult, error) {
	state := sess.Health()
	if state == nil {
		return nil, types.NewValidationError("health_state", "no snapshot recorded for this session")
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	now := e.now()

	metrics := e.scorer.ComputeMetrics(state)
	state.Computed = metrics

	// Last cycle's risk score and skip-pattern signals feed this cycle.
	priorMetrics, priorSignals := sess.Carryover()
	var fb *constraints.Feedback
	if priorMetrics != nil {
		fb = &constraints.Feedback{PriorRiskScore: priorMetrics.BurnoutRiskScore}
	}
	cs := e.evaluator.Evaluate(state, fb)

	tasks := sess.Tasks()
	snapshot, err := sess.History().Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("history snapshot: %w", err)
	}

	decisions, weights, err := e.matrix.Allocate(state, cs, priorSignals, demandFromTasks(tasks))
	if err != nil {
		return e.conservative(state, metrics, cs, tasks, err)
	}

	skipRates := e.scorer.SkipRates(snapshot, now)
	consensus, err := e.council.Evaluate(ctx, state, cs, skipRates)
	if err != nil {
		return e.conservative(state, metrics, cs, tasks, err)
	}

	assessment := e.breaker.Assess(cs)
	e.breaker.Apply(assessment, tasks)
	schedule := e.adjuster.Finalize(tasks, decisions)
	impacts := e.matrix.FutureImpacts(decisions, state, cs)

	if err := e.record(ctx, sess, now, decisions, schedule, cs); err != nil {
		// Recording failures don't invalidate the computed plan, but the
		// caller should know the audit trail has a hole.
		slog.Warn("failed to record cycle decisions", "error", err)
	}

	// Recompute patterns over the log including this cycle, for next time.
	updated, err := sess.History().Snapshot(ctx)
	if err != nil {
		updated = snapshot
	}
	signals := e.scorer.DetectPatterns(updated, now)
	sess.SetCarryover(metrics, signals)

	return &CycleResult{
		State:         state,
		Metrics:       metrics,
		Constraints:   cs,
		Weights:       weights,
		TradeOffs:     decisions,
		Consensus:     consensus,
		Breaker:       assessment,
		Schedule:      schedule,
		FutureImpacts: impacts,
		Signals:       signals,
	}, nil
}

// conservative builds the maximally cautious result used when an
// invariant fails mid-cycle: every domain skips for safety, every task
// is blocked, and the result reads as if the breaker engaged.
func (e *Engine) conservative(state *types.HealthState, metrics *types.ComputedMetrics, cs *types.ConstraintSet, tasks []types.Task, cause error) (*CycleResult, error) {
	reason := fmt.Sprintf("conservative fallback: %v", cause)

	decisions := make([]types.TradeOffDecision, 0, len(e.cfg.Domains))
	for _, d := range e.cfg.Domains {
		decisions = append(decisions, types.TradeOffDecision{
			Domain:     d,
			Action:     types.ActionSkip,
			SkipReason: types.SkipSafety,
			Reasoning:  reason,
		})
	}

	schedule := make([]types.Task, len(tasks))
	copy(schedule, tasks)
	for i := range schedule {
		schedule[i].IsBlocked = true
		schedule[i].BlockReason = reason
	}

	return &CycleResult{
		State:        state,
		Metrics:      metrics,
		Constraints:  cs,
		TradeOffs:    decisions,
		Consensus:    &types.ConsensusResult{Vote: types.VoteSkip, AggregateSeverity: 2, AggregateConfidence: 1},
		Breaker:      safety.Assessment{Engaged: true, Reason: reason},
		Schedule:     schedule,
		Conservative: true,
	}, fmt.Errorf("%w: %w", types.ErrConservativeFallback, cause)
}

// record appends one history entry per scheduled task, mapping the
// final task disposition onto the decision action.
func (e *Engine) record(ctx context.Context, sess *session.Session, now time.Time, decisions []types.TradeOffDecision, schedule []types.Task, cs *types.ConstraintSet) error {
	byDomain := make(map[types.Domain]types.TradeOffDecision, len(decisions))
	for _, d := range decisions {
		byDomain[d.Domain] = d
	}

	var errs []error
	for _, t := range schedule {
		d := byDomain[t.Domain]
		entry := types.Decision{
			ID:          uuid.New().String(),
			Timestamp:   now,
			Activity:    t.Title,
			Domain:      t.Domain,
			Action:      dispositionOf(t, d),
			Reasoning:   reasoningOf(t, d),
			Constraints: append([]types.Constraint(nil), cs.Constraints...),
		}
		if err := sess.History().Append(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func dispositionOf(t types.Task, d types.TradeOffDecision) types.DecisionAction {
	switch {
	case t.IsBlocked, t.Skipped, d.Action == types.ActionSkip:
		return types.DecisionRejected
	case t.Substituted, d.Action == types.ActionDowngrade:
		return types.DecisionModified
	default:
		return types.DecisionProceed
	}
}

func reasoningOf(t types.Task, d types.TradeOffDecision) string {
	if t.IsBlocked {
		return t.BlockReason
	}
	if t.AdjustReason != "" {
		return t.AdjustReason
	}
	return d.Reasoning
}

// demandFromTasks sums each domain's requested minutes from the day's
// schedule. Domains without tasks fall back to their nominal share
// inside the allocator.
func demandFromTasks(tasks []types.Task) matrix.Demand {
	demand := matrix.Demand{}
	for _, t := range tasks {
		if !t.IsBlocked {
			demand[t.Domain] += t.DurationMinutes
		}
	}
	return demand
}
