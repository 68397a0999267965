// Package constraints turns a health snapshot into the set of active,
// severity-scored constraints that drive the rest of the decision
// pipeline.
//
// The evaluator is a pure function over (HealthState, thresholds,
// adaptive feedback). It always produces a result, possibly empty, and
// has no failure mode. The rules live in an explicit ordered table so
// evaluation order is deterministic and testable; there is no nested
// conditional ladder to reason about.
package constraints

import (
	"fmt"
	"math"

	"github.com/cadencehq/cadence/internal/config"
	"github.com/cadencehq/cadence/internal/types"
)

// Feedback is the risk scorer's output from the previous cycle. It is
// consumed here on the next cycle, never retroactively.
type Feedback struct {
	// PriorRiskScore is last cycle's burnout risk score; above the
	// configured threshold it boosts this cycle's constraint severities.
	PriorRiskScore float64
}

// Evaluator applies the ordered rule table to a snapshot.
type Evaluator struct {
	thresholds config.ThresholdConfig
	temporal   config.TemporalConfig
}

// New creates an evaluator with the given threshold configuration.
func New(cfg *config.Config) *Evaluator {
	return &Evaluator{thresholds: cfg.Thresholds, temporal: cfg.Temporal}
}

// rule is one row of the constraint table: a trigger predicate, the
// constraint it activates, and its severity.
type rule struct {
	kind     types.ConstraintKind
	severity float64
	match    func(t config.ThresholdConfig, s *types.HealthState) bool
	trigger  func(t config.ThresholdConfig, s *types.HealthState) string
}

// The table is evaluated top to bottom on every cycle. Sleep and energy
// rows are mutually exclusive pairs (critical wins); the burnout
// compound rule is applied after the table because it counts the rows
// that fired.
var ruleTable = []rule{
	{
		kind: types.ConstraintCriticalSleep, severity: 1.0,
		match: func(t config.ThresholdConfig, s *types.HealthState) bool {
			return s.SleepHours < t.CriticalSleepHours
		},
		trigger: func(t config.ThresholdConfig, s *types.HealthState) string {
			return fmt.Sprintf("sleep %.1fh below critical threshold %.1fh", s.SleepHours, t.CriticalSleepHours)
		},
	},
	{
		kind: types.ConstraintLowSleep, severity: 0.5,
		match: func(t config.ThresholdConfig, s *types.HealthState) bool {
			return s.SleepHours >= t.CriticalSleepHours && s.SleepHours < t.LowSleepHours
		},
		trigger: func(t config.ThresholdConfig, s *types.HealthState) string {
			return fmt.Sprintf("sleep %.1fh below minimum %.1fh", s.SleepHours, t.LowSleepHours)
		},
	},
	{
		// Energy at the critical threshold is already critical; the low
		// band covers the gap up to (not including) the low threshold.
		kind: types.ConstraintCriticalEnergy, severity: 1.0,
		match: func(t config.ThresholdConfig, s *types.HealthState) bool {
			return s.EnergyLevel <= t.CriticalEnergy
		},
		trigger: func(t config.ThresholdConfig, s *types.HealthState) string {
			return fmt.Sprintf("energy %d/10 at or below critical threshold %d", s.EnergyLevel, t.CriticalEnergy)
		},
	},
	{
		kind: types.ConstraintLowEnergy, severity: 0.5,
		match: func(t config.ThresholdConfig, s *types.HealthState) bool {
			return s.EnergyLevel > t.CriticalEnergy && s.EnergyLevel < t.LowEnergy
		},
		trigger: func(t config.ThresholdConfig, s *types.HealthState) string {
			return fmt.Sprintf("energy %d/10 below minimum %d", s.EnergyLevel, t.LowEnergy)
		},
	},
	{
		kind: types.ConstraintHighStress, severity: 0.7,
		match: func(t config.ThresholdConfig, s *types.HealthState) bool {
			return s.StressLevel == types.StressHigh
		},
		trigger: func(t config.ThresholdConfig, s *types.HealthState) string {
			return "self-reported stress level is high"
		},
	},
	{
		kind: types.ConstraintTimeCritical, severity: 1.0,
		match: func(t config.ThresholdConfig, s *types.HealthState) bool {
			return s.AvailableTime < t.MinTimeHours
		},
		trigger: func(t config.ThresholdConfig, s *types.HealthState) string {
			return fmt.Sprintf("only %.2fh available, below %.2fh minimum", s.AvailableTime, t.MinTimeHours)
		},
	},
}

// Evaluate runs the rule table against the snapshot and returns the
// active constraint set. A nil feedback is treated as no feedback.
func (e *Evaluator) Evaluate(state *types.HealthState, fb *Feedback) *types.ConstraintSet {
	set := &types.ConstraintSet{}

	for _, r := range ruleTable {
		if r.match(e.thresholds, state) {
			set.Add(r.kind, r.severity, r.trigger(e.thresholds, state))
		}
	}

	// Compound rule: enough simultaneous constraints indicate burnout
	// risk beyond any individual factor.
	if set.Len() >= e.thresholds.BurnoutFactorCount {
		set.Add(types.ConstraintBurnoutWarning, 1.0,
			fmt.Sprintf("%d constraints active simultaneously", set.Len()))
	}

	// Adaptive loop: a high burnout risk score from the previous cycle
	// raises this cycle's non-maximal severities.
	if fb != nil && fb.PriorRiskScore > e.temporal.RiskFeedbackThreshold {
		for i := range set.Constraints {
			boosted := set.Constraints[i].Severity + e.temporal.SeverityBoost
			set.Constraints[i].Severity = math.Min(1.0, boosted)
		}
	}

	return set
}
