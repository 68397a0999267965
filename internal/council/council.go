// Package council runs the multi-perspective consensus step: a fixed
// panel of evaluator profiles each votes PROCEED, MODIFY, or SKIP on
// the day's plan, and the votes are aggregated into a single
// confidence-weighted consensus.
//
// Votes and confidences are computed from deterministic per-profile
// rules, so consensus is reproducible for a given snapshot. An optional
// Rationalizer can refine the human-readable rationale text for each
// vote; when it is absent, times out, or fails, the vote falls back to
// a templated rationale and is marked degraded. Rationale generation
// never changes a vote or its confidence.
package council

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cadencehq/cadence/internal/config"
	"github.com/cadencehq/cadence/internal/types"
)

// Rationalizer produces refined rationale text for a vote. The vote and
// confidence are already decided; implementations only explain them.
type Rationalizer interface {
	Rationale(ctx context.Context, profileID string, vote types.AgentVote, state *types.HealthState, cs *types.ConstraintSet) (string, error)
}

// Council evaluates a snapshot through every configured profile.
type Council struct {
	cfg          *config.Config
	rationalizer Rationalizer
}

// New creates a council. rationalizer may be nil, in which case every
// vote carries its templated rationale.
func New(cfg *config.Config, rationalizer Rationalizer) *Council {
	return &Council{cfg: cfg, rationalizer: rationalizer}
}

// Evaluate collects one vote per configured profile and aggregates them.
// skipRates carries each domain's recent decayed skip frequency for
// profiles that weigh plan consistency.
func (c *Council) Evaluate(ctx context.Context, state *types.HealthState, cs *types.ConstraintSet, skipRates map[types.Domain]float64) (*types.ConsensusResult, error) {
	if len(c.cfg.Council.Profiles) == 0 {
		return nil, &types.InvariantViolation{Invariant: "council-panel", Detail: "no profiles configured"}
	}

	votes := make([]types.AgentVote, len(c.cfg.Council.Profiles))

	g, gctx := errgroup.WithContext(ctx)
	for i, profile := range c.cfg.Council.Profiles {
		g.Go(func() error {
			vote := c.evaluateProfile(profile, state, cs, skipRates)
			c.refineRationale(gctx, profile.ID, &vote, state, cs)
			votes[i] = vote
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return c.aggregate(votes), nil
}

// evaluateProfile applies the profile's deterministic vote rules.
func (c *Council) evaluateProfile(p config.ProfileConfig, state *types.HealthState, cs *types.ConstraintSet, skipRates map[types.Domain]float64) types.AgentVote {
	conf := c.cfg.Council.Confidence

	vote := types.VoteProceed
	confidence := conf.Min
	reason := "conditions within this evaluator's acceptable range"

	switch {
	case state.SleepHours < p.CriticalSleepHours:
		vote = types.VoteSkip
		// Confidence grows with the size of the sleep deficit.
		confidence = c.clamp(conf.SkipBase + conf.SkipSlope*(p.CriticalSleepHours-state.SleepHours))
		reason = fmt.Sprintf("sleep %.1fh is below this evaluator's %.1fh critical line", state.SleepHours, p.CriticalSleepHours)

	case state.SleepHours < p.MinSleepHours:
		vote = types.VoteModify
		confidence = c.clamp(conf.ModifyBase + conf.ModifySlope*(p.MinSleepHours-state.SleepHours))
		reason = fmt.Sprintf("sleep %.1fh is under the preferred %.1fh minimum", state.SleepHours, p.MinSleepHours)

	case state.EnergyLevel < p.MinEnergy:
		vote = types.VoteModify
		confidence = c.clamp(conf.ModifyBase + conf.ModifySlope*float64(p.MinEnergy-state.EnergyLevel))
		reason = fmt.Sprintf("energy %d/10 is under the preferred minimum of %d", state.EnergyLevel, p.MinEnergy)
	}

	// Recovery-leaning profiles escalate under a burnout warning.
	if cs.Has(types.ConstraintBurnoutWarning) && p.Emphasis[types.DomainRecovery] > 1.0 && vote != types.VoteSkip {
		vote = types.VoteSkip
		confidence = c.clamp(confidence + conf.EscalationBoost)
		reason = "multiple simultaneous constraints point at accumulating fatigue"
	}

	// Stress-sensitive profiles never wave a high-stress day through.
	if p.StressSensitive && state.StressLevel == types.StressHigh && vote == types.VoteProceed {
		vote = types.VoteModify
		confidence = c.clamp(confidence + conf.StressBoost)
		reason = "high stress calls for a lighter plan even with sleep and energy intact"
	}

	// Consistency-weighing profiles soften a SKIP when the recent record
	// already shows too many skipped days.
	if p.SkipRateConcern > 0 && vote == types.VoteSkip {
		if rate := maxSkipRate(skipRates); rate > p.SkipRateConcern {
			vote = types.VoteModify
			confidence = c.clamp(confidence - conf.ConsistencyPenalty)
			reason = fmt.Sprintf("recent skip rate %.0f%% is already high, a reduced session beats another full skip", rate*100)
		}
	}

	return types.AgentVote{
		ProfileID:  p.ID,
		Vote:       vote,
		Confidence: confidence,
		Rationale:  fmt.Sprintf("%s: %s because %s", p.ID, vote, reason),
	}
}

// refineRationale asks the external rationalizer to rewrite the vote's
// explanation, bounded by the configured timeout. Failure of any kind
// keeps the templated text and marks the vote degraded; the vote and
// confidence are never touched.
func (c *Council) refineRationale(ctx context.Context, profileID string, vote *types.AgentVote, state *types.HealthState, cs *types.ConstraintSet) {
	if c.rationalizer == nil {
		return
	}

	rctx, cancel := context.WithTimeout(ctx, c.cfg.Council.RationaleTimeout)
	defer cancel()

	text, err := c.rationalizer.Rationale(rctx, profileID, *vote, state, cs)
	if err != nil || text == "" {
		vote.Degraded = true
		return
	}
	vote.Rationale = text
}

// aggregate folds the individual votes into a consensus using a
// confidence-weighted mean of vote severities (PROCEED=0, MODIFY=1,
// SKIP=2) with the configured category cut points.
func (c *Council) aggregate(votes []types.AgentVote) *types.ConsensusResult {
	var weightedSeverity, confidenceSum float64
	degraded := false
	for _, v := range votes {
		weightedSeverity += float64(v.Vote.Severity()) * v.Confidence
		confidenceSum += v.Confidence
		degraded = degraded || v.Degraded
	}

	aggregate := 0.0
	if confidenceSum > 0 {
		aggregate = weightedSeverity / confidenceSum
	}

	var winner types.Vote
	switch {
	case aggregate < c.cfg.Council.ProceedThreshold:
		winner = types.VoteProceed
	case aggregate < c.cfg.Council.ModifyThreshold:
		winner = types.VoteModify
	default:
		winner = types.VoteSkip
	}

	// Consensus confidence reflects only the votes that agree with the
	// outcome. A unanimous panel reports high confidence; a split one
	// reports the winners' average. Dissenting votes are kept whole so
	// the audit trail shows who disagreed and why.
	var winnerConfidence float64
	var winnerCount int
	var dissents []types.AgentVote
	for _, v := range votes {
		if v.Vote == winner {
			winnerConfidence += v.Confidence
			winnerCount++
		} else {
			dissents = append(dissents, v)
		}
	}
	aggregateConfidence := 0.0
	if winnerCount > 0 {
		aggregateConfidence = winnerConfidence / float64(winnerCount)
	}

	return &types.ConsensusResult{
		Vote:                winner,
		AggregateSeverity:   aggregate,
		AggregateConfidence: aggregateConfidence,
		Votes:               votes,
		Dissents:            dissents,
		Degraded:            degraded,
	}
}

func maxSkipRate(rates map[types.Domain]float64) float64 {
	var max float64
	for _, r := range rates {
		if r > max {
			max = r
		}
	}
	return max
}

// clamp keeps a confidence inside the configured bounds.
func (c *Council) clamp(v float64) float64 {
	conf := c.cfg.Council.Confidence
	if v < conf.Min {
		return conf.Min
	}
	if v > conf.Max {
		return conf.Max
	}
	return v
}
