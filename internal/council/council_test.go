package council

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/config"
	"github.com/cadencehq/cadence/internal/constraints"
	"github.com/cadencehq/cadence/internal/types"
)

type failingRationalizer struct {
	calls atomic.Int32
}

func (f *failingRationalizer) Rationale(ctx context.Context, profileID string, vote types.AgentVote, state *types.HealthState, cs *types.ConstraintSet) (string, error) {
	f.calls.Add(1)
	return "", errors.New("service unreachable")
}

type echoRationalizer struct{}

func (echoRationalizer) Rationale(ctx context.Context, profileID string, vote types.AgentVote, state *types.HealthState, cs *types.ConstraintSet) (string, error) {
	return "refined rationale for " + profileID, nil
}

func evaluate(t *testing.T, c *Council, state *types.HealthState, skipRates map[types.Domain]float64) *types.ConsensusResult {
	t.Helper()
	cfg := config.Default()
	cs := constraints.New(cfg).Evaluate(state, nil)
	result, err := c.Evaluate(context.Background(), state, cs, skipRates)
	require.NoError(t, err)
	return result
}

func TestEvaluate_HealthyStateUnanimousProceed(t *testing.T) {
	c := New(config.Default(), nil)
	state := &types.HealthState{SleepHours: 8, EnergyLevel: 8, StressLevel: types.StressLow, AvailableTime: 3}

	result := evaluate(t, c, state, nil)
	assert.Equal(t, types.VoteProceed, result.Vote)
	assert.InDelta(t, 0.0, result.AggregateSeverity, 1e-9)
	assert.Empty(t, result.Dissents)
	assert.False(t, result.Degraded)
	for _, v := range result.Votes {
		assert.Equal(t, types.VoteProceed, v.Vote)
		assert.False(t, v.Degraded)
	}
}

func TestEvaluate_SevereStateSkipsWithDissent(t *testing.T) {
	c := New(config.Default(), nil)
	// Sleep 4h sits below three profiles' critical lines but exactly at
	// momentum-keeper's, so the panel splits three SKIP to one MODIFY.
	state := &types.HealthState{SleepHours: 4, EnergyLevel: 2, StressLevel: types.StressHigh, AvailableTime: 2}

	result := evaluate(t, c, state, nil)
	assert.Equal(t, types.VoteSkip, result.Vote)
	assert.Greater(t, result.AggregateSeverity, 1.5)
	require.Len(t, result.Dissents, 1)
	assert.Equal(t, "momentum-keeper", result.Dissents[0].ProfileID)
	assert.Equal(t, types.VoteModify, result.Dissents[0].Vote)

	// Aggregate confidence averages only the winning votes.
	var skipConf float64
	var skips int
	for _, v := range result.Votes {
		if v.Vote == types.VoteSkip {
			skipConf += v.Confidence
			skips++
		}
	}
	require.Equal(t, 3, skips)
	assert.InDelta(t, skipConf/3, result.AggregateConfidence, 1e-9)
}

func TestEvaluate_StressSensitiveProfileDissentsAlone(t *testing.T) {
	c := New(config.Default(), nil)
	state := &types.HealthState{SleepHours: 8, EnergyLevel: 8, StressLevel: types.StressHigh, AvailableTime: 2}

	result := evaluate(t, c, state, nil)
	assert.Equal(t, types.VoteProceed, result.Vote, "one MODIFY against three confident PROCEEDs stays PROCEED")
	require.Len(t, result.Dissents, 1)
	assert.Equal(t, "wellness-guardian", result.Dissents[0].ProfileID)
}

func TestEvaluate_SkipRateSoftensConsistencyProfile(t *testing.T) {
	c := New(config.Default(), nil)
	// Below every profile's critical sleep line, including momentum-keeper's.
	state := &types.HealthState{SleepHours: 3.5, EnergyLevel: 5, StressLevel: types.StressLow, AvailableTime: 2}

	skipHeavy := map[types.Domain]float64{types.DomainFitness: 0.6}
	result := evaluate(t, c, state, skipHeavy)

	byID := make(map[string]types.AgentVote)
	for _, v := range result.Votes {
		byID[v.ProfileID] = v
	}
	assert.Equal(t, types.VoteModify, byID["momentum-keeper"].Vote,
		"a high recent skip rate turns momentum-keeper's SKIP into MODIFY")
	assert.Equal(t, types.VoteSkip, byID["recovery-advocate"].Vote)

	// Without the skip history the same snapshot yields a unanimous SKIP.
	clean := evaluate(t, c, state, nil)
	assert.Equal(t, types.VoteSkip, clean.Vote)
	assert.Empty(t, clean.Dissents)
}

func TestEvaluate_Deterministic(t *testing.T) {
	c := New(config.Default(), nil)
	state := &types.HealthState{SleepHours: 5.5, EnergyLevel: 3, StressLevel: types.StressHigh, AvailableTime: 1}

	first := evaluate(t, c, state, nil)
	second := evaluate(t, c, state, nil)
	assert.Equal(t, first, second)
}

func TestEvaluate_DegradedRationaleKeepsVotes(t *testing.T) {
	// External reasoning unreachable for every call: consensus is still
	// computed from the deterministic rules, every vote carries its
	// templated rationale, and the result is flagged degraded.
	fr := &failingRationalizer{}
	degraded := New(config.Default(), fr)
	baseline := New(config.Default(), nil)

	state := &types.HealthState{SleepHours: 4, EnergyLevel: 2, StressLevel: types.StressHigh, AvailableTime: 2}

	got := evaluate(t, degraded, state, nil)
	want := evaluate(t, baseline, state, nil)

	assert.Equal(t, len(want.Votes), int(fr.calls.Load()))
	assert.True(t, got.Degraded)
	assert.Equal(t, want.Vote, got.Vote)
	assert.InDelta(t, want.AggregateSeverity, got.AggregateSeverity, 1e-9)
	assert.InDelta(t, want.AggregateConfidence, got.AggregateConfidence, 1e-9)
	for i, v := range got.Votes {
		assert.True(t, v.Degraded, "vote %s must be marked degraded", v.ProfileID)
		assert.Equal(t, want.Votes[i].Vote, v.Vote)
		assert.InDelta(t, want.Votes[i].Confidence, v.Confidence, 1e-9)
		assert.Equal(t, want.Votes[i].Rationale, v.Rationale, "template rationale survives the failed refinement")
	}
}

func TestEvaluate_RefinedRationaleDoesNotChangeVotes(t *testing.T) {
	refined := New(config.Default(), echoRationalizer{})
	baseline := New(config.Default(), nil)

	state := &types.HealthState{SleepHours: 5.5, EnergyLevel: 3, StressLevel: types.StressMedium, AvailableTime: 2}

	got := evaluate(t, refined, state, nil)
	want := evaluate(t, baseline, state, nil)

	assert.False(t, got.Degraded)
	assert.Equal(t, want.Vote, got.Vote)
	for i, v := range got.Votes {
		assert.Equal(t, want.Votes[i].Vote, v.Vote)
		assert.InDelta(t, want.Votes[i].Confidence, v.Confidence, 1e-9)
		assert.Equal(t, "refined rationale for "+v.ProfileID, v.Rationale)
	}
}

func TestAggregate_ThresholdBoundaries(t *testing.T) {
	c := New(config.Default(), nil)

	tests := []struct {
		name  string
		votes []types.AgentVote
		want  types.Vote
	}{
		{
			name: "all proceed",
			votes: []types.AgentVote{
				{ProfileID: "a", Vote: types.VoteProceed, Confidence: 0.9},
				{ProfileID: "b", Vote: types.VoteProceed, Confidence: 0.5},
			},
			want: types.VoteProceed,
		},
		{
			name: "equal-confidence proceed and modify lands at 0.5, which is modify",
			votes: []types.AgentVote{
				{ProfileID: "a", Vote: types.VoteProceed, Confidence: 0.7},
				{ProfileID: "b", Vote: types.VoteModify, Confidence: 0.7},
			},
			want: types.VoteModify,
		},
		{
			name: "equal-confidence modify and skip lands at 1.5, which is skip",
			votes: []types.AgentVote{
				{ProfileID: "a", Vote: types.VoteModify, Confidence: 0.6},
				{ProfileID: "b", Vote: types.VoteSkip, Confidence: 0.6},
			},
			want: types.VoteSkip,
		},
		{
			name: "confident skip outweighs hesitant proceeds",
			votes: []types.AgentVote{
				{ProfileID: "a", Vote: types.VoteSkip, Confidence: 0.95},
				{ProfileID: "b", Vote: types.VoteProceed, Confidence: 0.5},
			},
			want: types.VoteModify,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.aggregate(tt.votes)
			assert.Equal(t, tt.want, result.Vote)
		})
	}
}

func TestAggregate_CategoryCutPointsComeFromConfig(t *testing.T) {
	// The same split panel reads MODIFY under the default cut points and
	// PROCEED once proceed_threshold is raised past the weighted mean.
	votes := []types.AgentVote{
		{ProfileID: "a", Vote: types.VoteProceed, Confidence: 0.7},
		{ProfileID: "b", Vote: types.VoteModify, Confidence: 0.7},
	}

	assert.Equal(t, types.VoteModify, New(config.Default(), nil).aggregate(votes).Vote)

	cfg := config.Default()
	cfg.Council.ProceedThreshold = 0.6
	assert.Equal(t, types.VoteProceed, New(cfg, nil).aggregate(votes).Vote)
}

func TestEvaluate_ConfidenceBoundsComeFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Council.Confidence.Max = 0.7
	c := New(cfg, nil)

	// Sleep 3.5h puts recovery-advocate 2.5h under its critical line, a
	// deficit whose confidence would reach 0.85 without the lowered cap.
	state := &types.HealthState{SleepHours: 3.5, EnergyLevel: 5, StressLevel: types.StressLow, AvailableTime: 2}
	result := evaluate(t, c, state, nil)

	for _, v := range result.Votes {
		assert.LessOrEqual(t, v.Confidence, 0.7, "profile %s", v.ProfileID)
	}
	byID := make(map[string]types.AgentVote)
	for _, v := range result.Votes {
		byID[v.ProfileID] = v
	}
	assert.InDelta(t, 0.7, byID["recovery-advocate"].Confidence, 1e-9)
}

func TestAggregate_SkipConfidenceMonotonicity(t *testing.T) {
	// Raising the confidence of any SKIP vote must never lower the
	// aggregate severity.
	c := New(config.Default(), nil)

	base := []types.AgentVote{
		{ProfileID: "a", Vote: types.VoteSkip, Confidence: 0.5},
		{ProfileID: "b", Vote: types.VoteProceed, Confidence: 0.8},
		{ProfileID: "c", Vote: types.VoteModify, Confidence: 0.6},
	}

	prev := c.aggregate(base).AggregateSeverity
	for conf := 0.55; conf <= 0.95; conf += 0.05 {
		votes := make([]types.AgentVote, len(base))
		copy(votes, base)
		votes[0].Confidence = conf
		current := c.aggregate(votes).AggregateSeverity
		assert.GreaterOrEqual(t, current, prev, "confidence %.2f", conf)
		prev = current
	}
}

func TestEvaluate_NoProfilesIsInvariantViolation(t *testing.T) {
	cfg := config.Default()
	cfg.Council.Profiles = nil
	c := New(cfg, nil)

	_, err := c.Evaluate(context.Background(),
		&types.HealthState{SleepHours: 8, EnergyLevel: 8, StressLevel: types.StressLow, AvailableTime: 1},
		&types.ConstraintSet{}, nil)
	require.Error(t, err)
	var inv *types.InvariantViolation
	assert.ErrorAs(t, err, &inv)
}
