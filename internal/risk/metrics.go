// Package risk computes the derived health metrics (readiness, sleep
// score, burnout risk) and scans decision history for recurring
// patterns that should reshape future priorities.
package risk

import (
	"math"

	"github.com/cadencehq/cadence/internal/config"
	"github.com/cadencehq/cadence/internal/types"
)

// Scorer derives composite metrics from a snapshot using configured
// coefficients and the piecewise sleep curve.
type Scorer struct {
	cfg *config.Config
}

// New creates a scorer.
func New(cfg *config.Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// ComputeMetrics derives the full metrics block for a snapshot. All
// scores land in [0,100]. Metrics are always re-derived from the raw
// fields, never edited independently.
func (s *Scorer) ComputeMetrics(state *types.HealthState) *types.ComputedMetrics {
	sleepScore := s.SleepScore(state.SleepHours)
	energyScore := clamp100(float64(state.EnergyLevel) * 10)
	stressWeight := state.StressLevel.Weight()

	r := s.cfg.Scoring.Readiness
	readiness := clamp100(r.Sleep*sleepScore + r.Energy*energyScore + r.Stress*(1-stressWeight)*100)

	b := s.cfg.Scoring.Burnout
	sleepTerm := b.Sleep * (100 - sleepScore)
	energyTerm := b.Energy * (100 - energyScore)
	stressTerm := b.Stress * stressWeight * 100
	burnout := clamp100(sleepTerm + energyTerm + stressTerm)

	// With tomorrow's sleep restored to the top of the curve, readiness
	// recovers to this level. Useful for "how much does one good night
	// buy back" messaging.
	projected := clamp100(r.Sleep*100 + r.Energy*energyScore + r.Stress*(1-stressWeight)*100)

	return &types.ComputedMetrics{
		ReadinessScore:     readiness,
		SleepScore:         sleepScore,
		BurnoutRiskScore:   burnout,
		BurnoutRiskLabel:   s.label(burnout),
		PrimaryFactor:      primaryFactor(sleepTerm, energyTerm, stressTerm),
		ProjectedReadiness: projected,
	}
}

// SleepScore interpolates linearly between the configured curve anchors
// and saturates beyond the last one.
func (s *Scorer) SleepScore(hours float64) float64 {
	curve := s.cfg.Scoring.SleepCurve
	if len(curve) == 0 {
		return 0
	}
	if hours <= curve[0].Hours {
		return curve[0].Score
	}
	last := curve[len(curve)-1]
	if hours >= last.Hours {
		return last.Score
	}
	for i := 1; i < len(curve); i++ {
		lo, hi := curve[i-1], curve[i]
		if hours <= hi.Hours {
			frac := (hours - lo.Hours) / (hi.Hours - lo.Hours)
			return lo.Score + frac*(hi.Score-lo.Score)
		}
	}
	return last.Score
}

func (s *Scorer) label(burnout float64) types.RiskLabel {
	switch {
	case burnout < s.cfg.Scoring.LowMax:
		return types.RiskLow
	case burnout <= s.cfg.Scoring.ModerateMax:
		return types.RiskModerate
	default:
		return types.RiskHigh
	}
}

// primaryFactor names the term contributing the largest weighted share
// of the burnout composite. Ties favor sleep, then energy.
func primaryFactor(sleep, energy, stress float64) string {
	switch {
	case sleep >= energy && sleep >= stress:
		return "sleep"
	case energy >= stress:
		return "energy"
	default:
		return "stress"
	}
}

func clamp100(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
