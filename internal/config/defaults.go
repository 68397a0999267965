package config

import (
	"time"

	"github.com/cadencehq/cadence/internal/types"
)

// Default returns the default engine configuration. The threshold and
// coefficient values follow the documented defaults (sleep >=7h safe,
// 6-7h caution, <6h critical, and so on); deployments tune them via
// the YAML file rather than forking the code.
func Default() *Config {
	return &Config{
		Domains: []types.Domain{
			types.DomainRecovery,
			types.DomainNutrition,
			types.DomainFitness,
			types.DomainMindfulness,
			types.DomainProductivity,
		},
		BaseWeights: map[types.Domain]float64{
			types.DomainRecovery:     0.30,
			types.DomainNutrition:    0.25,
			types.DomainFitness:      0.25,
			types.DomainMindfulness:  0.10,
			types.DomainProductivity: 0.10,
		},
		Thresholds: ThresholdConfig{
			CriticalSleepHours: 5.0,
			LowSleepHours:      6.0,
			CriticalEnergy:     2,
			LowEnergy:          4,
			MinTimeHours:       0.5,
			BurnoutFactorCount: 3,
		},
		Modifiers: map[types.ConstraintKind]map[types.Domain]float64{
			types.ConstraintCriticalSleep: {
				types.DomainRecovery:     +0.25,
				types.DomainFitness:      -0.20,
				types.DomainMindfulness:  +0.05,
				types.DomainProductivity: -0.10,
			},
			types.ConstraintLowSleep: {
				types.DomainRecovery: +0.15,
				types.DomainFitness:  -0.10,
			},
			types.ConstraintHighStress: {
				types.DomainMindfulness:  +0.20,
				types.DomainFitness:      -0.10,
				types.DomainRecovery:     +0.10,
				types.DomainProductivity: -0.10,
			},
			types.ConstraintLowEnergy: {
				types.DomainRecovery: +0.10,
				types.DomainFitness:  -0.15,
			},
			types.ConstraintCriticalEnergy: {
				types.DomainRecovery:     +0.20,
				types.DomainFitness:      -0.25,
				types.DomainMindfulness:  +0.10,
				types.DomainProductivity: -0.15,
			},
			types.ConstraintBurnoutWarning: {
				types.DomainRecovery:     +0.25,
				types.DomainFitness:      -0.25,
				types.DomainMindfulness:  +0.15,
				types.DomainNutrition:    -0.10,
				types.DomainProductivity: -0.15,
			},
			types.ConstraintTimeCritical: {
				types.DomainNutrition: +0.10,
				types.DomainFitness:   -0.15,
			},
		},
		Scoring: ScoringConfig{
			SleepCurve: []CurvePoint{
				{Hours: 0, Score: 0},
				{Hours: 5, Score: 30},
				{Hours: 6, Score: 60},
				{Hours: 7, Score: 85},
				{Hours: 8, Score: 100},
			},
			Readiness:   Coefficients{Sleep: 0.5, Energy: 0.3, Stress: 0.2},
			Burnout:     Coefficients{Sleep: 0.4, Energy: 0.3, Stress: 0.3},
			LowMax:      40,
			ModerateMax: 70,
		},
		Temporal: TemporalConfig{
			WindowDays:            7,
			DecayRate:             0.85,
			SkipRateThreshold:     0.5,
			BasePriorityStep:      -0.05,
			RiskFeedbackThreshold: 70,
			SeverityBoost:         0.1,
		},
		Allocation: AllocationConfig{
			MinRecoveryMinutes:       30,
			PrioritizeWeight:         0.35,
			DowngradeIntensityFactor: 0.6,
		},
		Council: CouncilConfig{
			RationaleTimeout: 10 * time.Second,
			ProceedThreshold: 0.5,
			ModifyThreshold:  1.5,
			Confidence: ConfidenceConfig{
				Min:                0.5,
				Max:                0.95,
				SkipBase:           0.6,
				SkipSlope:          0.1,
				ModifyBase:         0.55,
				ModifySlope:        0.05,
				EscalationBoost:    0.2,
				StressBoost:        0.15,
				ConsistencyPenalty: 0.1,
			},
			Profiles: []ProfileConfig{
				{
					ID: "recovery-advocate",
					Emphasis: map[types.Domain]float64{
						types.DomainRecovery:    1.5,
						types.DomainMindfulness: 1.2,
						types.DomainFitness:     0.7,
					},
					CriticalSleepHours: 6.0,
					MinSleepHours:      7.0,
					MinEnergy:          3,
					StressSensitive:    false,
				},
				{
					ID: "performance-coach",
					Emphasis: map[types.Domain]float64{
						types.DomainFitness:      1.4,
						types.DomainProductivity: 1.3,
						types.DomainRecovery:     0.9,
					},
					CriticalSleepHours: 4.5,
					MinSleepHours:      5.5,
					MinEnergy:          4,
					StressSensitive:    false,
				},
				{
					ID: "wellness-guardian",
					Emphasis: map[types.Domain]float64{
						types.DomainMindfulness:  1.5,
						types.DomainRecovery:     1.2,
						types.DomainProductivity: 0.7,
					},
					CriticalSleepHours: 5.0,
					MinSleepHours:      6.5,
					MinEnergy:          3,
					StressSensitive:    true,
				},
				{
					ID: "momentum-keeper",
					Emphasis: map[types.Domain]float64{
						types.DomainFitness:      1.2,
						types.DomainProductivity: 1.1,
					},
					CriticalSleepHours: 4.0,
					MinSleepHours:      5.0,
					MinEnergy:          2,
					HistoryWindow:      7,
					SkipRateConcern:    0.3,
				},
			},
		},
		Safety: SafetyConfig{
			HighIntensityThreshold: 0.7,
		},
		Reasoning: ReasoningConfig{
			Enabled:           false,
			Model:             "claude-3-5-haiku-20241022",
			Timeout:           15 * time.Second,
			MaxRetries:        2,
			MaxConcurrent:     4,
			RequestsPerMinute: 30,
		},
		Substitutions: map[types.Domain]Substitute{
			types.DomainFitness:      {Title: "Light stretching", DurationMinutes: 10, Intensity: 0.2},
			types.DomainNutrition:    {Title: "Simple prepared meal", DurationMinutes: 10, Intensity: 0.1},
			types.DomainRecovery:     {Title: "Power nap", DurationMinutes: 20, Intensity: 0.1},
			types.DomainMindfulness:  {Title: "Box breathing", DurationMinutes: 5, Intensity: 0.2},
			types.DomainProductivity: {Title: "Single focused task", DurationMinutes: 25, Intensity: 0.4},
		},
	}
}
