// Package config defines the engine configuration. Every numeric
// coefficient in the decision pipeline lives here rather than in code:
// the documented thresholds are defaults, not constants.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cadencehq/cadence/internal/types"
)

// WeightEpsilon is the tolerance used when checking that domain weights
// sum to 1.0 after adjustment.
const WeightEpsilon = 1e-9

// Config is the full engine configuration, loaded from YAML.
type Config struct {
	// Domains is the fixed domain order used for tie-breaking when two
	// domains end up with equal adjusted weight.
	Domains []types.Domain `yaml:"domains"`

	// BaseWeights are the starting priority weights per domain.
	// They must be non-negative and sum to 1.0.
	BaseWeights map[types.Domain]float64 `yaml:"base_weights"`

	Thresholds    ThresholdConfig                                   `yaml:"thresholds"`
	Modifiers     map[types.ConstraintKind]map[types.Domain]float64 `yaml:"modifiers"`
	Scoring       ScoringConfig                                     `yaml:"scoring"`
	Temporal      TemporalConfig                                    `yaml:"temporal"`
	Allocation    AllocationConfig                                  `yaml:"allocation"`
	Council       CouncilConfig                                     `yaml:"council"`
	Safety        SafetyConfig                                      `yaml:"safety"`
	Reasoning     ReasoningConfig                                   `yaml:"reasoning"`
	Substitutions map[types.Domain]Substitute                       `yaml:"substitutions"`
}

// ThresholdConfig holds the constraint rule-table trigger points.
type ThresholdConfig struct {
	CriticalSleepHours float64 `yaml:"critical_sleep_hours"` // sleep below this => critical_sleep
	LowSleepHours      float64 `yaml:"low_sleep_hours"`      // sleep below this => low_sleep
	CriticalEnergy     int     `yaml:"critical_energy"`      // energy below this => critical_energy
	LowEnergy          int     `yaml:"low_energy"`           // energy below this => low_energy
	MinTimeHours       float64 `yaml:"min_time_hours"`       // available time below this => time_critical
	BurnoutFactorCount int     `yaml:"burnout_factor_count"` // simultaneous constraints that trigger burnout_warning
}

// CurvePoint anchors the piecewise sleep-score curve. Scores between
// anchors are linearly interpolated; outside the range they clamp to
// the nearest anchor.
type CurvePoint struct {
	Hours float64 `yaml:"hours"`
	Score float64 `yaml:"score"`
}

// Coefficients weight the three input terms of a composite score.
type Coefficients struct {
	Sleep  float64 `yaml:"sleep"`
	Energy float64 `yaml:"energy"`
	Stress float64 `yaml:"stress"`
}

// ScoringConfig drives the burnout/readiness scorer.
type ScoringConfig struct {
	SleepCurve  []CurvePoint `yaml:"sleep_curve"`
	Readiness   Coefficients `yaml:"readiness"`
	Burnout     Coefficients `yaml:"burnout"`
	LowMax      float64      `yaml:"low_max"`      // risk < LowMax => Low
	ModerateMax float64      `yaml:"moderate_max"` // risk <= ModerateMax => Moderate, above => High
}

// TemporalConfig drives decision-history pattern detection and the
// adaptive feedback loop.
type TemporalConfig struct {
	WindowDays        int     `yaml:"window_days"`         // how far back to scan
	DecayRate         float64 `yaml:"decay_rate"`          // per-day weight decay, (0,1]
	SkipRateThreshold float64 `yaml:"skip_rate_threshold"` // decayed skip rate that emits a signal
	BasePriorityStep  float64 `yaml:"base_priority_step"`  // delta applied to a flagged domain's base weight
	// RiskFeedback raises constraint severities on the next cycle when
	// the previous burnout risk score exceeded the threshold.
	RiskFeedbackThreshold float64 `yaml:"risk_feedback_threshold"`
	SeverityBoost         float64 `yaml:"severity_boost"`
}

// AllocationConfig drives greedy capacity allocation.
type AllocationConfig struct {
	// MinRecoveryMinutes is the non-negotiable recovery floor allocated
	// before greedy allocation when critical_sleep is active.
	MinRecoveryMinutes int `yaml:"min_recovery_minutes"`
	// PrioritizeWeight promotes MAINTAIN to PRIORITIZE at or above this
	// adjusted weight.
	PrioritizeWeight float64 `yaml:"prioritize_weight"`
	// DowngradeIntensityFactor scales task intensity for DOWNGRADE
	// substitutes that reuse the original task.
	DowngradeIntensityFactor float64 `yaml:"downgrade_intensity_factor"`
}

// ProfileConfig is one council evaluator: a data record, not a type.
// All four personalities run through the same generic evaluation
// function parameterized by these fields.
type ProfileConfig struct {
	ID       string                   `yaml:"id"`
	Emphasis map[types.Domain]float64 `yaml:"emphasis"` // domain weight emphasis

	// Safety thresholds. Deviation from these drives the vote and
	// confidence deterministically.
	CriticalSleepHours float64 `yaml:"critical_sleep_hours"`
	MinSleepHours      float64 `yaml:"min_sleep_hours"`
	MinEnergy          int     `yaml:"min_energy"`
	StressSensitive    bool    `yaml:"stress_sensitive"`

	// Momentum profiles weigh decision-history consistency instead of
	// physiology: HistoryWindow > 0 enables skip-rate evaluation.
	HistoryWindow   int     `yaml:"history_window"`
	SkipRateConcern float64 `yaml:"skip_rate_concern"`
}

// CouncilConfig holds the evaluator profiles, the bounded timeout for
// each profile's optional rationale call, the consensus category cut
// points, and the confidence shape shared by every profile.
type CouncilConfig struct {
	Profiles         []ProfileConfig  `yaml:"profiles"`
	RationaleTimeout time.Duration    `yaml:"rationale_timeout"`
	Confidence       ConfidenceConfig `yaml:"confidence"`

	// Weighted vote severity below ProceedThreshold reads PROCEED, below
	// ModifyThreshold MODIFY, at or above it SKIP.
	ProceedThreshold float64 `yaml:"proceed_threshold"`
	ModifyThreshold  float64 `yaml:"modify_threshold"`
}

// ConfidenceConfig bounds and shapes per-profile vote confidence. A
// SKIP vote starts at SkipBase and grows by SkipSlope per unit of sleep
// deficit; MODIFY votes likewise from ModifyBase/ModifySlope. The
// adjustment fields shift confidence when a secondary rule fires.
type ConfidenceConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`

	SkipBase    float64 `yaml:"skip_base"`
	SkipSlope   float64 `yaml:"skip_slope"`
	ModifyBase  float64 `yaml:"modify_base"`
	ModifySlope float64 `yaml:"modify_slope"`

	EscalationBoost    float64 `yaml:"escalation_boost"`    // burnout escalation to SKIP
	StressBoost        float64 `yaml:"stress_boost"`        // stress-sensitive MODIFY
	ConsistencyPenalty float64 `yaml:"consistency_penalty"` // SKIP softened on a high skip rate
}

// SafetyConfig drives the post-consensus circuit breaker.
type SafetyConfig struct {
	// HighIntensityThreshold marks tasks of any domain as physically
	// demanding, and so blockable, while the breaker is engaged.
	HighIntensityThreshold float64 `yaml:"high_intensity_threshold"`
}

// ReasoningConfig configures the optional external reasoning service.
type ReasoningConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Model             string        `yaml:"model"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	MaxConcurrent     int           `yaml:"max_concurrent"`
	RequestsPerMinute float64       `yaml:"requests_per_minute"`
}

// Substitute is the configured lower-intensity replacement used when a
// domain's task is downgraded.
type Substitute struct {
	Title           string  `yaml:"title"`
	DurationMinutes int     `yaml:"duration_minutes"`
	Intensity       float64 `yaml:"intensity"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a file, creating the parent
// directory if needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks structural invariants of the configuration.
func (c *Config) Validate() error {
	if len(c.Domains) == 0 {
		return fmt.Errorf("config: domain list is empty")
	}
	var sum float64
	for _, d := range c.Domains {
		if !d.IsValid() {
			return fmt.Errorf("config: unknown domain %q", d)
		}
		w, ok := c.BaseWeights[d]
		if !ok {
			return fmt.Errorf("config: no base weight for domain %q", d)
		}
		if w < 0 {
			return fmt.Errorf("config: negative base weight for domain %q", d)
		}
		sum += w
	}
	if diff := sum - 1.0; diff > 1e-6 || diff < -1e-6 {
		return fmt.Errorf("config: base weights must sum to 1.0 (got %.4f)", sum)
	}
	if c.Temporal.DecayRate <= 0 || c.Temporal.DecayRate > 1 {
		return fmt.Errorf("config: temporal decay_rate must be in (0,1] (got %.3f)", c.Temporal.DecayRate)
	}
	if c.Temporal.WindowDays <= 0 {
		return fmt.Errorf("config: temporal window_days must be positive")
	}
	if len(c.Council.Profiles) == 0 {
		return fmt.Errorf("config: council has no profiles")
	}
	conf := c.Council.Confidence
	if conf.Min < 0 || conf.Max > 1 || conf.Min >= conf.Max {
		return fmt.Errorf("config: council confidence bounds must satisfy 0 <= min < max <= 1 (got %.2f/%.2f)", conf.Min, conf.Max)
	}
	if c.Council.ProceedThreshold >= c.Council.ModifyThreshold {
		return fmt.Errorf("config: council proceed_threshold must be below modify_threshold")
	}
	if c.Safety.HighIntensityThreshold < 0 || c.Safety.HighIntensityThreshold > 1 {
		return fmt.Errorf("config: safety high_intensity_threshold must be in [0,1] (got %.2f)", c.Safety.HighIntensityThreshold)
	}
	if len(c.Scoring.SleepCurve) < 2 {
		return fmt.Errorf("config: sleep curve needs at least two anchor points")
	}
	for i := 1; i < len(c.Scoring.SleepCurve); i++ {
		if c.Scoring.SleepCurve[i].Hours <= c.Scoring.SleepCurve[i-1].Hours {
			return fmt.Errorf("config: sleep curve hours must be strictly increasing")
		}
	}
	return nil
}
