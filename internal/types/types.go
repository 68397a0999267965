package types

import (
	"fmt"
	"time"
)

// Domain identifies an activity domain competing for daily capacity.
type Domain string

const (
	DomainFitness      Domain = "fitness"
	DomainNutrition    Domain = "nutrition"
	DomainRecovery     Domain = "recovery"
	DomainMindfulness  Domain = "mindfulness"
	DomainProductivity Domain = "productivity"
)

// AllDomains lists every domain in the fixed tie-break order used when
// ranking domains with equal adjusted weight. The order is configuration
// by convention: config may override it, but it must stay stable within
// a cycle.
var AllDomains = []Domain{
	DomainRecovery,
	DomainNutrition,
	DomainFitness,
	DomainMindfulness,
	DomainProductivity,
}

// IsValid checks if the domain value is known
func (d Domain) IsValid() bool {
	switch d {
	case DomainFitness, DomainNutrition, DomainRecovery, DomainMindfulness, DomainProductivity:
		return true
	}
	return false
}

// StressLevel is the self-reported stress bucket
type StressLevel string

const (
	StressLow    StressLevel = "low"
	StressMedium StressLevel = "medium"
	StressHigh   StressLevel = "high"
)

// IsValid checks if the stress level value is valid
func (s StressLevel) IsValid() bool {
	switch s {
	case StressLow, StressMedium, StressHigh:
		return true
	}
	return false
}

// Weight returns the numeric stress weight used by the risk scorer.
// Low=0, Medium=0.5, High=1.0.
func (s StressLevel) Weight() float64 {
	switch s {
	case StressMedium:
		return 0.5
	case StressHigh:
		return 1.0
	default:
		return 0.0
	}
}

// HealthState is the validated snapshot of a user's self-reported
// physiological signals for one decision cycle. Computed metrics are
// re-derived whenever any raw field changes; they are never edited
// independently.
type HealthState struct {
	Timestamp     time.Time   `json:"timestamp" yaml:"timestamp"`
	SleepHours    float64     `json:"sleep_hours" yaml:"sleep_hours"`
	EnergyLevel   int         `json:"energy_level" yaml:"energy_level"` // 1-10
	StressLevel   StressLevel `json:"stress_level" yaml:"stress_level"`
	AvailableTime float64     `json:"available_time" yaml:"available_time"` // hours

	Computed *ComputedMetrics `json:"computed,omitempty" yaml:"computed,omitempty"`
}

// Validate checks the raw snapshot fields. Invalid input is rejected
// before any engine state changes.
func (h *HealthState) Validate() error {
	if h.SleepHours < 0 {
		return NewValidationError("sleep_hours", fmt.Sprintf("must be >= 0 (got %.2f)", h.SleepHours))
	}
	if h.EnergyLevel < 1 || h.EnergyLevel > 10 {
		return NewValidationError("energy_level", fmt.Sprintf("must be an integer between 1 and 10 (got %d)", h.EnergyLevel))
	}
	if !h.StressLevel.IsValid() {
		return NewValidationError("stress_level", fmt.Sprintf("must be one of low/medium/high (got %q)", h.StressLevel))
	}
	if h.AvailableTime < 0 {
		return NewValidationError("available_time", fmt.Sprintf("must be >= 0 (got %.2f)", h.AvailableTime))
	}
	return nil
}

// RiskLabel buckets a burnout risk score
type RiskLabel string

const (
	RiskLow      RiskLabel = "Low"
	RiskModerate RiskLabel = "Moderate"
	RiskHigh     RiskLabel = "High"
)

// ComputedMetrics is the derived block attached to a HealthState.
// All scores are clamped to [0,100].
type ComputedMetrics struct {
	ReadinessScore     float64   `json:"readiness_score"`
	SleepScore         float64   `json:"sleep_score"`
	BurnoutRiskScore   float64   `json:"burnout_risk_score"`
	BurnoutRiskLabel   RiskLabel `json:"burnout_risk_label"`
	PrimaryFactor      string    `json:"primary_factor"`
	ProjectedReadiness float64   `json:"projected_readiness"` // tomorrow, same scale
}
