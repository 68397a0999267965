package types

import "sort"

// ConstraintKind names a detected limiting condition
type ConstraintKind string

const (
	ConstraintCriticalSleep  ConstraintKind = "critical_sleep"
	ConstraintLowSleep       ConstraintKind = "low_sleep"
	ConstraintCriticalEnergy ConstraintKind = "critical_energy"
	ConstraintLowEnergy      ConstraintKind = "low_energy"
	ConstraintHighStress     ConstraintKind = "high_stress"
	ConstraintTimeCritical   ConstraintKind = "time_critical"
	ConstraintBurnoutWarning ConstraintKind = "burnout_warning"
)

// Constraint is a named, severity-scored condition derived from a
// HealthState. Constraints are ephemeral: recomputed every cycle and
// never persisted standalone (they survive only inside Decision records).
type Constraint struct {
	Kind     ConstraintKind `json:"kind"`
	Severity float64        `json:"severity"` // 0.0 to 1.0
	Trigger  string         `json:"trigger"`  // human-readable trigger description
}

// ConstraintSet is the ordered collection of active constraints for one
// cycle. Order follows rule-table evaluation order, so it is
// deterministic for a given HealthState.
type ConstraintSet struct {
	Constraints []Constraint `json:"constraints"`
}

// Add appends a constraint
func (s *ConstraintSet) Add(kind ConstraintKind, severity float64, trigger string) {
	s.Constraints = append(s.Constraints, Constraint{Kind: kind, Severity: severity, Trigger: trigger})
}

// Has reports whether a constraint of the given kind is active
func (s *ConstraintSet) Has(kind ConstraintKind) bool {
	for _, c := range s.Constraints {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// Severity returns the severity of the given kind, or 0 if inactive
func (s *ConstraintSet) Severity(kind ConstraintKind) float64 {
	for _, c := range s.Constraints {
		if c.Kind == kind {
			return c.Severity
		}
	}
	return 0
}

// Len returns the number of active constraints
func (s *ConstraintSet) Len() int {
	return len(s.Constraints)
}

// Kinds returns the active constraint kinds in evaluation order
func (s *ConstraintSet) Kinds() []ConstraintKind {
	kinds := make([]ConstraintKind, 0, len(s.Constraints))
	for _, c := range s.Constraints {
		kinds = append(kinds, c.Kind)
	}
	return kinds
}

// BySeverity returns the constraints sorted most severe first.
// The underlying set is not modified.
func (s *ConstraintSet) BySeverity() []Constraint {
	out := make([]Constraint, len(s.Constraints))
	copy(out, s.Constraints)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Severity > out[j].Severity })
	return out
}
