// Package safety implements the circuit breaker that runs after
// consensus. It inspects the raw health signals directly, not the vote,
// so a dangerous state forces a block even when the council waves the
// plan through.
package safety

import (
	"fmt"
	"strings"

	"github.com/cadencehq/cadence/internal/config"
	"github.com/cadencehq/cadence/internal/types"
)

// Assessment is the breaker's verdict for one cycle.
type Assessment struct {
	Engaged bool
	Reason  string
	// Domains whose tasks are blocked outright while engaged.
	Domains []types.Domain
}

// Breaker evaluates critical constraint combinations. Tasks at or above
// the configured intensity threshold are treated as physically
// demanding regardless of domain when the breaker engages.
type Breaker struct {
	highIntensity float64
}

// New creates a circuit breaker.
func New(cfg *config.Config) *Breaker {
	return &Breaker{highIntensity: cfg.Safety.HighIntensityThreshold}
}

// Assess decides whether the breaker engages for this snapshot. It
// engages on critical sleep combined with high stress, or on an active
// burnout warning. The decision is independent of any consensus vote.
func (b *Breaker) Assess(cs *types.ConstraintSet) Assessment {
	switch {
	case cs.Has(types.ConstraintBurnoutWarning):
		return Assessment{
			Engaged: true,
			Reason:  "burnout warning active: multiple simultaneous health constraints",
			Domains: []types.Domain{types.DomainFitness},
		}
	case cs.Has(types.ConstraintCriticalSleep) && cs.Has(types.ConstraintHighStress):
		return Assessment{
			Engaged: true,
			Reason:  "critical sleep deficit combined with high stress",
			Domains: []types.Domain{types.DomainFitness},
		}
	default:
		return Assessment{}
	}
}

// Apply marks the implicated tasks blocked in place. A task is blocked
// when its domain is implicated, or when it is high-intensity work of
// any domain. Tasks that already carry a recorded override keep it.
func (b *Breaker) Apply(a Assessment, tasks []types.Task) {
	if !a.Engaged {
		return
	}

	implicated := make(map[types.Domain]bool, len(a.Domains))
	for _, d := range a.Domains {
		implicated[d] = true
	}

	for i := range tasks {
		t := &tasks[i]
		if t.OverrideReason != "" {
			continue
		}
		if implicated[t.Domain] || t.Intensity >= b.highIntensity {
			t.IsBlocked = true
			t.BlockReason = a.Reason
		}
	}
}

// Override clears the block on one specific task instance. The
// justification is recorded on the task; an empty justification is
// rejected and the block stands. No consensus outcome can clear a
// block, only this call.
func Override(task *types.Task, justification string) error {
	if strings.TrimSpace(justification) == "" {
		return types.NewValidationError("justification", "override requires a non-empty justification")
	}
	if !task.IsBlocked {
		return types.NewValidationError("task", fmt.Sprintf("task %q is not blocked", task.Title))
	}
	task.IsBlocked = false
	task.OverrideReason = justification
	return nil
}
