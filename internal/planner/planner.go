// Package planner finalizes the day's task schedule from the trade-off
// engine's per-domain actions and any circuit breaker blocks. Nothing
// is ever deleted from the schedule: skipped and blocked tasks stay
// visible with their reason attached.
package planner

import (
	"fmt"

	"github.com/cadencehq/cadence/internal/config"
	"github.com/cadencehq/cadence/internal/types"
)

// Adjuster applies domain actions to the concrete task list.
type Adjuster struct {
	cfg *config.Config
}

// New creates a plan adjuster.
func New(cfg *config.Config) *Adjuster {
	return &Adjuster{cfg: cfg}
}

// Finalize produces the adjusted schedule. Breaker blocks take
// precedence over the domain action: a blocked task stays blocked even
// when its domain action is MAINTAIN. PRIORITIZE and MAINTAIN tasks
// pass through unchanged; DOWNGRADE tasks are replaced by the
// configured same-domain substitute with the reason recorded; SKIP
// tasks are flagged, not removed.
func (a *Adjuster) Finalize(tasks []types.Task, decisions []types.TradeOffDecision) []types.Task {
	byDomain := make(map[types.Domain]types.TradeOffDecision, len(decisions))
	for _, d := range decisions {
		byDomain[d.Domain] = d
	}

	out := make([]types.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsBlocked {
			// The breaker already stamped its reason; the schedule keeps
			// the task visible as-is.
			out = append(out, t)
			continue
		}

		d, ok := byDomain[t.Domain]
		if !ok {
			out = append(out, t)
			continue
		}

		switch d.Action {
		case types.ActionSkip:
			t.Skipped = true
			t.AdjustReason = d.Reasoning

		case types.ActionDowngrade:
			t = a.substitute(t, d)

		case types.ActionPrioritize, types.ActionMaintain:
			// Unchanged. The allocation decision carries the reasoning.
		}

		out = append(out, t)
	}

	return out
}

// substitute swaps a task for its configured lower-intensity
// replacement. A domain without a substitution entry keeps its task but
// at the allocated duration.
func (a *Adjuster) substitute(t types.Task, d types.TradeOffDecision) types.Task {
	sub, ok := a.cfg.Substitutions[t.Domain]
	if !ok {
		if d.AllocatedMinutes > 0 && d.AllocatedMinutes < t.DurationMinutes {
			t.DurationMinutes = d.AllocatedMinutes
		}
		t.AdjustReason = d.Reasoning
		return t
	}

	replaced := types.Task{
		Title:           sub.Title,
		Domain:          t.Domain,
		DurationMinutes: sub.DurationMinutes,
		Intensity:       sub.Intensity,
		Substituted:     true,
		SubstituteFor:   t.Title,
		AdjustReason:    fmt.Sprintf("replaced %q: %s", t.Title, d.Reasoning),
	}
	if d.AllocatedMinutes > 0 && d.AllocatedMinutes < replaced.DurationMinutes {
		replaced.DurationMinutes = d.AllocatedMinutes
	}
	return replaced
}
