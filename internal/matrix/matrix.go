// Package matrix implements the priority matrix and trade-off engine:
// it reweights domain priorities under active constraints and allocates
// the day's capacity greedily across ranked domains.
package matrix

import (
	"fmt"
	"math"
	"sort"

	"github.com/cadencehq/cadence/internal/config"
	"github.com/cadencehq/cadence/internal/types"
)

// Engine computes adjusted weights and per-domain trade-off decisions.
type Engine struct {
	cfg *config.Config
}

// New creates a trade-off engine.
func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// AdjustedWeights applies adaptive signals and constraint modifier
// vectors to the base weights, clamps negatives to zero, and
// renormalizes so the weights sum to 1.0.
//
// Each modifier delta is scaled by the constraint's severity before
// being added, so a half-severity constraint shifts priorities half as
// far as a full-severity one.
func (e *Engine) AdjustedWeights(cs *types.ConstraintSet, signals []types.AdaptiveSignal) (map[types.Domain]float64, error) {
	if len(e.cfg.Domains) == 0 {
		return nil, &types.InvariantViolation{Invariant: "domain-list", Detail: "no domains configured"}
	}

	weights := make(map[types.Domain]float64, len(e.cfg.Domains))
	for _, d := range e.cfg.Domains {
		weights[d] = e.cfg.BaseWeights[d]
	}

	// Adaptive signals adjust the base before constraint modifiers, so
	// a chronically skipped domain starts the cycle demoted.
	for _, sig := range signals {
		if _, ok := weights[sig.Domain]; ok {
			weights[sig.Domain] += sig.Delta
		}
	}

	for _, c := range cs.Constraints {
		modifiers, ok := e.cfg.Modifiers[c.Kind]
		if !ok {
			continue
		}
		for domain, delta := range modifiers {
			if _, ok := weights[domain]; ok {
				weights[domain] += delta * c.Severity
			}
		}
	}

	var sum float64
	for d, w := range weights {
		if w < 0 {
			w = 0
			weights[d] = 0
		}
		sum += w
	}
	if sum <= 0 {
		return nil, &types.InvariantViolation{
			Invariant: "weight-normalization",
			Detail:    fmt.Sprintf("all weights collapsed to zero under %d constraints", cs.Len()),
		}
	}
	for d := range weights {
		weights[d] /= sum
	}

	// Paranoia: renormalization must land on 1.0 within epsilon.
	var check float64
	for _, w := range weights {
		check += w
	}
	if math.Abs(check-1.0) > 1e-6 {
		return nil, &types.InvariantViolation{
			Invariant: "weight-normalization",
			Detail:    fmt.Sprintf("weights sum to %.9f after renormalization", check),
		}
	}

	return weights, nil
}

// Rank orders domains descending by adjusted weight. Ties break by the
// configured domain order, which keeps ranking stable across runs.
func (e *Engine) Rank(weights map[types.Domain]float64) []types.Domain {
	order := make(map[types.Domain]int, len(e.cfg.Domains))
	for i, d := range e.cfg.Domains {
		order[d] = i
	}

	ranked := make([]types.Domain, len(e.cfg.Domains))
	copy(ranked, e.cfg.Domains)
	sort.SliceStable(ranked, func(i, j int) bool {
		wi, wj := weights[ranked[i]], weights[ranked[j]]
		if wi != wj {
			return wi > wj
		}
		return order[ranked[i]] < order[ranked[j]]
	})
	return ranked
}

// Demand is the requested capacity per domain in minutes, usually the
// duration of the day's planned task for that domain.
type Demand map[types.Domain]int

// Allocate produces the per-domain trade-off decisions for one cycle.
//
// Capacity is granted greedily top-down over the ranked domains. A
// domain is skipped either because capacity ran out (SkipCapacity) or
// because an explicit blocking constraint forced it out (SkipSafety);
// the two are distinguishable in both SkipReason and the reasoning
// text.
func (e *Engine) Allocate(state *types.HealthState, cs *types.ConstraintSet, signals []types.AdaptiveSignal, demand Demand) ([]types.TradeOffDecision, map[types.Domain]float64, error) {
	weights, err := e.AdjustedWeights(cs, signals)
	if err != nil {
		return nil, nil, err
	}
	ranked := e.Rank(weights)

	availableMinutes := int(math.Floor(state.AvailableTime * 60))
	remaining := availableMinutes

	// critical_sleep carries a non-negotiable recovery floor, granted
	// before greedy allocation regardless of remaining capacity.
	recoveryFloor := 0
	if cs.Has(types.ConstraintCriticalSleep) {
		recoveryFloor = e.cfg.Allocation.MinRecoveryMinutes
	}

	decisions := make([]types.TradeOffDecision, 0, len(ranked))
	for rank, domain := range ranked {
		d := types.TradeOffDecision{
			Domain: domain,
			Weight: weights[domain],
		}

		requested, ok := demand[domain]
		if !ok || requested <= 0 {
			// No planned work for the domain: fall back to its nominal
			// share of the day.
			requested = int(math.Floor(weights[domain] * float64(availableMinutes)))
		}

		switch {
		case domain == types.DomainRecovery && recoveryFloor > 0:
			// Non-negotiable minimum recovery under critical sleep.
			grant := requested
			if grant < recoveryFloor {
				grant = recoveryFloor
			}
			if grant > remaining && remaining >= recoveryFloor {
				grant = remaining
			}
			if grant < recoveryFloor {
				grant = recoveryFloor
			}
			d.Action = types.ActionPrioritize
			d.AllocatedMinutes = grant
			d.Reasoning = fmt.Sprintf("critical_sleep active: recovery guaranteed at least %d minutes", recoveryFloor)
			remaining -= grant
			if remaining < 0 {
				remaining = 0
			}

		case cs.Has(types.ConstraintBurnoutWarning) && domain == types.DomainFitness:
			d.Action = types.ActionSkip
			d.SkipReason = types.SkipSafety
			d.Reasoning = fmt.Sprintf("blocked by %s constraint", types.ConstraintBurnoutWarning)

		case remaining <= 0:
			// Capacity exhaustion is reported as such even when a time
			// constraint is also active.
			d.Action = types.ActionSkip
			d.SkipReason = types.SkipCapacity
			d.Reasoning = "available capacity exhausted"

		case cs.Has(types.ConstraintTimeCritical) && rank > 0:
			// Near-zero capacity: everything except the single
			// top-ranked domain is forced out.
			d.Action = types.ActionSkip
			d.SkipReason = types.SkipSafety
			d.Reasoning = fmt.Sprintf("blocked by %s constraint", types.ConstraintTimeCritical)

		case remaining < requested && remaining < e.substituteMinutes(domain):
			d.Action = types.ActionSkip
			d.SkipReason = types.SkipCapacity
			d.Reasoning = fmt.Sprintf("%d minutes remaining cannot cover even a reduced %s block", remaining, domain)

		case remaining < requested:
			grant := e.substituteMinutes(domain)
			if grant > remaining {
				grant = remaining
			}
			d.Action = types.ActionDowngrade
			d.AllocatedMinutes = grant
			d.Reasoning = fmt.Sprintf("capacity squeeze: %d of %d requested minutes remain, substituting reduced block", remaining, requested)
			remaining -= grant

		case e.downgradeKind(domain, cs) != "":
			kind := e.downgradeKind(domain, cs)
			d.Action = types.ActionDowngrade
			d.AllocatedMinutes = e.substituteMinutes(domain)
			if d.AllocatedMinutes > remaining {
				d.AllocatedMinutes = remaining
			}
			d.Reasoning = fmt.Sprintf("%s active: substituting lower-intensity %s block", kind, domain)
			remaining -= d.AllocatedMinutes

		default:
			d.AllocatedMinutes = requested
			remaining -= requested
			if kind := e.prioritizeKind(domain, weights[domain], cs); kind != "" {
				d.Action = types.ActionPrioritize
				d.Reasoning = fmt.Sprintf("prioritized: %s", kind)
			} else {
				d.Action = types.ActionMaintain
				d.Reasoning = "conditions favorable, keeping plan unchanged"
			}
		}

		decisions = append(decisions, d)
	}

	return decisions, weights, nil
}

// downgradeKind returns the constraint kind that forces a reduced
// substitute for this domain, or "".
func (e *Engine) downgradeKind(domain types.Domain, cs *types.ConstraintSet) types.ConstraintKind {
	if domain != types.DomainFitness {
		return ""
	}
	for _, kind := range []types.ConstraintKind{
		types.ConstraintCriticalSleep,
		types.ConstraintCriticalEnergy,
		types.ConstraintLowEnergy,
	} {
		if cs.Has(kind) {
			return kind
		}
	}
	return ""
}

// prioritizeKind returns the reason this domain gets promoted from
// MAINTAIN to PRIORITIZE, or "".
func (e *Engine) prioritizeKind(domain types.Domain, weight float64, cs *types.ConstraintSet) string {
	if domain == types.DomainRecovery && (cs.Has(types.ConstraintCriticalSleep) || cs.Has(types.ConstraintBurnoutWarning)) {
		return "recovery critical under active fatigue signals"
	}
	if domain == types.DomainMindfulness && cs.Has(types.ConstraintHighStress) {
		return "high stress favors stress-reduction work"
	}
	if weight >= e.cfg.Allocation.PrioritizeWeight {
		return fmt.Sprintf("adjusted weight %.2f above prioritize threshold", weight)
	}
	return ""
}

func (e *Engine) substituteMinutes(domain types.Domain) int {
	if sub, ok := e.cfg.Substitutions[domain]; ok && sub.DurationMinutes > 0 {
		return sub.DurationMinutes
	}
	return 10
}

// FutureImpacts projects multi-day adjustments implied by this cycle's
// decisions: intensity reductions after a forced fitness skip, a deload
// recommendation under burnout warning, extra sleep under heavy sleep
// deficit.
func (e *Engine) FutureImpacts(decisions []types.TradeOffDecision, state *types.HealthState, cs *types.ConstraintSet) []types.FutureImpact {
	var impacts []types.FutureImpact

	for _, d := range decisions {
		if d.Domain != types.DomainFitness {
			continue
		}
		if d.Action == types.ActionSkip || d.Action == types.ActionDowngrade {
			if cs.Has(types.ConstraintBurnoutWarning) {
				impacts = append(impacts, types.FutureImpact{
					DaysAffected: 3,
					Kind:         "intensity_reduction",
					Description:  "reduce workout intensity to 60% for the next 3 days",
				})
			} else {
				impacts = append(impacts, types.FutureImpact{
					DaysAffected: 1,
					Kind:         "workout_reschedule",
					Description:  "add light activity tomorrow if energy improves",
				})
			}
		}
	}

	if cs.Has(types.ConstraintCriticalSleep) {
		impacts = append(impacts, types.FutureImpact{
			DaysAffected: 2,
			Kind:         "sleep_extension",
			Description:  fmt.Sprintf("add 30 minutes of sleep for 2 nights (last night: %.1fh)", state.SleepHours),
		})
	}

	if cs.Has(types.ConstraintBurnoutWarning) {
		impacts = append(impacts, types.FutureImpact{
			DaysAffected: 7,
			Kind:         "deload_week",
			Description:  "consider a deload week: halve all fitness intensity",
		})
	}

	return impacts
}
