package risk

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cadencehq/cadence/internal/types"
)

// Entries need at least this many observations for a domain before a
// skip pattern is trusted enough to emit a signal.
const minPatternSamples = 2

// SkipRates computes each domain's decayed skip frequency over the
// configured window ending at now. An entry d days old carries weight
// decay^d, so yesterday's skip matters more than last week's.
func (s *Scorer) SkipRates(history []types.Decision, now time.Time) map[types.Domain]float64 {
	weights := make(map[types.Domain]float64)
	skips := make(map[types.Domain]float64)

	s.scanWindow(history, now, func(d types.Decision, w float64) {
		weights[d.Domain] += w
		if d.Action == types.DecisionRejected {
			skips[d.Domain] += w
		}
	})

	rates := make(map[types.Domain]float64, len(weights))
	for domain, total := range weights {
		if total > 0 {
			rates[domain] = skips[domain] / total
		}
	}
	return rates
}

// WeekdaySkipRates computes the decayed skip frequency per weekday over
// the same window, across all domains.
func (s *Scorer) WeekdaySkipRates(history []types.Decision, now time.Time) map[time.Weekday]float64 {
	weights := make(map[time.Weekday]float64)
	skips := make(map[time.Weekday]float64)

	s.scanWindow(history, now, func(d types.Decision, w float64) {
		day := d.Timestamp.Weekday()
		weights[day] += w
		if d.Action == types.DecisionRejected {
			skips[day] += w
		}
	})

	rates := make(map[time.Weekday]float64, len(weights))
	for day, total := range weights {
		if total > 0 {
			rates[day] = skips[day] / total
		}
	}
	return rates
}

// DetectPatterns emits an adaptive signal for every domain whose
// decayed skip rate over the window exceeds the configured threshold.
// The signal lowers that domain's base priority on the next cycle; it
// is never applied retroactively to the cycle that produced it.
func (s *Scorer) DetectPatterns(history []types.Decision, now time.Time) []types.AdaptiveSignal {
	counts := make(map[types.Domain]int)
	s.scanWindow(history, now, func(d types.Decision, w float64) {
		counts[d.Domain]++
	})
	rates := s.SkipRates(history, now)

	var signals []types.AdaptiveSignal
	for domain, rate := range rates {
		if counts[domain] < minPatternSamples || rate <= s.cfg.Temporal.SkipRateThreshold {
			continue
		}
		signals = append(signals, types.AdaptiveSignal{
			Domain:     domain,
			Delta:      s.cfg.Temporal.BasePriorityStep,
			SkipRate:   rate,
			Confidence: rate,
			Reason: fmt.Sprintf("%s skipped %.0f%% of the time over the last %d days",
				domain, rate*100, s.cfg.Temporal.WindowDays),
		})
	}

	sort.Slice(signals, func(i, j int) bool { return signals[i].Domain < signals[j].Domain })
	return signals
}

// scanWindow walks the history entries inside the window and hands each
// to fn with its decay weight.
func (s *Scorer) scanWindow(history []types.Decision, now time.Time, fn func(d types.Decision, w float64)) {
	cutoff := now.AddDate(0, 0, -s.cfg.Temporal.WindowDays)
	for _, d := range history {
		if d.Timestamp.Before(cutoff) || d.Timestamp.After(now) {
			continue
		}
		daysAgo := now.Sub(d.Timestamp).Hours() / 24
		fn(d, math.Pow(s.cfg.Temporal.DecayRate, daysAgo))
	}
}

// AdherenceReport summarizes the recent window for the report command.
type AdherenceReport struct {
	WindowDays       int
	TotalDecisions   int
	CompletionRate   float64
	DomainSkipRates  map[types.Domain]float64
	WeekdaySkipRates map[time.Weekday]float64
	ConstraintCounts map[types.ConstraintKind]int
	Signals          []types.AdaptiveSignal
}

// Report builds the weekly adherence summary over the configured window.
func (s *Scorer) Report(history []types.Decision, now time.Time) *AdherenceReport {
	var total, completed int
	constraints := make(map[types.ConstraintKind]int)
	s.scanWindow(history, now, func(d types.Decision, w float64) {
		total++
		if d.Action != types.DecisionRejected {
			completed++
		}
		for _, c := range d.Constraints {
			constraints[c.Kind]++
		}
	})

	rate := 0.0
	if total > 0 {
		rate = float64(completed) / float64(total)
	}

	return &AdherenceReport{
		WindowDays:       s.cfg.Temporal.WindowDays,
		TotalDecisions:   total,
		CompletionRate:   rate,
		DomainSkipRates:  s.SkipRates(history, now),
		WeekdaySkipRates: s.WeekdaySkipRates(history, now),
		ConstraintCounts: constraints,
		Signals:          s.DetectPatterns(history, now),
	}
}
