package types

import (
	"time"
)

// Vote is a council member's position on a proposed activity
type Vote string

const (
	VoteProceed Vote = "PROCEED"
	VoteModify  Vote = "MODIFY"
	VoteSkip    Vote = "SKIP"
)

// Severity maps a vote onto the ordinal scale used for aggregation:
// PROCEED=0, MODIFY=1, SKIP=2.
func (v Vote) Severity() float64 {
	switch v {
	case VoteModify:
		return 1
	case VoteSkip:
		return 2
	default:
		return 0
	}
}

// IsValid checks if the vote value is valid
func (v Vote) IsValid() bool {
	switch v {
	case VoteProceed, VoteModify, VoteSkip:
		return true
	}
	return false
}

// AgentVote is one profile's independent assessment of a proposed
// activity. The vote and confidence are always computed from
// deterministic rules; only Rationale may come from the external
// reasoning service.
type AgentVote struct {
	ProfileID  string  `json:"profile_id"`
	Vote       Vote    `json:"vote"`
	Confidence float64 `json:"confidence"` // 0.0 to 1.0
	Rationale  string  `json:"rationale"`
	Degraded   bool    `json:"degraded,omitempty"` // rationale fell back to template
}

// ConsensusResult is the council's aggregated outcome
type ConsensusResult struct {
	Vote                Vote        `json:"vote"`
	AggregateSeverity   float64     `json:"aggregate_severity"`
	AggregateConfidence float64     `json:"aggregate_confidence"`
	Votes               []AgentVote `json:"votes"`    // in fixed profile order
	Dissents            []AgentVote `json:"dissents"` // votes disagreeing with the winner
	Degraded            bool        `json:"degraded"` // any rationale degraded to template
}

// Action is the per-domain outcome of the trade-off engine
type Action string

const (
	ActionPrioritize Action = "PRIORITIZE" // full requested duration granted
	ActionMaintain   Action = "MAINTAIN"   // unchanged
	ActionDowngrade  Action = "DOWNGRADE"  // reduced-intensity substitute
	ActionSkip       Action = "SKIP"       // zero allocation
)

// SkipReason distinguishes why a domain received zero allocation
type SkipReason string

const (
	SkipNone     SkipReason = ""
	SkipCapacity SkipReason = "capacity" // available time exhausted
	SkipSafety   SkipReason = "safety"   // explicit blocking constraint
)

// TradeOffDecision is the allocation outcome for a single domain
type TradeOffDecision struct {
	Domain           Domain     `json:"domain"`
	Action           Action     `json:"action"`
	Weight           float64    `json:"weight"`            // adjusted priority weight
	AllocatedMinutes int        `json:"allocated_minutes"` // granted capacity
	SkipReason       SkipReason `json:"skip_reason,omitempty"`
	Reasoning        string     `json:"reasoning"`
}

// DecisionAction is the recorded disposition of a whole cycle decision
type DecisionAction string

const (
	DecisionProceed  DecisionAction = "PROCEED"
	DecisionModified DecisionAction = "MODIFIED"
	DecisionRejected DecisionAction = "REJECTED"
)

// Decision is one immutable history entry. DecisionHistory is
// append-only and owned by the session collaborator; the engine only
// reads consistent snapshots of it.
type Decision struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Activity    string         `json:"activity"`
	Domain      Domain         `json:"domain"`
	Action      DecisionAction `json:"action"`
	Reasoning   string         `json:"reasoning"`
	Constraints []Constraint   `json:"constraints"` // snapshot at decision time
}

// Task is one schedule entry for the day. Blocking is per task
// instance, never per domain globally.
type Task struct {
	Title           string  `json:"title"`
	Domain          Domain  `json:"domain"`
	DurationMinutes int     `json:"duration_minutes"`
	Intensity       float64 `json:"intensity"` // 0-1 scale
	IsBlocked       bool    `json:"is_blocked"`
	BlockReason     string  `json:"block_reason,omitempty"`
	OverrideReason  string  `json:"override_reason,omitempty"`
	Skipped         bool    `json:"skipped,omitempty"` // dropped by allocation, distinct from a breaker block
	Substituted     bool    `json:"substituted,omitempty"`
	SubstituteFor   string  `json:"substitute_for,omitempty"` // original title when substituted
	AdjustReason    string  `json:"adjust_reason,omitempty"`
}

// FutureImpact is a projected adjustment to upcoming days emitted by
// the trade-off engine (deload weeks, intensity reductions, sleep
// extensions).
type FutureImpact struct {
	DaysAffected int    `json:"days_affected"`
	Kind         string `json:"kind"`
	Description  string `json:"description"`
}

// AdaptiveSignal lowers a domain's future base priority when the
// temporal scorer detects a recurring skip pattern. Signals apply to
// the next cycle, never retroactively.
type AdaptiveSignal struct {
	Domain     Domain  `json:"domain"`
	Delta      float64 `json:"delta"` // applied to the domain's base weight
	SkipRate   float64 `json:"skip_rate"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}
