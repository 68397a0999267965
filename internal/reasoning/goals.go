package reasoning

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// GoalStatus is the gatekeeper's verdict on a free-text goal.
type GoalStatus string

const (
	GoalAccepted  GoalStatus = "ACCEPTED"
	GoalNegotiate GoalStatus = "NEGOTIATE"
	GoalRejected  GoalStatus = "REJECTED"
)

// GoalAssessment is the outcome of evaluating a user goal for
// biological realism and safety.
type GoalAssessment struct {
	Status          GoalStatus `json:"status"`
	Reasoning       string     `json:"reasoning"`
	CounterProposal string     `json:"counter_proposal,omitempty"`
	RiskScore       float64    `json:"risk_score"` // 0 safe, 1 dangerous
}

var (
	weightChangeRegex = regexp.MustCompile(`(lose|gain) (\d+)\s*(kg|lbs)`)
	timeframeRegex    = regexp.MustCompile(`in (\d+)\s*(day|week|month)`)
)

// Safe weekly weight-change limits in kg. Loss beyond ~1kg/week is
// mostly muscle and water; gain beyond ~0.5kg/week is mostly fat.
const (
	maxLossPerWeek = 1.0
	maxGainPerWeek = 0.5
)

// heuristicGoalAssessment is the deterministic fallback used when the
// reasoning service is disabled or unreachable. It screens for the
// classic unsafe patterns: excessive weight-change velocity, sleep
// reduction, and no-rest-day training plans.
func heuristicGoalAssessment(goal string) *GoalAssessment {
	lower := strings.ToLower(goal)

	if a := weightVelocityCheck(lower); a != nil {
		return a
	}

	if strings.Contains(lower, "sleep less") || strings.Contains(lower, "4 hours") {
		return &GoalAssessment{
			Status:          GoalRejected,
			CounterProposal: "Optimize deep sleep quality at 8h total",
			Reasoning:       "Reducing sleep duration below baseline is cognitively hazardous and cannot be supported.",
			RiskScore:       0.9,
		}
	}

	if strings.Contains(lower, "every day") &&
		(strings.Contains(lower, "run") || strings.Contains(lower, "gym") || strings.Contains(lower, "train")) {
		return &GoalAssessment{
			Status:          GoalNegotiate,
			CounterProposal: strings.ReplaceAll(goal, "every day", "5 days/week"),
			Reasoning:       "Training without rest days leads to overtraining syndrome; 5 days/week maximizes adaptation.",
			RiskScore:       0.4,
		}
	}

	return &GoalAssessment{
		Status:    GoalAccepted,
		Reasoning: "This goal appears ambitious yet sustainable given the current profile.",
		RiskScore: 0.05,
	}
}

// weightVelocityCheck flags goals whose implied kg/week rate exceeds
// the safe limit for its direction. Returns nil when no weight goal is
// detected or the rate is fine.
func weightVelocityCheck(lower string) *GoalAssessment {
	weight := weightChangeRegex.FindStringSubmatch(lower)
	timeframe := timeframeRegex.FindStringSubmatch(lower)
	if weight == nil || timeframe == nil {
		return nil
	}

	direction := weight[1]
	amount, _ := strconv.Atoi(weight[2])
	unit := weight[3]
	duration, _ := strconv.Atoi(timeframe[1])
	period := timeframe[2]

	kg := float64(amount)
	if unit == "lbs" {
		kg *= 0.45
	}
	var weeks float64
	switch period {
	case "week":
		weeks = float64(duration)
	case "day":
		weeks = float64(duration) / 7
	default:
		weeks = float64(duration) * 4
	}
	if weeks <= 0 {
		weeks = 1.0 / 999
	}

	rate := kg / weeks
	limit := maxLossPerWeek
	verb := "losing"
	if direction == "gain" {
		limit = maxGainPerWeek
		verb = "gaining"
	}
	if rate <= limit {
		return nil
	}

	// Counter-offer lands slightly under the limit.
	recommendedWeeks := int(kg / (limit * 0.8))
	return &GoalAssessment{
		Status: GoalNegotiate,
		CounterProposal: fmt.Sprintf("%s%s %d%s in %d weeks",
			strings.ToUpper(direction[:1]), direction[1:], amount, unit, recommendedWeeks),
		Reasoning: fmt.Sprintf("Your goal implies %s %.1fkg/week; the medically safe limit is about %.1fkg/week.",
			verb, rate, limit),
		RiskScore: 0.6,
	}
}
