// Package reasoning wraps the external model service used for two
// optional capabilities: refining council vote rationales into better
// prose, and gatekeeping free-text user goals for safety. Every call
// degrades to a deterministic fallback; the decision pipeline never
// depends on this service being reachable.
package reasoning

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/cadencehq/cadence/internal/config"
	"github.com/cadencehq/cadence/internal/types"
)

const (
	breakerFailureThreshold = 5
	breakerSuccessThreshold = 2
	breakerOpenTimeout      = 30 * time.Second
)

// Client talks to the reasoning service with retries, a rate limit, a
// concurrency cap, and a circuit breaker.
type Client struct {
	api        *anthropic.Client
	model      string
	timeout    time.Duration
	maxRetries int
	breaker    *apiBreaker
	sem        *semaphore.Weighted
	limiter    *rate.Limiter
}

// New creates a reasoning client from configuration. Returns nil
// without error when reasoning is disabled; callers treat a nil client
// as "always use the fallback".
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Reasoning.Enabled {
		return nil, nil
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("reasoning enabled but ANTHROPIC_API_KEY not set")
	}

	api := anthropic.NewClient(option.WithAPIKey(apiKey))

	var sem *semaphore.Weighted
	if cfg.Reasoning.MaxConcurrent > 0 {
		sem = semaphore.NewWeighted(int64(cfg.Reasoning.MaxConcurrent))
	}
	var limiter *rate.Limiter
	if cfg.Reasoning.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.Reasoning.RequestsPerMinute)/60), 1)
	}

	return &Client{
		api:        &api,
		model:      cfg.Reasoning.Model,
		timeout:    cfg.Reasoning.Timeout,
		maxRetries: cfg.Reasoning.MaxRetries,
		breaker:    newAPIBreaker(breakerFailureThreshold, breakerSuccessThreshold, breakerOpenTimeout),
		sem:        sem,
		limiter:    limiter,
	}, nil
}

// refinement mirrors the service's rationale payload. Only the prose is
// consumed; the numeric fields exist so a well-formed response parses
// whole, but votes and confidences always come from the deterministic
// rules.
type refinement struct {
	Vote       string  `json:"vote"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// Rationale asks the service to rewrite a vote's explanation. An error
// means the caller should keep its templated text.
func (c *Client) Rationale(ctx context.Context, profileID string, vote types.AgentVote, state *types.HealthState, cs *types.ConstraintSet) (string, error) {
	if c == nil {
		return "", &types.ExternalServiceError{Op: "rationale", Err: fmt.Errorf("reasoning disabled")}
	}

	prompt := buildRationalePrompt(profileID, vote, state, cs)

	var response *anthropic.Message
	err := c.retryWithBackoff(ctx, "rationale", func(attemptCtx context.Context) error {
		resp, apiErr := c.api.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: 512,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", &types.ExternalServiceError{Op: "rationale", Err: err}
	}

	var r refinement
	if !parsePayload(responseText(response), &r) || strings.TrimSpace(r.Rationale) == "" {
		return "", &types.ExternalServiceError{Op: "rationale", Err: fmt.Errorf("unparseable response")}
	}
	return r.Rationale, nil
}

// EvaluateGoal gatekeeps a free-text goal. Service failure of any kind
// falls back to the deterministic heuristics; the returned degraded
// flag records which path produced the assessment.
func (c *Client) EvaluateGoal(ctx context.Context, goal string, state *types.HealthState) (*GoalAssessment, bool) {
	if c == nil {
		return heuristicGoalAssessment(goal), true
	}

	prompt := buildGoalPrompt(goal, state)

	var response *anthropic.Message
	err := c.retryWithBackoff(ctx, "goal-safety", func(attemptCtx context.Context) error {
		resp, apiErr := c.api.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: 512,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		slog.Warn("goal evaluation degraded to heuristics", "error", err)
		return heuristicGoalAssessment(goal), true
	}

	var a GoalAssessment
	if !parsePayload(responseText(response), &a) || !validGoalStatus(a.Status) {
		slog.Warn("goal evaluation response unparseable, using heuristics")
		return heuristicGoalAssessment(goal), true
	}
	return &a, false
}

func validGoalStatus(s GoalStatus) bool {
	switch s {
	case GoalAccepted, GoalNegotiate, GoalRejected:
		return true
	}
	return false
}

func responseText(m *anthropic.Message) string {
	var b strings.Builder
	for _, block := range m.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

func buildRationalePrompt(profileID string, vote types.AgentVote, state *types.HealthState, cs *types.ConstraintSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are the %q evaluator on a daily-capacity planning council.\n", profileID)
	fmt.Fprintf(&b, "The vote is already decided: %s with confidence %.2f. Do not change it.\n\n", vote.Vote, vote.Confidence)
	fmt.Fprintf(&b, "Health snapshot: sleep %.1fh, energy %d/10, stress %s, available time %.1fh.\n",
		state.SleepHours, state.EnergyLevel, state.StressLevel, state.AvailableTime)
	if cs.Len() > 0 {
		b.WriteString("Active constraints:\n")
		for _, c := range cs.Constraints {
			fmt.Fprintf(&b, "- %s (severity %.1f): %s\n", c.Kind, c.Severity, c.Trigger)
		}
	}
	b.WriteString("\nRewrite the rationale as one or two clear sentences a user would find helpful.\n")
	b.WriteString(`Output STRICT JSON: {"vote": "...", "confidence": 0.0, "rationale": "..."}`)
	return b.String()
}

func buildGoalPrompt(goal string, state *types.HealthState) string {
	var b strings.Builder
	b.WriteString("You are a medical safety gatekeeper for user health goals.\n")
	b.WriteString("Detect unsafe, unrealistic, or dangerous goals (extreme weight change velocity, sleep deprivation, no rest days).\n")
	b.WriteString("Unsafe limits: weight loss > 1.0kg/week, weight gain > 0.5kg/week, sleep < 6h/night, training without rest days.\n\n")
	fmt.Fprintf(&b, "Current state: sleep %.1fh, energy %d/10, stress %s.\n", state.SleepHours, state.EnergyLevel, state.StressLevel)
	fmt.Fprintf(&b, "Goal: %s\n\n", goal)
	b.WriteString(`Output STRICT JSON: {"status": "ACCEPTED"|"NEGOTIATE"|"REJECTED", "reasoning": "one sentence", "counter_proposal": "alternative or empty", "risk_score": 0.0}`)
	return b.String()
}
