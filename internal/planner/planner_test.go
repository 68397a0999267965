package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/config"
	"github.com/cadencehq/cadence/internal/types"
)

func TestFinalize_MaintainPassesThrough(t *testing.T) {
	a := New(config.Default())

	tasks := []types.Task{
		{Title: "Meal prep", Domain: types.DomainNutrition, DurationMinutes: 30, Intensity: 0.2},
	}
	decisions := []types.TradeOffDecision{
		{Domain: types.DomainNutrition, Action: types.ActionMaintain, AllocatedMinutes: 30},
	}

	out := a.Finalize(tasks, decisions)
	require.Len(t, out, 1)
	assert.Equal(t, tasks[0], out[0], "MAINTAIN leaves the task untouched")
}

func TestFinalize_DowngradeSubstitutes(t *testing.T) {
	cfg := config.Default()
	a := New(cfg)

	tasks := []types.Task{
		{Title: "HIIT session", Domain: types.DomainFitness, DurationMinutes: 45, Intensity: 0.9},
	}
	decisions := []types.TradeOffDecision{
		{Domain: types.DomainFitness, Action: types.ActionDowngrade, AllocatedMinutes: 10, Reasoning: "low energy"},
	}

	out := a.Finalize(tasks, decisions)
	require.Len(t, out, 1)
	got := out[0]
	assert.Equal(t, cfg.Substitutions[types.DomainFitness].Title, got.Title)
	assert.True(t, got.Substituted)
	assert.Equal(t, "HIIT session", got.SubstituteFor)
	assert.Less(t, got.Intensity, tasks[0].Intensity)
	assert.Contains(t, got.AdjustReason, "low energy")
}

func TestFinalize_DowngradeRespectsAllocation(t *testing.T) {
	a := New(config.Default())

	tasks := []types.Task{
		{Title: "HIIT session", Domain: types.DomainFitness, DurationMinutes: 45, Intensity: 0.9},
	}
	decisions := []types.TradeOffDecision{
		{Domain: types.DomainFitness, Action: types.ActionDowngrade, AllocatedMinutes: 5, Reasoning: "capacity squeeze"},
	}

	out := a.Finalize(tasks, decisions)
	assert.Equal(t, 5, out[0].DurationMinutes, "substitute shrinks to the granted allocation")
}

func TestFinalize_SkipFlagsNotDeletes(t *testing.T) {
	a := New(config.Default())

	tasks := []types.Task{
		{Title: "Morning run", Domain: types.DomainFitness, DurationMinutes: 45},
		{Title: "Meal prep", Domain: types.DomainNutrition, DurationMinutes: 30},
	}
	decisions := []types.TradeOffDecision{
		{Domain: types.DomainFitness, Action: types.ActionSkip, SkipReason: types.SkipCapacity, Reasoning: "available capacity exhausted"},
		{Domain: types.DomainNutrition, Action: types.ActionMaintain, AllocatedMinutes: 30},
	}

	out := a.Finalize(tasks, decisions)
	require.Len(t, out, 2, "skipped tasks remain in the schedule")
	assert.True(t, out[0].Skipped)
	assert.Equal(t, "available capacity exhausted", out[0].AdjustReason)
	assert.False(t, out[0].IsBlocked, "a capacity skip is not a breaker block")
	assert.False(t, out[1].Skipped)
}

func TestFinalize_BlockedTaskStaysBlocked(t *testing.T) {
	a := New(config.Default())

	tasks := []types.Task{
		{Title: "Morning run", Domain: types.DomainFitness, DurationMinutes: 45, IsBlocked: true, BlockReason: "burnout warning active"},
	}
	// Even a friendly domain action cannot unblock the task.
	decisions := []types.TradeOffDecision{
		{Domain: types.DomainFitness, Action: types.ActionMaintain, AllocatedMinutes: 45},
	}

	out := a.Finalize(tasks, decisions)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsBlocked)
	assert.Equal(t, "burnout warning active", out[0].BlockReason)
	assert.False(t, out[0].Substituted)
}

func TestFinalize_TaskWithoutDecisionPassesThrough(t *testing.T) {
	a := New(config.Default())

	tasks := []types.Task{
		{Title: "Journaling", Domain: types.DomainMindfulness, DurationMinutes: 15},
	}
	out := a.Finalize(tasks, nil)
	require.Len(t, out, 1)
	assert.Equal(t, tasks[0], out[0])
}

func TestFinalize_InputNotMutated(t *testing.T) {
	a := New(config.Default())

	tasks := []types.Task{
		{Title: "Morning run", Domain: types.DomainFitness, DurationMinutes: 45},
	}
	decisions := []types.TradeOffDecision{
		{Domain: types.DomainFitness, Action: types.ActionSkip, SkipReason: types.SkipSafety, Reasoning: "blocked"},
	}

	_ = a.Finalize(tasks, decisions)
	assert.False(t, tasks[0].Skipped, "caller's slice stays untouched")
}
