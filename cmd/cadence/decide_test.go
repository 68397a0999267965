package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/types"
)

func TestParseTasks(t *testing.T) {
	tasks, err := parseTasks([]string{
		"Morning run:fitness:45:0.8",
		"Meal prep:nutrition:30",
	})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "Morning run", tasks[0].Title)
	assert.Equal(t, types.DomainFitness, tasks[0].Domain)
	assert.Equal(t, 45, tasks[0].DurationMinutes)
	assert.InDelta(t, 0.8, tasks[0].Intensity, 1e-9)

	assert.InDelta(t, 0.5, tasks[1].Intensity, 1e-9, "intensity defaults to 0.5")
}

func TestApplyOverrides(t *testing.T) {
	schedule := []types.Task{
		{Title: "Morning run", Domain: types.DomainFitness, IsBlocked: true, BlockReason: "breaker"},
		{Title: "Meal prep", Domain: types.DomainNutrition},
	}

	require.NoError(t, applyOverrides(schedule, []string{"Morning run=physician cleared light jog"}))
	assert.False(t, schedule[0].IsBlocked)
	assert.Equal(t, "physician cleared light jog", schedule[0].OverrideReason)

	assert.Error(t, applyOverrides(schedule, []string{"Morning run"}), "missing justification separator")
	assert.Error(t, applyOverrides(schedule, []string{"Meal prep=whatever"}), "task is not blocked")
	assert.Error(t, applyOverrides(schedule, []string{"Absent=reason"}), "unknown task title")
}

func TestParseTasks_Invalid(t *testing.T) {
	tests := []string{
		"missing-fields",
		"Run:cardio:45",        // unknown domain
		"Run:fitness:zero",     // non-numeric minutes
		"Run:fitness:-10",      // negative minutes
		"Run:fitness:45:1.5",   // intensity out of range
		"Run:fitness:45:0.5:x", // too many fields
	}
	for _, spec := range tests {
		_, err := parseTasks([]string{spec})
		assert.Error(t, err, spec)
	}
}
