package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/history"
	"github.com/cadencehq/cadence/internal/types"
)

func TestUpdateHealth_RejectsInvalid(t *testing.T) {
	s := New(history.NewMemoryStore())

	err := s.UpdateHealth(types.HealthState{SleepHours: 7, EnergyLevel: 0, StressLevel: types.StressLow})
	require.Error(t, err)
	assert.Nil(t, s.Health())

	require.NoError(t, s.UpdateHealth(types.HealthState{SleepHours: 7, EnergyLevel: 6, StressLevel: types.StressLow}))
	require.NotNil(t, s.Health())

	// A later invalid update keeps the previous snapshot.
	require.Error(t, s.UpdateHealth(types.HealthState{SleepHours: -2, EnergyLevel: 6, StressLevel: types.StressLow}))
	assert.InDelta(t, 7.0, s.Health().SleepHours, 1e-9)
}

func TestTasks_ReturnsCopies(t *testing.T) {
	s := New(history.NewMemoryStore())
	s.SetTasks([]types.Task{{Title: "Morning run", Domain: types.DomainFitness}})

	got := s.Tasks()
	got[0].IsBlocked = true
	assert.False(t, s.Tasks()[0].IsBlocked, "mutating the returned slice must not touch session state")
}

func TestCarryover_RoundTrip(t *testing.T) {
	s := New(history.NewMemoryStore())

	metrics, signals := s.Carryover()
	assert.Nil(t, metrics)
	assert.Empty(t, signals)

	s.SetCarryover(&types.ComputedMetrics{BurnoutRiskScore: 80}, []types.AdaptiveSignal{{Domain: types.DomainFitness, Delta: -0.05}})
	metrics, signals = s.Carryover()
	require.NotNil(t, metrics)
	assert.InDelta(t, 80.0, metrics.BurnoutRiskScore, 1e-9)
	require.Len(t, signals, 1)
	assert.Equal(t, types.DomainFitness, signals[0].Domain)
}

func TestReset_ClearsEverythingButHistory(t *testing.T) {
	store := history.NewMemoryStore()
	s := New(store)
	require.NoError(t, s.UpdateHealth(types.HealthState{SleepHours: 7, EnergyLevel: 6, StressLevel: types.StressLow}))
	s.SetTasks([]types.Task{{Title: "Meal prep", Domain: types.DomainNutrition}})
	s.SetCarryover(&types.ComputedMetrics{}, nil)

	s.Reset()
	assert.Nil(t, s.Health())
	assert.Empty(t, s.Tasks())
	metrics, signals := s.Carryover()
	assert.Nil(t, metrics)
	assert.Empty(t, signals)
	assert.Same(t, store, s.History())
}
