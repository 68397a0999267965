package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/types"
)

func sampleDecision(ts time.Time) types.Decision {
	return types.Decision{
		ID:        uuid.New().String(),
		Timestamp: ts,
		Activity:  "Morning run",
		Domain:    types.DomainFitness,
		Action:    types.DecisionRejected,
		Reasoning: "burnout warning active",
		Constraints: []types.Constraint{
			{Kind: types.ConstraintBurnoutWarning, Severity: 1.0, Trigger: "3 constraints active"},
		},
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStore_AppendAndSnapshot(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 8, 20, 7, 0, 0, 0, time.UTC)

			first := sampleDecision(base)
			second := sampleDecision(base.Add(24 * time.Hour))
			require.NoError(t, store.Append(ctx, first))
			require.NoError(t, store.Append(ctx, second))

			got, err := store.Snapshot(ctx)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, first.ID, got[0].ID)
			assert.Equal(t, second.ID, got[1].ID)
			assert.Equal(t, types.DomainFitness, got[0].Domain)
			assert.Equal(t, types.DecisionRejected, got[0].Action)
			require.Len(t, got[0].Constraints, 1)
			assert.Equal(t, types.ConstraintBurnoutWarning, got[0].Constraints[0].Kind)
			assert.True(t, got[0].Timestamp.Equal(first.Timestamp))
		})
	}
}

func TestStore_SnapshotIsStable(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 8, 20, 7, 0, 0, 0, time.UTC)
			require.NoError(t, store.Append(ctx, sampleDecision(base)))

			snap, err := store.Snapshot(ctx)
			require.NoError(t, err)
			require.Len(t, snap, 1)

			// A later append must not leak into the earlier snapshot.
			require.NoError(t, store.Append(ctx, sampleDecision(base.Add(time.Hour))))
			assert.Len(t, snap, 1)
		})
	}
}

func TestStore_RejectsInvalidEntries(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			noID := sampleDecision(time.Now())
			noID.ID = ""
			assert.Error(t, store.Append(ctx, noID))

			noTime := sampleDecision(time.Time{})
			assert.Error(t, store.Append(ctx, noTime))
		})
	}
}

func TestSQLiteStore_DuplicateIDRejected(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	d := sampleDecision(time.Date(2026, 8, 20, 7, 0, 0, 0, time.UTC))
	require.NoError(t, store.Append(ctx, d))

	// Entries are immutable: re-appending the same ID fails.
	d.Reasoning = "rewritten"
	assert.Error(t, store.Append(ctx, d))
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	d := sampleDecision(time.Date(2026, 8, 20, 7, 0, 0, 0, time.UTC))
	require.NoError(t, store.Append(ctx, d))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, d.ID, got[0].ID)
}
