// Package history stores the append-only decision log. Entries are
// immutable once appended; pattern detection and reporting read
// consistent snapshots taken at cycle start.
package history

import (
	"context"
	"sync"

	"github.com/cadencehq/cadence/internal/types"
)

// Store is the decision log. Writes are serialized (single writer per
// session); Snapshot returns a stable copy unaffected by later appends.
type Store interface {
	Append(ctx context.Context, d types.Decision) error
	Snapshot(ctx context.Context) ([]types.Decision, error)
	Close() error
}

// MemoryStore keeps the log in memory. Used by tests and by sessions
// that don't want persistence.
type MemoryStore struct {
	mu        sync.RWMutex
	decisions []types.Decision
}

// NewMemoryStore creates an empty in-memory log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds one decision to the log.
func (m *MemoryStore) Append(ctx context.Context, d types.Decision) error {
	if err := validate(d); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, d)
	return nil
}

// Snapshot returns a copy of the log in append order.
func (m *MemoryStore) Snapshot(ctx context.Context) ([]types.Decision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Decision, len(m.decisions))
	copy(out, m.decisions)
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }

func validate(d types.Decision) error {
	if d.ID == "" {
		return types.NewValidationError("id", "decision id must not be empty")
	}
	if d.Timestamp.IsZero() {
		return types.NewValidationError("timestamp", "decision timestamp must be set")
	}
	return nil
}
