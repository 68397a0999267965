// Package session holds the per-user state that spans decision cycles:
// the current health snapshot, the day's task schedule, the decision
// history handle, and the adaptive carryover (last cycle's metrics and
// signals). Storage and eviction of sessions belong to the caller; this
// package only owns the state inside one.
package session

import (
	"sync"

	"github.com/cadencehq/cadence/internal/history"
	"github.com/cadencehq/cadence/internal/types"
)

// Session is the mutable state for one user. Safe for concurrent use;
// the engine reads a copy of everything it needs at cycle start.
type Session struct {
	mu    sync.Mutex
	store history.Store

	state *types.HealthState
	tasks []types.Task

	// Carryover consumed on the next cycle, never the one that
	// produced it.
	priorMetrics *types.ComputedMetrics
	signals      []types.AdaptiveSignal
}

// New creates a session backed by the given history store.
func New(store history.Store) *Session {
	return &Session{store: store}
}

// History returns the session's decision log.
func (s *Session) History() history.Store {
	return s.store
}

// UpdateHealth validates and stores a new snapshot. Rejected input
// leaves the previous snapshot untouched.
func (s *Session) UpdateHealth(state types.HealthState) error {
	if err := state.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &state
	return nil
}

// Health returns a copy of the current snapshot, or nil before the
// first update.
func (s *Session) Health() *types.HealthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil
	}
	copied := *s.state
	return &copied
}

// SetTasks replaces the day's schedule.
func (s *Session) SetTasks(tasks []types.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make([]types.Task, len(tasks))
	copy(s.tasks, tasks)
}

// Tasks returns a copy of the current schedule.
func (s *Session) Tasks() []types.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Carryover returns last cycle's metrics and adaptive signals.
func (s *Session) Carryover() (*types.ComputedMetrics, []types.AdaptiveSignal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var metrics *types.ComputedMetrics
	if s.priorMetrics != nil {
		copied := *s.priorMetrics
		metrics = &copied
	}
	signals := make([]types.AdaptiveSignal, len(s.signals))
	copy(signals, s.signals)
	return metrics, signals
}

// SetCarryover records this cycle's outputs for the next one.
func (s *Session) SetCarryover(metrics *types.ComputedMetrics, signals []types.AdaptiveSignal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if metrics != nil {
		copied := *metrics
		s.priorMetrics = &copied
	} else {
		s.priorMetrics = nil
	}
	s.signals = make([]types.AdaptiveSignal, len(signals))
	copy(s.signals, signals)
}

// Reset clears all session state except the history handle.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	s.tasks = nil
	s.priorMetrics = nil
	s.signals = nil
}
