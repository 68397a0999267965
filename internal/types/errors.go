package types

import (
	"errors"
	"fmt"
)

// ErrConservativeFallback marks a cycle that resolved to the maximally
// conservative result after an internal invariant failed. Callers treat
// it as "circuit breaker engaged", not as a crash.
var ErrConservativeFallback = errors.New("engine fell back to conservative result")

// ValidationError reports malformed or out-of-range snapshot input.
// The input is rejected before any state mutation.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a validation error for a named field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ExternalServiceError reports a timeout or failure of the optional
// reasoning service. It is always caught at the call site and degraded
// to a deterministic fallback, never propagated as a cycle failure.
type ExternalServiceError struct {
	Op  string // which capability failed, e.g. "rationale", "goal-safety"
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("reasoning service %s failed: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// InvariantViolation reports an internal computation error (weights
// failing to renormalize, empty domain list). Fatal for the cycle only:
// the engine substitutes a conservative result instead of crashing.
type InvariantViolation struct {
	Invariant string
	Detail    string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violated (%s): %s", e.Invariant, e.Detail)
}
