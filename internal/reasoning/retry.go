package reasoning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the API circuit breaker is open.
var ErrCircuitOpen = errors.New("reasoning circuit breaker is open")

// circuitState tracks the breaker's position.
type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

// apiBreaker protects against cascading failures when the reasoning
// service misbehaves: too many failures open the circuit and calls fail
// fast to the template fallback instead of queueing on a dead service.
type apiBreaker struct {
	mu sync.Mutex

	state            circuitState
	failureCount     int
	successCount     int
	lastFailureTime  time.Time
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
}

func newAPIBreaker(failureThreshold, successThreshold int, openTimeout time.Duration) *apiBreaker {
	return &apiBreaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		openTimeout:      openTimeout,
	}
}

func (b *apiBreaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case circuitOpen:
		if time.Since(b.lastFailureTime) > b.openTimeout {
			b.state = circuitHalfOpen
			b.successCount = 0
			return nil
		}
		return ErrCircuitOpen
	default:
		return nil
	}
}

func (b *apiBreaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case circuitClosed:
		b.failureCount = 0
	case circuitHalfOpen:
		b.successCount++
		if b.successCount >= b.successThreshold {
			b.state = circuitClosed
			b.failureCount = 0
			b.successCount = 0
		}
	}
}

func (b *apiBreaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailureTime = time.Now()
	switch b.state {
	case circuitClosed:
		b.failureCount++
		if b.failureCount >= b.failureThreshold {
			b.state = circuitOpen
		}
	case circuitHalfOpen:
		b.state = circuitOpen
	}
}

// retryWithBackoff runs fn with bounded retries, exponential backoff,
// the concurrency semaphore, the rate limiter, and the circuit breaker.
func (c *Client) retryWithBackoff(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("acquire slot for %s: %w", operation, err)
		}
		defer c.sem.Release(1)
	}

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if c.breaker != nil {
			if err := c.breaker.allow(); err != nil {
				return fmt.Errorf("%s: %w", operation, err)
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%s: %w", operation, err)
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			if c.breaker != nil {
				c.breaker.recordSuccess()
			}
			return nil
		}
		lastErr = err

		if c.breaker != nil && isRetriable(err) {
			c.breaker.recordFailure()
		}
		if !isRetriable(err) {
			return err
		}
		if attempt == c.maxRetries {
			break
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", operation, ctx.Err())
		}

		slog.Debug("reasoning call failed, retrying",
			"operation", operation, "attempt", attempt+1, "backoff", backoff, "error", err)

		select {
		case <-time.After(backoff):
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", operation, ctx.Err())
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, c.maxRetries+1, lastErr)
}

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 8 * time.Second
)

// isRetriable reports whether an error looks transient. Rate limits,
// server errors, and network problems are worth retrying; client errors
// are not.
func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	for _, marker := range []string{
		"429", "rate limit",
		"500", "502", "503", "504",
		"internal server error", "service unavailable", "gateway timeout",
		"connection refused", "connection reset", "timeout", "network",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
