package ai

import (
	"log/slog"
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	// CircuitClosed indicates the circuit is allowing requests to pass through.
	CircuitClosed CircuitState = iota
	// CircuitOpen indicates the circuit is blocking requests due to failures.
	CircuitOpen
	// CircuitHalfOpen lets a single probe through after the cooldown.
	CircuitHalfOpen
)

// String returns a string representation of the circuit state
func (cs CircuitState) String() string {
	switch cs {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker stops calling a provider after consecutive failures and
// probes it again once the cooldown has passed.
type CircuitBreaker struct {
	mu        sync.Mutex
	provider  string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	state        CircuitState
	failureCount int
	openedAt     time.Time
	probing      bool
}

// NewCircuitBreaker creates a breaker for one provider. A threshold below 1 disables it.
func NewCircuitBreaker(provider string, threshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		provider:  provider,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
		state:     CircuitClosed,
	}
}

// Allow reports whether a request may be attempted now.
func (cb *CircuitBreaker) Allow() bool {
	if cb.threshold < 1 {
		return true
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if cb.now().Sub(cb.openedAt) < cb.cooldown {
			return false
		}
		cb.state = CircuitHalfOpen
		cb.probing = true
		return true
	default:
		// one probe at a time
		if cb.probing {
			return false
		}
		cb.probing = true
		return true
	}
}

// RecordSuccess closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitClosed {
		slog.Info("circuit breaker closed after successful recovery", slog.String("provider", cb.provider))
	}
	cb.state = CircuitClosed
	cb.failureCount = 0
	cb.probing = false
}

// RecordFailure counts a failure and opens the circuit at the threshold or
// when a half-open probe fails.
func (cb *CircuitBreaker) RecordFailure() {
	if cb.threshold < 1 {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.probing = false
	if cb.state == CircuitHalfOpen || cb.failureCount >= cb.threshold {
		if cb.state != CircuitOpen {
			slog.Warn("circuit breaker opened due to consecutive failures",
				slog.String("provider", cb.provider),
				slog.Int("failure_count", cb.failureCount),
				slog.Int("threshold", cb.threshold))
		}
		cb.state = CircuitOpen
		cb.openedAt = cb.now()
	}
}

// Release ends a half-open probe that finished without a verdict, such as a
// canceled call. The circuit goes back to open with its original cooldown, so
// the next Allow may probe again at once.
func (cb *CircuitBreaker) Release() {
	if cb.threshold < 1 {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitHalfOpen {
		cb.state = CircuitOpen
	}
	cb.probing = false
}

// State returns the current circuit state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
