// Package resilience guards outbound collaborator calls (speech
// service, product finder, entity tagger) with retries and a circuit
// breaker so one slow dependency cannot take the whole query path down.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// State is the circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrCircuitOpen is returned while the breaker is rejecting calls.
	ErrCircuitOpen = errors.New("circuit breaker: circuit is open")

	// ErrTooManyRequests is returned when the half-open probe budget
	// is exhausted.
	ErrTooManyRequests = errors.New("circuit breaker: too many requests in half-open state")
)

// CircuitBreaker opens after maxFailures consecutive failures and
// probes the dependency again after resetTimeout. Safe for concurrent
// use.
type CircuitBreaker struct {
	mu sync.RWMutex

	maxFailures  int
	resetTimeout time.Duration
	probeBudget  int

	state       State
	failures    int
	lastFailure time.Time
	probes      int
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		probeBudget:  1,
		state:        StateClosed,
	}
}

// Execute runs fn if the breaker allows it and records the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}
	err := fn()
	cb.afterCall(err)
	return err
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastFailure) > cb.resetTimeout {
			cb.state = StateHalfOpen
			cb.probes = 1
			return nil
		}
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.probes >= cb.probeBudget {
			return ErrTooManyRequests
		}
		cb.probes++
	}
	return nil
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		if err == nil {
			cb.failures = 0
			return
		}
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.failures >= cb.maxFailures {
			cb.state = StateOpen
		}
	case StateHalfOpen:
		if err == nil {
			cb.state = StateClosed
			cb.failures = 0
			return
		}
		cb.state = StateOpen
		cb.failures = 1
		cb.lastFailure = time.Now()
	}
}

// GetState returns the current state.
func (cb *CircuitBreaker) GetState() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Reset forces the breaker closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
	cb.probes = 0
}
