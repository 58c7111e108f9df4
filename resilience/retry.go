package resilience

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

// RetryConfig controls the backoff loop.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	Multiplier      float64
	RandomizeFactor float64
	RetryIf         func(error) bool
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:     3,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		Multiplier:      2.0,
		RandomizeFactor: 0.1,
		RetryIf:         IsRetryable,
	}
}

// Retry runs fn with the default backoff config.
func Retry(ctx context.Context, fn func() error) error {
	return RetryWithConfig(ctx, DefaultRetryConfig(), fn)
}

// RetryWithConfig runs fn until it succeeds, the error is terminal, or
// the attempt budget runs out.
func RetryWithConfig(ctx context.Context, config *RetryConfig, fn func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if config.RetryIf != nil && !config.RetryIf(err) {
			return err
		}

		if attempt < config.MaxAttempts-1 {
			select {
			case <-time.After(applyJitter(delay, config.RandomizeFactor)):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay = time.Duration(float64(delay) * config.Multiplier)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}
	}

	return ErrMaxRetriesExceeded{Attempts: config.MaxAttempts, LastErr: lastErr}
}

func applyJitter(delay time.Duration, factor float64) time.Duration {
	if factor <= 0 {
		return delay
	}
	jitter := float64(delay) * factor
	return time.Duration(float64(delay) - jitter + rand.Float64()*2*jitter)
}

// StatusError carries a collaborator HTTP status so the retry loop can
// tell client mistakes from transient server trouble.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// IsRetryable rejects context cancellation and 4xx responses; anything
// else (network errors, 5xx, 429) is worth another attempt.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		if se.Status == http.StatusTooManyRequests {
			return true
		}
		return se.Status < 400 || se.Status >= 500
	}
	return true
}

// ErrMaxRetriesExceeded wraps the last error after the budget ran out.
type ErrMaxRetriesExceeded struct {
	Attempts int
	LastErr  error
}

func (e ErrMaxRetriesExceeded) Error() string {
	if e.LastErr != nil {
		return "max retries exceeded: " + e.LastErr.Error()
	}
	return "max retries exceeded"
}

func (e ErrMaxRetriesExceeded) Unwrap() error { return e.LastErr }
