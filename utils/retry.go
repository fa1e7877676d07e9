package utils

import (
	"fmt"
	"time"
)

// Backoff computes the delay before the next attempt from the previous
// one. Policies are plain values so the fetcher, page-load waits and
// "show more" click loops share one combinator instead of duplicating
// retry control flow.
type Backoff func(prev time.Duration) time.Duration

// ExponentialBackoff doubles the delay after every failed attempt.
func ExponentialBackoff(prev time.Duration) time.Duration { return prev * 2 }

// FixedBackoff keeps the delay constant between attempts.
func FixedBackoff(prev time.Duration) time.Duration { return prev }

// RetryConfig holds the parameters for the retry strategy.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Backoff     Backoff // nil means exponential
	Logger      *Logger
}

// Do executes fn with the configured retry policy.
func (r *RetryConfig) Do(operationName string, fn func() error) error {
	var lastErr error
	delay := r.BaseDelay
	backoff := r.Backoff
	if backoff == nil {
		backoff = ExponentialBackoff
	}

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < r.MaxAttempts {
			r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v — retrying in %v",
				operationName, attempt, r.MaxAttempts, lastErr, delay)
			time.Sleep(delay)
			delay = backoff(delay)
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}
