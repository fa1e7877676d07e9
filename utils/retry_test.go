package utils

import (
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger()}

	attempts := 0
	err := r.Do("flaky op", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("boom")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts: got %d, want 3", attempts)
	}
}

func TestRetryExhaustsBudget(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: NewLogger()}

	sentinel := errors.New("still broken")
	attempts := 0
	err := r.Do("hopeless op", func() error {
		attempts++
		return sentinel
	})

	if attempts != 2 {
		t.Errorf("attempts: got %d, want 2", attempts)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("terminal error should wrap the last failure, got %v", err)
	}
}

func TestRetryStopsOnFirstSuccess(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, Logger: NewLogger()}

	attempts := 0
	if err := r.Do("easy op", func() error { attempts++; return nil }); err != nil {
		t.Fatal(err)
	}
	if attempts != 1 {
		t.Errorf("attempts: got %d, want 1", attempts)
	}
}

func TestBackoffPolicies(t *testing.T) {
	if got := ExponentialBackoff(100 * time.Millisecond); got != 200*time.Millisecond {
		t.Errorf("ExponentialBackoff: got %v, want 200ms", got)
	}
	if got := FixedBackoff(100 * time.Millisecond); got != 100*time.Millisecond {
		t.Errorf("FixedBackoff: got %v, want 100ms", got)
	}
}
