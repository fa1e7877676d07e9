package utils

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSeenSetNoDuplicates(t *testing.T) {
	s := NewSeenSet()

	added := s.Add("May 1st, 2022\x004.0\x00great campus")
	if !added {
		t.Error("first Add should return true")
	}

	added = s.Add("May 1st, 2022\x004.0\x00great campus")
	if added {
		t.Error("second Add of same key should return false")
	}

	if !s.Contains("May 1st, 2022\x004.0\x00great campus") {
		t.Error("Contains should report the key")
	}
	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestSeenSetConcurrency(t *testing.T) {
	s := NewSeenSet()
	var added int64

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Add("same-key") {
				atomic.AddInt64(&added, 1)
			}
		}()
	}
	wg.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestRateLimiterMinimumInterval(t *testing.T) {
	min := 50 * time.Millisecond
	limiter := NewRateLimiter(min, 0)

	var timestamps []time.Time
	for i := 0; i < 3; i++ {
		limiter.Wait()
		timestamps = append(timestamps, time.Now())
	}

	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		if gap < min {
			t.Errorf("gap between request %d and %d: %v < minimum %v", i-1, i, gap, min)
		}
	}
}

func TestRateLimiterJitterBounded(t *testing.T) {
	min := 10 * time.Millisecond
	jitter := 20 * time.Millisecond
	limiter := NewRateLimiter(min, jitter)

	start := time.Now()
	limiter.Wait()
	limiter.Wait()
	elapsed := time.Since(start)

	// Two waits: each at least min, at most min+jitter plus scheduling slack.
	if elapsed < min {
		t.Errorf("elapsed %v shorter than minimum interval %v", elapsed, min)
	}
	if elapsed > 2*(min+jitter)+100*time.Millisecond {
		t.Errorf("elapsed %v far beyond the jitter ceiling", elapsed)
	}
}
