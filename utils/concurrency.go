package utils

import (
	"math/rand"
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between requests, with optional
// random jitter on top to avoid a detectable fixed cadence. Safe for
// concurrent use.
type RateLimiter struct {
	minInterval time.Duration
	jitter      time.Duration
	mu          sync.Mutex
	lastRequest time.Time
}

// NewRateLimiter creates a RateLimiter. A zero jitter gives a fixed
// minimum interval.
func NewRateLimiter(minInterval, jitter time.Duration) *RateLimiter {
	return &RateLimiter{
		minInterval: minInterval,
		jitter:      jitter,
		lastRequest: time.Now(),
	}
}

// Wait blocks until at least the minimum interval (plus jitter) has
// passed since the previous request.
func (r *RateLimiter) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	interval := r.minInterval
	if r.jitter > 0 {
		interval += time.Duration(rand.Int63n(int64(r.jitter)))
	}

	elapsed := time.Since(r.lastRequest)
	if elapsed < interval {
		time.Sleep(interval - elapsed)
	}
	r.lastRequest = time.Now()
}

// SeenSet is a thread-safe set for suppressing duplicate work within a
// single traversal session (e.g. review entries already harvested from
// earlier "show more" pages).
type SeenSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewSeenSet creates an empty SeenSet.
func NewSeenSet() *SeenSet {
	return &SeenSet{seen: make(map[string]struct{})}
}

// Add returns true if the key was newly added, false if already present.
func (s *SeenSet) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Contains returns true if the key has already been recorded.
func (s *SeenSet) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[key]
	return exists
}

// Size returns the number of unique keys tracked.
func (s *SeenSet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
