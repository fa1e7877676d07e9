package scraper

import (
	"errors"
	"fmt"
)

// Sentinel errors for per-unit outcomes that are expected at scale.
// Drivers log these and move to the next unit; they are never fatal.
var (
	// ErrNotFound means the target page or a required marker element was
	// absent. Dense ID sweeps hit this constantly.
	ErrNotFound = errors.New("scraper: target not found")

	// ErrNoMatch means no search candidate passed identity verification.
	ErrNoMatch = errors.New("scraper: no confident identity match")
)

// FetchError is a network-level failure surfaced after the retry budget
// is spent (or immediately, for non-retryable statuses).
type FetchError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d after %d attempt(s)", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("fetch %s: %v after %d attempt(s)", e.URL, e.Err, e.Attempts)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether the failure class is worth retrying:
// connection errors and 429/5xx statuses are, other 4xx are not.
func (e *FetchError) Retryable() bool {
	if e.StatusCode == 0 {
		return true
	}
	switch e.StatusCode {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// SessionError is a browser-level crash or startup failure. In sweep mode
// it is confined to one worker; in directed mode it aborts only the
// current school.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("browser session: %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }
