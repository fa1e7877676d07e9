package fetch

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"college-scraper/scraper"
	"college-scraper/utils"
)

func testClient(attempts int) *Client {
	return NewClient(utils.NewLogger(), Options{
		MaxAttempts: attempts,
		BaseBackoff: time.Millisecond,
		Timeout:     5 * time.Second,
	})
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var mu sync.Mutex
	var hits []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		hits = append(hits, time.Now())
		n := len(hits)
		mu.Unlock()

		if n <= 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`<html><head><title>Troy University</title></head></html>`))
	}))
	defer srv.Close()

	client := NewClient(utils.NewLogger(), Options{
		MaxAttempts: 5,
		BaseBackoff: 40 * time.Millisecond,
		Timeout:     5 * time.Second,
	})

	doc, err := client.Get(srv.URL)
	require.NoError(t, err)
	require.Len(t, hits, 4, "three 503s then success on the fourth attempt")
	require.Equal(t, "Troy University", doc.Find("title").Text())

	// The wait between attempts doubles, so every gap must exceed the
	// one before it.
	var prev time.Duration
	for i := 1; i < len(hits); i++ {
		gap := hits[i].Sub(hits[i-1])
		require.Greater(t, gap, prev, "backoff before attempt %d did not grow", i+1)
		prev = gap
	}
}

func TestGetDoesNotRetryNotFound(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(5).Get(srv.URL)
	require.Error(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))

	var fetchErr *scraper.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	require.False(t, fetchErr.Retryable())
}

func TestGetExhaustsRetryBudget(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(3).Get(srv.URL)
	require.Error(t, err)
	require.Equal(t, int32(3), atomic.LoadInt32(&hits))

	var fetchErr *scraper.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	require.Equal(t, 3, fetchErr.Attempts)
	require.True(t, fetchErr.Retryable())
}

func TestGetConnectionError(t *testing.T) {
	// A server that is already closed refuses connections.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := testClient(2).Get(url)
	require.Error(t, err)

	var fetchErr *scraper.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.True(t, fetchErr.Retryable())
}
