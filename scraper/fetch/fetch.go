// Package fetch provides the retry-hardened HTTP client used for the
// static-HTML site. Transient failures (connection errors, timeouts,
// 429/5xx) are retried with exponential backoff; other client errors
// fail fast. Callers must treat a returned error as normal control flow:
// missing pages are expected at scale.
package fetch

import (
	"bytes"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"college-scraper/scraper"
	"college-scraper/utils"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/123.0 Safari/537.36"

// Options configures a Client.
type Options struct {
	// MaxAttempts is the total attempt budget, first try included.
	MaxAttempts int
	// BaseBackoff is the wait before the second attempt; it doubles on
	// every subsequent one.
	BaseBackoff time.Duration
	// Timeout bounds a single request, connection plus read.
	Timeout time.Duration
}

// Client wraps a shared resty client. Construct once and inject it into
// whatever needs to fetch, so tests can point it at a local server.
type Client struct {
	http   *resty.Client
	logger *utils.Logger
}

// NewClient builds a Client with the given retry policy.
func NewClient(logger *utils.Logger, opts Options) *Client {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	rc := resty.New().
		SetHeader("User-Agent", userAgent).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.MaxAttempts - 1).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return retryableStatus(resp.StatusCode())
		}).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			// attempt 1 → base, attempt 2 → 2*base, ...
			delay := opts.BaseBackoff
			for i := 1; i < resp.Request.Attempt; i++ {
				delay *= 2
			}
			return delay, nil
		})

	return &Client{http: rc, logger: logger}
}

// Get fetches the URL and parses the body into a document. All retrying
// happens inside; the returned error is the terminal outcome.
func (c *Client) Get(url string) (*goquery.Document, error) {
	resp, err := c.http.R().Get(url)
	if err != nil {
		attempts := 1
		if resp != nil && resp.Request != nil {
			attempts = resp.Request.Attempt
		}
		return nil, &scraper.FetchError{URL: url, Attempts: attempts, Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &scraper.FetchError{
			URL:        url,
			StatusCode: resp.StatusCode(),
			Attempts:   resp.Request.Attempt,
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, &scraper.FetchError{URL: url, Attempts: resp.Request.Attempt, Err: err}
	}
	return doc, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
