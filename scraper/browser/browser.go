// Package browser owns the headless-browser sessions used against the
// JavaScript-rendered ratings site. Each Session wraps one isolated
// browser process; callers must Close it on every exit path.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"college-scraper/scraper"
	"college-scraper/utils"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures a Session.
type Options struct {
	// ChromeBin overrides the browser binary path when set.
	ChromeBin string
	// PageLoadTimeout bounds every Navigate call.
	PageLoadTimeout time.Duration
}

// Session is one isolated automated-browser instance. Image loading,
// the automation-detection blink feature and stylesheet/font requests
// are all disabled; the pages scraped render fine without them and load
// much faster. Navigate still waits for the page load event: with
// subresources blocked it fires almost as fast as DOMContentLoaded, and
// callers gate on a marker-element wait before reading anything anyway.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	cancelAlloc context.CancelFunc
	pageTimeout time.Duration
	logger      *utils.Logger
}

// NewSession starts a browser process and returns a ready Session. A
// startup failure is the only error class that should abort the calling
// worker.
func NewSession(logger *utils.Logger, opts Options) (*Session, error) {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("window-size", "1280,720"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.UserAgent(userAgent),
	)
	if opts.ChromeBin != "" {
		execOpts = append(execOpts, chromedp.ExecPath(opts.ChromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), execOpts...)

	// Suppress chromedp log noise
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Start the browser eagerly so startup failures surface here rather
	// than on the first navigation, and block stylesheet/font fetches
	// (images are already off via the blink setting).
	err := chromedp.Run(ctx,
		network.Enable(),
		network.SetBlockedURLS([]string{"*.css", "*.woff", "*.woff2", "*.ttf"}),
	)
	if err != nil {
		cancel()
		cancelAlloc()
		return nil, &scraper.SessionError{Op: "start", Err: err}
	}

	pageTimeout := opts.PageLoadTimeout
	if pageTimeout <= 0 {
		pageTimeout = 30 * time.Second
	}

	return &Session{
		ctx:         ctx,
		cancel:      cancel,
		cancelAlloc: cancelAlloc,
		pageTimeout: pageTimeout,
		logger:      logger,
	}, nil
}

// Navigate loads the URL, bounded by the page-load timeout.
func (s *Session) Navigate(url string) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.pageTimeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("navigate %s: %w", url, scraper.ErrNotFound)
		}
		return &scraper.SessionError{Op: "navigate " + url, Err: err}
	}
	return nil
}

// Location returns the current page URL (after any redirects).
func (s *Session) Location() (string, error) {
	var url string
	ctx, cancel := context.WithTimeout(s.ctx, s.pageTimeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.Location(&url)); err != nil {
		return "", &scraper.SessionError{Op: "location", Err: err}
	}
	return url, nil
}

// WaitVisible blocks until the selector appears, or fails with
// ErrNotFound once the bounded wait elapses.
func (s *Session) WaitVisible(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("wait for %q: %w", selector, scraper.ErrNotFound)
		}
		return &scraper.SessionError{Op: "wait " + selector, Err: err}
	}
	return nil
}

// Text waits for the selector and returns its trimmed text content, or
// ErrNotFound after the bounded wait.
func (s *Session) Text(selector string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	var text string
	err := chromedp.Run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Text(selector, &text, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("text of %q: %w", selector, scraper.ErrNotFound)
		}
		return "", &scraper.SessionError{Op: "text " + selector, Err: err}
	}
	return text, nil
}

// Evaluate runs the JavaScript expression in the page and unmarshals the
// result into out.
func (s *Session) Evaluate(js string, out interface{}) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.pageTimeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.Evaluate(js, out)); err != nil {
		return &scraper.SessionError{Op: "evaluate", Err: err}
	}
	return nil
}

// Close tears the browser process down. Safe to call more than once.
func (s *Session) Close() {
	s.cancel()
	s.cancelAlloc()
}
