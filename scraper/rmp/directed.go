package rmp

import (
	"errors"
	"fmt"
	"time"

	"college-scraper/config"
	"college-scraper/models"
	"college-scraper/scraper"
	"college-scraper/scraper/browser"
	"college-scraper/services"
	"college-scraper/storage"
	"college-scraper/utils"
)

// Directed crawls the ratings site for each school on the local roster:
// search, identity confirmation, ratings extraction, then paginated
// review harvesting. It runs one school at a time on a single browser
// session — burst concurrency against dynamically rendered pages of the
// same site trips its anti-bot defenses.
type Directed struct {
	cfg     *config.Config
	logger  *utils.Logger
	matcher *services.Matcher
	cleaner *services.Cleaner
	ratings storage.RowAppender
	reviews storage.RowAppender
	store   storage.RatingStore // optional database mirror, may be nil
}

// NewDirected wires a directed-mode driver over the given sinks.
func NewDirected(cfg *config.Config, logger *utils.Logger, matcher *services.Matcher,
	ratings, reviews storage.RowAppender, store storage.RatingStore) *Directed {
	return &Directed{
		cfg:     cfg,
		logger:  logger,
		matcher: matcher,
		cleaner: services.NewCleaner(logger),
		ratings: ratings,
		reviews: reviews,
		store:   store,
	}
}

var errNoMoreButton = errors.New("no show-more button")

// Run processes the roster sequentially. A school's failure of any kind
// is logged and the run moves on; only browser startup failures and sink
// write failures abort.
func (d *Directed) Run(roster []models.SchoolIdentity) error {
	opts := browser.Options{
		ChromeBin:       d.cfg.ChromeBin,
		PageLoadTimeout: time.Duration(d.cfg.PageLoadTimeout) * time.Second,
	}

	session, err := browser.NewSession(d.logger, opts)
	if err != nil {
		return fmt.Errorf("directed: %w", err)
	}
	defer func() {
		if session != nil {
			session.Close()
		}
	}()

	for i, identity := range roster {
		d.logger.Info("[directed] %d/%d processing %s (%s)",
			i+1, len(roster), identity.Name, identity.State)

		if err := d.processSchool(session, identity); err != nil {
			d.logger.Error("[directed] %s: %v", identity.Name, err)

			var sinkErr *sinkFailure
			if errors.As(err, &sinkErr) {
				return fmt.Errorf("directed: %w", err)
			}
			var sessErr *scraper.SessionError
			if errors.As(err, &sessErr) {
				session.Close()
				session, err = browser.NewSession(d.logger, opts)
				if err != nil {
					session = nil
					return fmt.Errorf("directed: browser restart: %w", err)
				}
			}
		}
	}
	return nil
}

// sinkFailure marks persistence errors so Run can tell them apart from
// per-school scrape failures, which are survivable.
type sinkFailure struct{ err error }

func (e *sinkFailure) Error() string { return e.err.Error() }
func (e *sinkFailure) Unwrap() error { return e.err }

func (d *Directed) processSchool(session pageSession, identity models.SchoolIdentity) error {
	cand, err := d.selectCandidate(session, identity)
	if err != nil {
		return err
	}

	// The session now sits on the verified school page.
	var payload pagePayload
	if err := session.Evaluate(pagePayloadJS, &payload); err != nil {
		return err
	}

	rec := ParseSchoolPage(cand.ExternalID, payload)
	// Rows are keyed by the roster's identity, not the page's rendering
	// of it, so downstream joins against the input list stay trivial.
	rec.Name = identity.Name
	rec.State = identity.State

	if err := d.ratings.Append(rec.Row()); err != nil {
		return &sinkFailure{fmt.Errorf("append ratings row: %w", err)}
	}
	d.logger.Info("[directed] %s: ratings saved", identity.Name)

	if d.store != nil {
		if err := d.store.Insert(rec); err != nil {
			d.logger.Warn("[directed] %s: db insert: %v", identity.Name, err)
		}
	}

	return d.scrapeReviews(session, identity.Name)
}

// selectCandidate searches for the school, filters and orders the result
// cards, then visits each in turn until one passes name verification.
// On success the session is left on the verified page.
func (d *Directed) selectCandidate(session pageSession, identity models.SchoolIdentity) (*models.RawCandidate, error) {
	searchURL := SearchURL(identity.Name)
	if err := d.openSearch(session, searchURL); err != nil {
		return nil, err
	}

	var cards []cardPayload
	if err := session.Evaluate(searchCardsJS, &cards); err != nil {
		return nil, err
	}
	candidates := ParseSearchCards(cards)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no usable search cards: %w", scraper.ErrNoMatch)
	}

	pool := d.matcher.FilterByState(identity, candidates)
	d.matcher.OrderCandidates(identity, pool)

	elementWait := time.Duration(d.cfg.ElementWait) * time.Second
	for _, cand := range pool {
		if err := session.Navigate(cand.URL); err != nil {
			var sessErr *scraper.SessionError
			if errors.As(err, &sessErr) {
				return nil, err
			}
			d.logger.Warn("[directed] %s: candidate %q did not load: %v",
				identity.Name, cand.Name, err)
			if err := d.openSearch(session, searchURL); err != nil {
				return nil, err
			}
			continue
		}

		pageName, err := session.Text(selSchoolName, elementWait)
		if err != nil {
			var sessErr *scraper.SessionError
			if errors.As(err, &sessErr) {
				return nil, err
			}
			d.logger.Warn("[directed] %s: no name element on candidate %q",
				identity.Name, cand.Name)
			if err := d.openSearch(session, searchURL); err != nil {
				return nil, err
			}
			continue
		}

		if services.NamesMatch(identity.Name, pageName) {
			d.logger.Info("[directed] %s: verified as %q (%s, %d reviews)",
				identity.Name, pageName, cand.Location, cand.ReviewCount)
			return cand, nil
		}

		d.logger.Warn("[directed] %s: name mismatch with %q, trying next candidate",
			identity.Name, pageName)
		if err := d.openSearch(session, searchURL); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("all %d candidate(s) rejected: %w", len(pool), scraper.ErrNoMatch)
}

func (d *Directed) openSearch(session pageSession, searchURL string) error {
	if err := session.Navigate(searchURL); err != nil {
		return err
	}
	searchWait := time.Duration(d.cfg.SearchWait) * time.Second
	return session.WaitVisible(selSearchCard, searchWait)
}

// scrapeReviews pages through the review list via the "Show More"
// control, harvesting newly rendered containers and flushing them in
// small batches so the output stays durable throughout.
func (d *Directed) scrapeReviews(session pageSession, schoolName string) error {
	seen := utils.NewSeenSet()
	var batch [][]string
	processed := 0
	saved := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := d.reviews.AppendBatch(batch); err != nil {
			return &sinkFailure{fmt.Errorf("append review batch: %w", err)}
		}
		saved += len(batch)
		d.logger.Info("[directed] %s: saved batch of %d reviews (total %d)",
			schoolName, len(batch), saved)
		batch = batch[:0]
		return nil
	}

	for {
		var count int
		if err := session.Evaluate(reviewCountJS, &count); err != nil {
			return err
		}
		if count <= processed {
			break
		}

		var payloads []reviewPayload
		if err := session.Evaluate(reviewsFromJS(processed), &payloads); err != nil {
			return err
		}
		processed = count

		for _, rev := range d.cleaner.Clean(ParseReviews(schoolName, payloads)) {
			// Best-effort duplicate suppression within this session.
			if !seen.Add(rev.Date + "\x00" + rev.Score + "\x00" + rev.Comment) {
				continue
			}
			batch = append(batch, rev.Row())
			if len(batch) >= d.cfg.ReviewBatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}

		more, err := d.loadMore(session, schoolName, processed)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	if err := flush(); err != nil {
		return err
	}
	d.logger.Info("[directed] %s: finished, %d reviews saved", schoolName, saved)
	return nil
}

// loadMore clicks the "Show More" control and waits for new review
// containers to render. Returns false when pagination is exhausted or
// the control stops responding after the bounded retries.
func (d *Directed) loadMore(session pageSession, schoolName string, current int) (bool, error) {
	// A promo popup sometimes overlays the button; close it first.
	var closed bool
	if err := session.Evaluate(closePopupJS, &closed); err != nil {
		return false, err
	}
	if closed {
		time.Sleep(500 * time.Millisecond)
	}

	retry := &utils.RetryConfig{
		MaxAttempts: d.cfg.MaxRetries,
		BaseDelay:   time.Duration(d.cfg.RetryDelayMs) * time.Millisecond,
		Backoff:     utils.FixedBackoff,
		Logger:      d.logger,
	}

	var sessionErr error
	err := retry.Do("show-more click", func() error {
		var clicked bool
		if err := session.Evaluate(showMoreJS, &clicked); err != nil {
			sessionErr = err
			return err
		}
		if !clicked {
			return errNoMoreButton
		}
		grew, err := d.waitForCountAbove(session, current, 10*time.Second)
		if err != nil {
			sessionErr = err
			return err
		}
		if !grew {
			return errors.New("no new reviews appeared after click")
		}
		return nil
	})

	if sessionErr != nil {
		return false, sessionErr
	}
	if err != nil {
		if errors.Is(err, errNoMoreButton) {
			d.logger.Info("[directed] %s: no more reviews to load", schoolName)
		} else {
			d.logger.Warn("[directed] %s: show-more stopped responding: %v", schoolName, err)
		}
		return false, nil
	}
	return true, nil
}

// waitForCountAbove polls the review-container count until it exceeds
// the threshold. A failing Evaluate is a browser-level problem and is
// returned as such, never folded into "no new reviews".
func (d *Directed) waitForCountAbove(session pageSession, threshold int, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var count int
		if err := session.Evaluate(reviewCountJS, &count); err != nil {
			return false, err
		}
		if count > threshold {
			return true, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return false, nil
}
