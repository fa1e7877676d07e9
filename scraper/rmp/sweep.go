package rmp

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"college-scraper/config"
	"college-scraper/models"
	"college-scraper/scraper"
	"college-scraper/scraper/browser"
	"college-scraper/storage"
	"college-scraper/utils"
)

// Sweep crawls a dense numeric ID range with a fixed pool of workers.
// Each worker owns one isolated browser process for its lifetime, so a
// crashed browser takes down at most that worker's current unit. Results
// are consumed in completion order and flushed row by row; a crash
// mid-run loses at most the in-flight units.
type Sweep struct {
	cfg     *config.Config
	logger  *utils.Logger
	ratings storage.RowAppender
	ids     storage.RowAppender
	store   storage.RatingStore // optional database mirror, may be nil
}

// NewSweep wires a sweep driver over the given sinks.
func NewSweep(cfg *config.Config, logger *utils.Logger,
	ratings, ids storage.RowAppender, store storage.RatingStore) *Sweep {
	return &Sweep{
		cfg:     cfg,
		logger:  logger,
		ratings: ratings,
		ids:     ids,
		store:   store,
	}
}

type sweepResult struct {
	id  int
	rec *models.SchoolRecord
	err error
}

// Run enumerates [StartID, MaxID], dispatches each ID to the worker
// pool, and persists every confirmed record as it completes. Individual
// failures never abort the run; only a sink write failure does.
func (s *Sweep) Run() error {
	total := s.cfg.MaxID - s.cfg.StartID + 1
	s.logger.Info("[sweep] starting: %d IDs (%d..%d) across %d workers",
		total, s.cfg.StartID, s.cfg.MaxID, s.cfg.SweepWorkers)

	work := make(chan int)
	results := make(chan sweepResult)
	done := make(chan struct{})

	go func() {
		defer close(work)
		for id := s.cfg.StartID; id <= s.cfg.MaxID; id++ {
			select {
			case work <- id:
			case <-done:
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for n := 0; n < s.cfg.SweepWorkers; n++ {
		wg.Add(1)
		go s.worker(n, work, results, &wg)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		sinkErr       error
		stopped       bool
		found         int
		invalidStreak int
		streakWarned  bool
	)
	stop := func() {
		if !stopped {
			stopped = true
			close(done)
		}
	}
	defer stop()

	for res := range results {
		if sinkErr != nil {
			continue // draining after a fatal sink failure
		}

		switch {
		case res.err == nil:
			invalidStreak = 0
			found++
			s.logger.Info("[sweep] FOUND id=%s name=%q state=%q",
				res.rec.ID, res.rec.Name, res.rec.State)
			if err := s.persist(res.rec); err != nil {
				sinkErr = err
				stop()
			}
		case errors.Is(res.err, scraper.ErrNotFound):
			invalidStreak++
			s.logger.Debug("[sweep] id %d: not a valid school page", res.id)
		default:
			invalidStreak++
			s.logger.Warn("[sweep] id %d: %v", res.id, res.err)
		}

		if invalidStreak >= s.cfg.InvalidStreakLimit && !streakWarned {
			streakWarned = true
			s.logger.Warn("[sweep] %d consecutive invalid IDs", invalidStreak)
			if s.cfg.StopOnInvalidStreak {
				s.logger.Warn("[sweep] stopping early on invalid streak")
				stop()
			}
		}
	}

	if sinkErr != nil {
		return fmt.Errorf("sweep: %w", sinkErr)
	}
	s.logger.Info("[sweep] complete: %d valid schools found", found)
	return nil
}

func (s *Sweep) persist(rec *models.SchoolRecord) error {
	if err := s.ids.Append(rec.IDRow()); err != nil {
		return fmt.Errorf("append id row %s: %w", rec.ID, err)
	}
	if err := s.ratings.Append(rec.Row()); err != nil {
		return fmt.Errorf("append ratings row %s: %w", rec.ID, err)
	}
	if s.store != nil {
		if err := s.store.Insert(rec); err != nil {
			// The database mirror is best-effort; the CSV row is already
			// durable, so log and keep going.
			s.logger.Warn("[sweep] db insert %s: %v", rec.ID, err)
		}
	}
	return nil
}

// worker owns one browser session and processes IDs until the work
// channel closes. A browser-level failure replaces the session; a
// failure to start one at all aborts this worker only.
func (s *Sweep) worker(n int, work <-chan int, results chan<- sweepResult, wg *sync.WaitGroup) {
	defer wg.Done()

	opts := browser.Options{
		ChromeBin:       s.cfg.ChromeBin,
		PageLoadTimeout: time.Duration(s.cfg.PageLoadTimeout) * time.Second,
	}

	session, err := browser.NewSession(s.logger, opts)
	if err != nil {
		s.logger.Error("[sweep] worker %d: browser startup failed: %v", n, err)
		return
	}
	defer func() {
		if session != nil {
			session.Close()
		}
	}()

	for id := range work {
		rec, err := s.scrapeID(session, id)
		results <- sweepResult{id: id, rec: rec, err: err}

		var sessErr *scraper.SessionError
		if errors.As(err, &sessErr) {
			// The browser is likely wedged; replace it.
			session.Close()
			session, err = browser.NewSession(s.logger, opts)
			if err != nil {
				session = nil
				s.logger.Error("[sweep] worker %d: browser restart failed: %v", n, err)
				return
			}
		}
	}
}

// scrapeID visits one detail URL and extracts a record, or reports why
// the page is not a usable school page.
func (s *Sweep) scrapeID(session pageSession, id int) (*models.SchoolRecord, error) {
	if err := session.Navigate(SchoolURL(id)); err != nil {
		return nil, err
	}

	loc, err := session.Location()
	if err != nil {
		return nil, err
	}
	if !IsSchoolPage(loc) {
		return nil, fmt.Errorf("id %d redirected away: %w", id, scraper.ErrNotFound)
	}

	elementWait := time.Duration(s.cfg.ElementWait) * time.Second
	if err := session.WaitVisible(selPageMarker, elementWait); err != nil {
		return nil, err
	}

	var payload pagePayload
	if err := session.Evaluate(pagePayloadJS, &payload); err != nil {
		return nil, err
	}

	// Prefer the canonical id from the post-redirect URL.
	canonical := SchoolIDFromURL(loc)
	if canonical == "" {
		canonical = strconv.Itoa(id)
	}

	rec := ParseSchoolPage(canonical, payload)
	if rec.Name == "" {
		return nil, fmt.Errorf("id %d has no school name: %w", id, scraper.ErrNotFound)
	}
	return rec, nil
}
