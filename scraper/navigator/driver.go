package navigator

import (
	"fmt"

	"college-scraper/models"
	"college-scraper/scraper/fetch"
	"college-scraper/services"
	"college-scraper/storage"
	"college-scraper/utils"
)

// Driver runs the CSV-driven detail-enrichment pipeline: search the
// static site for each known school, confirm identity by exact city
// match, extract the numeric details and append one row per input
// school. Failed resolutions still produce a row of missing-markers, so
// output row count always equals input count.
type Driver struct {
	logger  *utils.Logger
	client  *fetch.Client
	matcher *services.Matcher
	limiter *utils.RateLimiter
	sink    storage.RowAppender
}

// NewDriver wires a detail-enrichment Driver.
func NewDriver(logger *utils.Logger, client *fetch.Client, matcher *services.Matcher,
	limiter *utils.RateLimiter, sink storage.RowAppender) *Driver {
	return &Driver{
		logger:  logger,
		client:  client,
		matcher: matcher,
		limiter: limiter,
		sink:    sink,
	}
}

// Run processes every school sequentially. Per-school failures are
// logged and degrade to marker rows; only a sink failure aborts the run.
func (d *Driver) Run(roster []models.SchoolIdentity) error {
	total := len(roster)
	for i, identity := range roster {
		rec := d.scrapeOne(identity)

		if err := d.sink.Append(rec.Row()); err != nil {
			return fmt.Errorf("navigator: append row for %s: %w", identity.Name, err)
		}
		d.logger.Info("[navigator] %d/%d done: %s", i+1, total, identity.Name)

		// Polite spacing between schools to reduce throttling.
		d.limiter.Wait()
	}
	return nil
}

// scrapeOne always returns a record; on any failure the detail fields
// stay nil and only the identity columns are populated.
func (d *Driver) scrapeOne(identity models.SchoolIdentity) *models.SchoolDetailRecord {
	rec := &models.SchoolDetailRecord{
		SchoolName: identity.Name,
		City:       identity.City,
		State:      identity.State,
	}

	searchDoc, err := d.client.Get(BuildSearchURL(identity.Name))
	if err != nil {
		d.logger.Warn("[navigator] %s: search failed: %v", identity.Name, err)
		return rec
	}

	candidates := ParseSearchResults(searchDoc)
	match := d.matcher.MatchByCity(identity, candidates)
	if match == nil {
		d.logger.Warn("[navigator] %s (%s, %s): no match among %d result(s)",
			identity.Name, identity.City, identity.State, len(candidates))
		return rec
	}

	detailDoc, err := d.client.Get(match.URL)
	if err != nil {
		d.logger.Warn("[navigator] %s: detail fetch failed: %v", identity.Name, err)
		return rec
	}

	details := ExtractDetails(detailDoc)
	details.SchoolName = identity.Name
	details.City = identity.City
	details.State = identity.State
	return details
}
