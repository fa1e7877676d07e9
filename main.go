package main

import (
	"fmt"
	"os"
	"time"

	"college-scraper/config"
	"college-scraper/models"
	"college-scraper/scraper/fetch"
	"college-scraper/scraper/navigator"
	"college-scraper/scraper/rmp"
	"college-scraper/services"
	"college-scraper/storage"
	"college-scraper/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	mode := "directed"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	logger.Info("=== College Scraping System starting (mode: %s) ===", mode)

	var err error
	switch mode {
	case "sweep":
		err = runSweep(cfg, logger)
	case "directed":
		err = runDirected(cfg, logger)
	case "details":
		err = runDetails(cfg, logger)
	default:
		fmt.Fprintf(os.Stderr, "usage: %s [sweep|directed|details]\n", os.Args[0])
		os.Exit(2)
	}

	if err != nil {
		logger.Error("%s run failed: %v", mode, err)
		os.Exit(1)
	}
	logger.Info("=== Done ===")
}

// runSweep crawls the dense school-ID range of the ratings site and
// writes school_ratings.csv plus the school_ids.csv identity mapping.
func runSweep(cfg *config.Config, logger *utils.Logger) error {
	ratings, err := storage.NewCSVAppender(cfg.RatingsCSVPath, models.RatingsColumns)
	if err != nil {
		return err
	}
	defer ratings.Close()

	ids, err := storage.NewCSVAppender(cfg.SchoolIDsCSVPath, models.SchoolIDColumns)
	if err != nil {
		return err
	}
	defer ids.Close()

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	if err := rmp.NewSweep(cfg, logger, ratings, ids, store).Run(); err != nil {
		return err
	}

	printInsights(logger, store)
	return nil
}

// runDirected resolves each roster school on the ratings site and
// writes its ratings row plus every review it can paginate through.
func runDirected(cfg *config.Config, logger *utils.Logger) error {
	roster, err := services.LoadRoster(cfg.InputCSVPath)
	if err != nil {
		return err
	}
	logger.Info("Loaded %d schools from %s", len(roster), cfg.InputCSVPath)

	ratings, err := storage.NewCSVAppender(cfg.RatingsCSVPath, models.RatingsColumns)
	if err != nil {
		return err
	}
	defer ratings.Close()

	reviews, err := storage.NewCSVAppender(cfg.ReviewsCSVPath, models.ReviewColumns)
	if err != nil {
		return err
	}
	defer reviews.Close()

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	matcher := services.NewMatcher(logger)
	if err := rmp.NewDirected(cfg, logger, matcher, ratings, reviews, store).Run(roster); err != nil {
		return err
	}

	printInsights(logger, store)
	return nil
}

// runDetails enriches each roster school with numeric columns from the
// static college-navigator site, one output row per input school.
func runDetails(cfg *config.Config, logger *utils.Logger) error {
	roster, err := services.LoadRoster(cfg.InputCSVPath)
	if err != nil {
		return err
	}
	logger.Info("Loaded %d schools from %s", len(roster), cfg.InputCSVPath)

	numeric, err := storage.NewCSVAppender(cfg.NumericCSVPath, models.DetailColumns)
	if err != nil {
		return err
	}
	defer numeric.Close()

	client := fetch.NewClient(logger, fetch.Options{
		MaxAttempts: cfg.FetchRetries,
		BaseBackoff: time.Duration(cfg.FetchBackoffMs) * time.Millisecond,
		Timeout:     time.Duration(cfg.FetchTimeout) * time.Second,
	})

	limiter := utils.NewRateLimiter(
		time.Duration(cfg.DetailDelayMinMs)*time.Millisecond,
		time.Duration(cfg.DetailDelayMaxMs-cfg.DetailDelayMinMs)*time.Millisecond,
	)

	matcher := services.NewMatcher(logger)
	return navigator.NewDriver(logger, client, matcher, limiter, numeric).Run(roster)
}

// openStore connects the optional Postgres mirror. Failure to connect is
// downgraded to a warning; the CSV outputs are the primary contract.
func openStore(cfg *config.Config, logger *utils.Logger) storage.RatingStore {
	if !cfg.EnablePostgres {
		return nil
	}
	store, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Warn("Postgres unavailable, continuing with CSV only: %v", err)
		return nil
	}
	return store
}

func printInsights(logger *utils.Logger, store storage.RatingStore) {
	if store == nil {
		return
	}
	records, err := store.FetchAll()
	if err != nil {
		logger.Error("Failed to fetch records for insights: %v", err)
		return
	}
	svc := services.NewInsightService(logger)
	svc.Print(svc.Generate(records))
}
