package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Sweep mode: dense ID-range crawl of the ratings site.
	StartID             int
	MaxID               int
	SweepWorkers        int
	InvalidStreakLimit  int
	StopOnInvalidStreak bool

	// Directed mode: crawl driven by the local college list.
	InputCSVPath    string
	ReviewBatchSize int

	// Retry budgets. FetchRetries covers plain HTTP GETs; MaxRetries
	// covers browser sub-operations (stale lookups, "show more" clicks).
	MaxRetries     int
	RetryDelayMs   int
	FetchRetries   int
	FetchBackoffMs int

	// Timeouts (seconds).
	PageLoadTimeout int
	ElementWait     int
	SearchWait      int
	FetchTimeout    int

	// Inter-request spacing for the static-site detail crawl.
	DetailDelayMinMs int
	DetailDelayMaxMs int

	// Output paths.
	RatingsCSVPath   string
	SchoolIDsCSVPath string
	ReviewsCSVPath   string
	NumericCSVPath   string

	// Optional Postgres mirror of confirmed ratings rows.
	EnablePostgres   bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ChromeBin string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		StartID:             getEnvInt("SWEEP_START_ID", 1),
		MaxID:               getEnvInt("SWEEP_MAX_ID", 50000),
		SweepWorkers:        getEnvInt("SWEEP_WORKERS", 15),
		InvalidStreakLimit:  getEnvInt("INVALID_STREAK_LIMIT", 10000),
		StopOnInvalidStreak: getEnvBool("STOP_ON_INVALID_STREAK", false),

		InputCSVPath:    getEnv("INPUT_CSV_PATH", "colleges.csv"),
		ReviewBatchSize: getEnvInt("REVIEW_BATCH_SIZE", 10),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		RetryDelayMs:   getEnvInt("RETRY_DELAY_MS", 1000),
		FetchRetries:   getEnvInt("FETCH_RETRIES", 5),
		FetchBackoffMs: getEnvInt("FETCH_BACKOFF_MS", 2000),

		PageLoadTimeout: getEnvInt("PAGE_LOAD_TIMEOUT_SEC", 30),
		ElementWait:     getEnvInt("ELEMENT_WAIT_SEC", 5),
		SearchWait:      getEnvInt("SEARCH_WAIT_SEC", 15),
		FetchTimeout:    getEnvInt("FETCH_TIMEOUT_SEC", 60),

		DetailDelayMinMs: getEnvInt("DETAIL_DELAY_MIN_MS", 300),
		DetailDelayMaxMs: getEnvInt("DETAIL_DELAY_MAX_MS", 1000),

		RatingsCSVPath:   getEnv("RATINGS_CSV_PATH", "./output/school_ratings.csv"),
		SchoolIDsCSVPath: getEnv("SCHOOL_IDS_CSV_PATH", "./output/school_ids.csv"),
		ReviewsCSVPath:   getEnv("REVIEWS_CSV_PATH", "./output/school_reviews.csv"),
		NumericCSVPath:   getEnv("NUMERIC_CSV_PATH", "./output/school_numeric.csv"),

		EnablePostgres:   getEnvBool("ENABLE_POSTGRES", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "college_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ChromeBin: getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
