package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"college-scraper/models"
)

// PostgresWriter mirrors confirmed school rating rows into PostgreSQL.
// It is an optional sink; the CSV outputs remain the primary contract.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS school_ratings (
			school_id         TEXT PRIMARY KEY,
			school_name       TEXT NOT NULL,
			state             TEXT NOT NULL DEFAULT '',
			overall_rating    NUMERIC(4,2),
			number_of_ratings INTEGER,
			facilities        NUMERIC(4,2),
			location          NUMERIC(4,2),
			happiness         NUMERIC(4,2),
			opportunities     NUMERIC(4,2),
			clubs             NUMERIC(4,2),
			social            NUMERIC(4,2),
			safety            NUMERIC(4,2),
			reputation        NUMERIC(4,2),
			food              NUMERIC(4,2),
			internet          NUMERIC(4,2),
			scraped_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_school_ratings_state   ON school_ratings(state);
		CREATE INDEX IF NOT EXISTS idx_school_ratings_overall ON school_ratings(overall_rating);
	`)
	return err
}

// Insert upserts a single confirmed record. Called once per resolved
// unit so database state tracks the incremental CSV output.
func (pw *PostgresWriter) Insert(rec *models.SchoolRecord) error {
	args := []interface{}{
		rec.ID, rec.Name, rec.State,
		nullFloat(rec.OverallRating), nullInt(rec.NumberOfRatings),
	}
	for _, cat := range models.Categories {
		args = append(args, nullFloat(rec.CategoryGrades[cat]))
	}

	_, err := pw.db.Exec(`
		INSERT INTO school_ratings (
			school_id, school_name, state, overall_rating, number_of_ratings,
			facilities, location, happiness, opportunities, clubs,
			social, safety, reputation, food, internet
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (school_id) DO UPDATE SET
			school_name       = EXCLUDED.school_name,
			state             = EXCLUDED.state,
			overall_rating    = EXCLUDED.overall_rating,
			number_of_ratings = EXCLUDED.number_of_ratings,
			facilities        = EXCLUDED.facilities,
			location          = EXCLUDED.location,
			happiness         = EXCLUDED.happiness,
			opportunities     = EXCLUDED.opportunities,
			clubs             = EXCLUDED.clubs,
			social            = EXCLUDED.social,
			safety            = EXCLUDED.safety,
			reputation        = EXCLUDED.reputation,
			food              = EXCLUDED.food,
			internet          = EXCLUDED.internet,
			scraped_at        = NOW()
	`, args...)
	if err != nil {
		return fmt.Errorf("postgres: insert %s: %w", rec.ID, err)
	}
	return nil
}

// FetchAll retrieves all stored records — used by the insight service.
func (pw *PostgresWriter) FetchAll() ([]*models.SchoolRecord, error) {
	rows, err := pw.db.Query(`
		SELECT school_id, school_name, state, overall_rating, number_of_ratings,
		       facilities, location, happiness, opportunities, clubs,
		       social, safety, reputation, food, internet
		FROM school_ratings
		ORDER BY school_id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var records []*models.SchoolRecord
	for rows.Next() {
		rec := &models.SchoolRecord{CategoryGrades: make(map[string]*float64)}

		var overall sql.NullFloat64
		var count sql.NullInt64
		grades := make([]sql.NullFloat64, len(models.Categories))

		dest := []interface{}{&rec.ID, &rec.Name, &rec.State, &overall, &count}
		for i := range grades {
			dest = append(dest, &grades[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}

		if overall.Valid {
			rec.OverallRating = models.Float(overall.Float64)
		}
		if count.Valid {
			rec.NumberOfRatings = models.Int(int(count.Int64))
		}
		for i, cat := range models.Categories {
			if grades[i].Valid {
				rec.CategoryGrades[cat] = models.Float(grades[i].Float64)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
