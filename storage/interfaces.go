package storage

import "college-scraper/models"

// RowAppender is the append-only sink contract the crawl drivers write
// through. Rows must match the sink's fixed column set.
type RowAppender interface {
	Append(row []string) error
	AppendBatch(rows [][]string) error
	Close() error
}

// RatingStore is the interface for database-backed persistence of
// confirmed school rating snapshots.
type RatingStore interface {
	Insert(rec *models.SchoolRecord) error
	FetchAll() ([]*models.SchoolRecord, error)
	Close() error
}
