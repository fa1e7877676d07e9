package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CSVAppender writes rows to a CSV file in a fixed column order. The
// header is written once at open, and every Append flushes to disk so a
// hard crash mid-run loses at most the rows of the current batch. It is
// safe for concurrent use.
type CSVAppender struct {
	mu      sync.Mutex
	file    *os.File
	writer  *csv.Writer
	columns []string
}

// NewCSVAppender creates (or truncates) the CSV file at the given path
// and writes the header row. Intermediate directories are created
// automatically.
func NewCSVAppender(path string, columns []string) (*CSVAppender, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write(columns); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: flush header: %w", err)
	}

	return &CSVAppender{file: f, writer: w, columns: columns}, nil
}

// Append writes one schema-complete row and flushes it to disk.
func (c *CSVAppender) Append(row []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(row) != len(c.columns) {
		return fmt.Errorf("csv: row has %d cells, schema has %d columns", len(row), len(c.columns))
	}
	if err := c.writer.Write(row); err != nil {
		return fmt.Errorf("csv: write row: %w", err)
	}
	c.writer.Flush()
	return c.writer.Error()
}

// AppendBatch writes several rows with a single flush at the end. Used by
// the review scraper, which buffers small batches between flushes.
func (c *CSVAppender) AppendBatch(rows [][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, row := range rows {
		if len(row) != len(c.columns) {
			return fmt.Errorf("csv: row has %d cells, schema has %d columns", len(row), len(c.columns))
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVAppender) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		_ = c.file.Close()
		return err
	}
	return c.file.Close()
}
