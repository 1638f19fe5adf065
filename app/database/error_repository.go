package database

import (
	"fmt"
)

var _ ErrorRepository = (*ErrorRepo)(nil)

// ErrorRepo handles database operations for scraping error records
type ErrorRepo struct {
	db *DB
}

// NewErrorRepository creates a new error repository
func NewErrorRepository(db *DB) *ErrorRepo {
	return &ErrorRepo{db: db}
}

// AppendErrors stores error records in a single transaction.
// Records are append-only; duplicates are never collapsed.
func (r *ErrorRepo) AppendErrors(records []ErrorRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, record := range records {
		_, err := tx.Exec(`
			INSERT INTO post_errors (url, kind, time, description)
			VALUES (?, ?, ?, ?)
		`, record.URL, string(record.Kind), record.Time, record.Description)
		if err != nil {
			return fmt.Errorf("failed to insert error record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit error records: %w", err)
	}

	return nil
}

// GetErrors returns the most recent error records
func (r *ErrorRepo) GetErrors(limit int) ([]ErrorRecord, error) {
	rows, err := r.db.Query(`
		SELECT url, kind, time, description
		FROM post_errors
		ORDER BY time DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get error records: %w", err)
	}
	defer rows.Close()

	var records []ErrorRecord
	for rows.Next() {
		var record ErrorRecord
		var kind string
		if err := rows.Scan(&record.URL, &kind, &record.Time, &record.Description); err != nil {
			return nil, fmt.Errorf("failed to scan error row: %w", err)
		}
		record.Kind = FailureKind(kind)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating error rows: %w", err)
	}

	return records, nil
}

// GetErrorCount returns the total number of recorded errors
func (r *ErrorRepo) GetErrorCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM post_errors`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get error count: %w", err)
	}
	return count, nil
}
