package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Candra0x6/BusinessScap-Maps/models"
)

// Lifecycle statuses owned by the store; the terminal statuses
// (done, degraded, no_results, failed) come from the batch runner.
const (
	StatusCreated    = "created"
	StatusInProgress = "in_progress"
)

// Run represents one keyword's scrape within a batch
type Run struct {
	ID           int
	BatchID      string
	Keyword      string
	Status       string // "created", "in_progress", "done", "degraded", "no_results", "failed"
	RecordsCount int
	Attempted    int
	Skipped      int
	DurationMs   int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Business represents one extracted business stored in the database
type Business struct {
	ID          int
	RunID       int
	Name        string
	Description sql.NullString
	Website     sql.NullString
	Phone       sql.NullString
	MapsLink    string
	Email       sql.NullString
	CreatedAt   time.Time
}

// CreateRun creates a run row for a keyword in a batch
func (db *DB) CreateRun(batchID, keyword string) (*Run, error) {
	var run Run
	err := db.conn.QueryRow(`
		INSERT INTO runs (batch_id, keyword, status)
		VALUES ($1, $2, $3)
		RETURNING id, batch_id, keyword, status, records_count, attempted, skipped, duration_ms, created_at, updated_at
	`, batchID, keyword, StatusCreated).Scan(
		&run.ID, &run.BatchID, &run.Keyword, &run.Status,
		&run.RecordsCount, &run.Attempted, &run.Skipped, &run.DurationMs,
		&run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// UpdateRunStatus updates the status of a run
func (db *DB) UpdateRunStatus(runID int, status string) error {
	_, err := db.conn.Exec(`
		UPDATE runs
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, status, runID)
	return err
}

// FinishRun records the final status and counters of a run
func (db *DB) FinishRun(runID int, status string, records, attempted, skipped int, duration time.Duration) error {
	_, err := db.conn.Exec(`
		UPDATE runs
		SET status = $1, records_count = $2, attempted = $3, skipped = $4,
			duration_ms = $5, updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
	`, status, records, attempted, skipped, duration.Milliseconds(), runID)
	return err
}

// SaveBusinesses stores one run's records in a single transaction
func (db *DB) SaveBusinesses(runID int, records []models.BusinessRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO businesses (run_id, name, description, website, phone, maps_link)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(runID, rec.Name,
			nullable(rec.Description), nullable(rec.Website), nullable(rec.Phone),
			rec.MapsLink)
		if err != nil {
			return fmt.Errorf("failed to insert business %q: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBusinessesMissingEmail returns stored businesses that have a
// website but no email yet, the enrichment queue.
func (db *DB) GetBusinessesMissingEmail(limit int) ([]Business, error) {
	rows, err := db.conn.Query(`
		SELECT id, run_id, name, description, website, phone, maps_link, email, created_at
		FROM businesses
		WHERE website IS NOT NULL AND email IS NULL
		ORDER BY id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var businesses []Business
	for rows.Next() {
		var b Business
		err := rows.Scan(
			&b.ID, &b.RunID, &b.Name, &b.Description, &b.Website,
			&b.Phone, &b.MapsLink, &b.Email, &b.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, b)
	}

	return businesses, rows.Err()
}

// UpdateBusinessEmail stores a harvested email for a business
func (db *DB) UpdateBusinessEmail(businessID int, email string) error {
	_, err := db.conn.Exec(`
		UPDATE businesses
		SET email = $1
		WHERE id = $2
	`, email, businessID)
	return err
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
