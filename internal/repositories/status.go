package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
)

// StatusChangeRepository persists per-dataset reconciliation statuses.
type StatusChangeRepository struct {
	db *sql.DB
}

// NewStatusChangeRepository creates a new StatusChangeRepository with the given database connection
func NewStatusChangeRepository(db *sql.DB) *StatusChangeRepository {
	return &StatusChangeRepository{db: db}
}

// RecordReport stores the rows of a status report under runID in one transaction.
// Unchanged rows are skipped unless includeUnchanged is set. Returns the number of rows stored.
func (r *StatusChangeRepository) RecordReport(ctx context.Context, runID string, report []models.StatusRow, includeUnchanged bool) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO status_changes (id, run_id, identifier, status, last_modified, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	stored := 0
	for _, sr := range report {
		if sr.Status == models.StatusUnchanged && !includeUnchanged {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			shared.GenerateID(),
			runID,
			sr.Identifier,
			sr.Status,
			nullString(shared.FormatDate(sr.LastModified)),
			now,
		); err != nil {
			return 0, fmt.Errorf("failed to insert status change for %s: %w", sr.Identifier, err)
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit status changes: %w", err)
	}
	return stored, nil
}

// History returns the status changes of a dataset, newest first
func (r *StatusChangeRepository) History(ctx context.Context, identifier string) ([]models.StatusChange, error) {
	query := `
		SELECT id, run_id, identifier, status, last_modified, created_at
		FROM status_changes
		WHERE identifier = ?
		ORDER BY created_at DESC, rowid DESC
	`

	rows, err := r.db.QueryContext(ctx, query, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to query status changes: %w", err)
	}
	defer rows.Close()

	var changes []models.StatusChange
	for rows.Next() {
		var (
			change       models.StatusChange
			status       string
			lastModified sql.NullString
		)
		if err := rows.Scan(&change.ID, &change.RunID, &change.Identifier, &status, &lastModified, &change.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		change.Status = models.Status(status)
		change.LastModified = lastModified.String
		changes = append(changes, change)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return changes, nil
}
