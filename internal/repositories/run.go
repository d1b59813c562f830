package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
)

// RunRepository persists [models.Run] rows.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Start inserts a running run for mode with generated ID and sequence
func (r *RunRepository) Start(ctx context.Context, mode string) (*models.Run, error) {
	if mode == "" {
		return nil, fmt.Errorf("%w: run mode is required", shared.ErrInvalidInput)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}

	run := &models.Run{
		ID:        shared.GenerateID(),
		Sequence:  sequence,
		Mode:      mode,
		Status:    models.RunRunning,
		StartedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO runs (id, sequence, mode, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query, run.ID, run.Sequence, run.Mode, run.Status, run.StartedAt); err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	return run, nil
}

// Finish stores the final status and counters of run and stamps its finish time
func (r *RunRepository) Finish(ctx context.Context, run *models.Run) error {
	now := time.Now().UTC()
	run.FinishedAt = &now

	query := `
		UPDATE runs
		SET status = ?, items_total = ?, items_harvested = ?, items_failed = ?,
			items_skipped = ?, error_message = ?, finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		run.Status,
		run.ItemsTotal,
		run.ItemsHarvested,
		run.ItemsFailed,
		run.ItemsSkipped,
		nullString(run.ErrorMessage),
		now,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID)
	}

	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(ctx context.Context, id string) (*models.Run, error) {
	query := `
		SELECT id, sequence, mode, status, items_total, items_harvested, items_failed,
			items_skipped, error_message, started_at, finished_at
		FROM runs
		WHERE id = ?
	`

	return scanRun(r.db.QueryRowContext(ctx, query, id))
}

// GetBySequence retrieves a run by its sequence number
func (r *RunRepository) GetBySequence(ctx context.Context, sequence int) (*models.Run, error) {
	query := `
		SELECT id, sequence, mode, status, items_total, items_harvested, items_failed,
			items_skipped, error_message, started_at, finished_at
		FROM runs
		WHERE sequence = ?
	`

	return scanRun(r.db.QueryRowContext(ctx, query, sequence))
}

// List returns the most recent runs, newest first. A non-positive limit returns every run.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*models.Run, error) {
	query := `
		SELECT id, sequence, mode, status, items_total, items_harvested, items_failed,
			items_skipped, error_message, started_at, finished_at
		FROM runs
		ORDER BY sequence DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a single row into a [models.Run]
func scanRun(row scanner) (*models.Run, error) {
	var (
		run          models.Run
		status       string
		errorMessage sql.NullString
		finishedAt   sql.NullTime
	)

	err := row.Scan(
		&run.ID, &run.Sequence, &run.Mode, &status, &run.ItemsTotal, &run.ItemsHarvested,
		&run.ItemsFailed, &run.ItemsSkipped, &errorMessage, &run.StartedAt, &finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Status = models.RunStatus(status)
	if errorMessage.Valid {
		run.ErrorMessage = errorMessage.String
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	return &run, nil
}
