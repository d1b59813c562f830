package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
)

// FailureRepository persists per-item harvest failures.
type FailureRepository struct {
	db *sql.DB
}

// NewFailureRepository creates a new FailureRepository with the given database connection
func NewFailureRepository(db *sql.DB) *FailureRepository {
	return &FailureRepository{db: db}
}

// Create inserts failure under runID
func (r *FailureRepository) Create(ctx context.Context, runID string, failure models.HarvestFailure) error {
	msg := ""
	if failure.Err != nil {
		msg = failure.Err.Error()
	}

	query := `
		INSERT INTO run_failures (id, run_id, identifier, label, stage, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		shared.GenerateID(),
		runID,
		failure.Identifier,
		failure.Label,
		failure.Stage,
		msg,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert failure: %w", err)
	}
	return nil
}

// ListByRun returns the failures of a run in insertion order
func (r *FailureRepository) ListByRun(ctx context.Context, runID string) ([]models.FailureEntry, error) {
	query := `
		SELECT id, run_id, identifier, label, stage, error, created_at
		FROM run_failures
		WHERE run_id = ?
		ORDER BY created_at, rowid
	`
	return r.list(ctx, query, runID)
}

// ListByIdentifier returns every journaled failure of a dataset, newest first
func (r *FailureRepository) ListByIdentifier(ctx context.Context, identifier string) ([]models.FailureEntry, error) {
	query := `
		SELECT id, run_id, identifier, label, stage, error, created_at
		FROM run_failures
		WHERE identifier = ?
		ORDER BY created_at DESC, rowid DESC
	`
	return r.list(ctx, query, identifier)
}

func (r *FailureRepository) list(ctx context.Context, query string, arg any) ([]models.FailureEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer rows.Close()

	var entries []models.FailureEntry
	for rows.Next() {
		var (
			entry models.FailureEntry
			stage string
		)
		if err := rows.Scan(&entry.ID, &entry.RunID, &entry.Identifier, &entry.Label, &stage, &entry.Error, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		entry.Stage = models.FailureStage(stage)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// RunFailures records failures for one run.
type RunFailures struct {
	repo  *FailureRepository
	runID string
}

// ForRun binds the repository to runID.
func (r *FailureRepository) ForRun(runID string) *RunFailures {
	return &RunFailures{repo: r, runID: runID}
}

// RecordFailure implements tasks.FailureRecorder.
func (f *RunFailures) RecordFailure(ctx context.Context, failure models.HarvestFailure) error {
	return f.repo.Create(ctx, f.runID, failure)
}
