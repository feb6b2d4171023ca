package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bimakw/market-intel/internal/domain/entities"
	"github.com/bimakw/market-intel/internal/domain/repositories"
)

// Ensure RunLedgerRepo implements RunLedger
var _ repositories.RunLedger = (*RunLedgerRepo)(nil)

// RunLedgerRepo implements RunLedger using PostgreSQL
type RunLedgerRepo struct {
	db *sqlx.DB
}

// NewRunLedgerRepo creates a new run ledger repository
func NewRunLedgerRepo(db *sqlx.DB) *RunLedgerRepo {
	return &RunLedgerRepo{db: db}
}

// EnsureSchema creates the runs table if it does not exist
func (r *RunLedgerRepo) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY,
			worker TEXT NOT NULL,
			status TEXT NOT NULL,
			rows_written BIGINT NOT NULL DEFAULT 0,
			items_failed BIGINT NOT NULL DEFAULT 0,
			message TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_runs_worker_started ON runs (worker, started_at DESC)
	`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure runs schema: %w", err)
	}
	return nil
}

// StartRun inserts a running entry and returns its run ID
func (r *RunLedgerRepo) StartRun(ctx context.Context, worker string) (string, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO runs (id, worker, status, started_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.ExecContext(ctx, query, id, worker, entities.RunStatusRunning, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return id, nil
}

// FinishRun marks a run as succeeded or failed with final counters
func (r *RunLedgerRepo) FinishRun(ctx context.Context, runID, status string, rowsWritten, itemsFailed int64, message string) error {
	query := `
		UPDATE runs SET
			status = $2,
			rows_written = $3,
			items_failed = $4,
			message = $5,
			finished_at = $6
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, runID, status, rowsWritten, itemsFailed, message, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// RecentRuns returns the most recent runs across all workers
func (r *RunLedgerRepo) RecentRuns(ctx context.Context, limit int) ([]entities.Run, error) {
	var runs []entities.Run
	query := `SELECT * FROM runs ORDER BY started_at DESC LIMIT $1`

	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent runs: %w", err)
	}
	return runs, nil
}

// LatestRuns returns the latest run per worker
func (r *RunLedgerRepo) LatestRuns(ctx context.Context) ([]entities.Run, error) {
	var runs []entities.Run
	query := `
		SELECT DISTINCT ON (worker) *
		FROM runs
		ORDER BY worker, started_at DESC
	`

	if err := r.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}
	return runs, nil
}
