package repositories

import (
	"context"

	"github.com/bimakw/market-intel/internal/domain/entities"
)

// RunLedger records worker invocations in the local Postgres ledger.
type RunLedger interface {
	// StartRun inserts a running entry and returns its run ID.
	StartRun(ctx context.Context, worker string) (string, error)

	// FinishRun marks a run as succeeded or failed with final counters.
	FinishRun(ctx context.Context, runID, status string, rowsWritten, itemsFailed int64, message string) error

	// RecentRuns returns the most recent runs across all workers.
	RecentRuns(ctx context.Context, limit int) ([]entities.Run, error)

	// LatestRuns returns the latest run per worker.
	LatestRuns(ctx context.Context) ([]entities.Run, error)
}
