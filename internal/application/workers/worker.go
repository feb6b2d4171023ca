package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/domain/entities"
	"github.com/bimakw/market-intel/internal/domain/repositories"
)

// Result summarizes one worker invocation.
type Result struct {
	RowsWritten int64
	ItemsFailed int64
	Message     string
}

// Worker is a run-once pipeline stage. Run fetches from one external
// source, normalizes, and appends to the warehouse.
type Worker interface {
	Name() string
	Run(ctx context.Context) (*Result, error)
}

// Execute runs w once and records the invocation in the ledger. Ledger
// failures are logged but never fail the run; the warehouse write is the
// thing that matters.
func Execute(ctx context.Context, w Worker, ledger repositories.RunLedger, logger *zap.Logger) error {
	var runID string
	if ledger != nil {
		id, err := ledger.StartRun(ctx, w.Name())
		if err != nil {
			logger.Warn("failed to record run start", zap.String("worker", w.Name()), zap.Error(err))
		} else {
			runID = id
		}
	}

	start := time.Now()
	res, runErr := w.Run(ctx)
	if res == nil {
		res = &Result{}
	}

	status := entities.RunStatusSucceeded
	message := res.Message
	if runErr != nil {
		status = entities.RunStatusFailed
		message = runErr.Error()
	}

	if runID != "" {
		if err := ledger.FinishRun(ctx, runID, status, res.RowsWritten, res.ItemsFailed, message); err != nil {
			logger.Warn("failed to record run finish", zap.String("worker", w.Name()), zap.Error(err))
		}
	}

	logger.Info("worker finished",
		zap.String("worker", w.Name()),
		zap.String("status", status),
		zap.Int64("rows_written", res.RowsWritten),
		zap.Int64("items_failed", res.ItemsFailed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return runErr
}

// appendBatches writes records to table in batches. Row-level rejections
// are counted and skipped; an append error aborts the run, since nothing
// useful can be written past a broken destination.
func appendBatches(ctx context.Context, appender repositories.Appender, table string, records []any, batchSize int, logger *zap.Logger) (written, failed int64, err error) {
	if batchSize <= 0 {
		batchSize = len(records)
	}
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		accepted, appendErr := appender.Append(ctx, table, batch)
		if appendErr != nil {
			logger.Error("batch append failed",
				zap.String("table", table),
				zap.Int("batch_size", len(batch)),
				zap.Error(appendErr),
			)
			failed += int64(len(records) - start)
			return written, failed, fmt.Errorf("append to %s: %w", table, appendErr)
		}
		written += int64(accepted)
		failed += int64(len(batch) - accepted)
	}
	return written, failed, nil
}
