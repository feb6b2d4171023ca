package workers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/infrastructure/ethereum"
)

type chainScanner interface {
	SafeHead(ctx context.Context) (int64, error)
	ScanRange(ctx context.Context, addresses []string, fromBlock, toBlock int64) (*ethereum.ScanResult, error)
}

// ChainSyncWorker pulls raw logs emitted by tracked contracts from the
// chain into the logs_raw table. Each run resumes from the highest block
// already ingested.
type ChainSyncWorker struct {
	scanner   chainScanner
	projects  repositories.ProjectReader
	logsRead  repositories.LogReader
	warehouse repositories.Appender
	cfg       config.ChainConfig
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewChainSyncWorker(
	scanner chainScanner,
	projects repositories.ProjectReader,
	logsRead repositories.LogReader,
	warehouse repositories.Appender,
	cfg config.ChainConfig,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *ChainSyncWorker {
	return &ChainSyncWorker{
		scanner:   scanner,
		projects:  projects,
		logsRead:  logsRead,
		warehouse: warehouse,
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
	}
}

func (w *ChainSyncWorker) Name() string { return "chainsync" }

func (w *ChainSyncWorker) Run(ctx context.Context) (*Result, error) {
	addresses, err := w.projects.TrackedAddresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked addresses: %w", err)
	}
	if len(addresses) == 0 {
		return &Result{Message: "no tracked addresses"}, nil
	}

	head, err := w.scanner.SafeHead(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve safe head: %w", err)
	}

	maxIngested, err := w.logsRead.MaxBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ingestion high-water mark: %w", err)
	}

	from := maxIngested + 1
	if floor := head - w.cfg.MaxBlocks + 1; from < floor {
		from = floor
	}
	if from > head {
		return &Result{Message: fmt.Sprintf("up to date at block %d", head)}, nil
	}

	w.logger.Info("scanning block range",
		zap.Int64("from", from),
		zap.Int64("to", head),
		zap.Int("addresses", len(addresses)),
	)

	result, err := w.scanner.ScanRange(ctx, addresses, from, head)
	if err != nil {
		return nil, fmt.Errorf("failed to scan range [%d, %d]: %w", from, head, err)
	}

	records := make([]any, len(result.Logs))
	for i, l := range result.Logs {
		records[i] = l
	}
	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.RawLogsTable, records, int(w.cfg.BlockBatchSize), w.logger)

	return &Result{
		RowsWritten: written,
		ItemsFailed: failed,
		Message:     fmt.Sprintf("blocks %d-%d, %d logs", result.FromBlock, result.ToBlock, len(result.Logs)),
	}, appendErr
}
