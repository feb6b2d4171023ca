package workers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/infrastructure/ethereum"
)

type decimalsSource interface {
	FetchMetadata(ctx context.Context, tokenAddress string) (*ethereum.TokenMetadata, error)
}

// LabelerWorker decodes raw logs against stored contract ABIs. Decoded
// events land in labeled_events; ERC-20 Transfer events are additionally
// flattened into eth_token_transfers with values scaled by the token's
// decimals.
type LabelerWorker struct {
	logsRead  repositories.LogReader
	contracts repositories.ContractReader
	warehouse repositories.Appender
	metadata  decimalsSource
	cfg       config.AnalyticsConfig
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewLabelerWorker(
	logsRead repositories.LogReader,
	contracts repositories.ContractReader,
	warehouse repositories.Appender,
	metadata decimalsSource,
	cfg config.AnalyticsConfig,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *LabelerWorker {
	return &LabelerWorker{
		logsRead:  logsRead,
		contracts: contracts,
		warehouse: warehouse,
		metadata:  metadata,
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
	}
}

func (w *LabelerWorker) Name() string { return "labeler" }

func (w *LabelerWorker) Run(ctx context.Context) (*Result, error) {
	logs, err := w.logsRead.UnlabeledLogs(ctx, w.cfg.EventBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlabeled logs: %w", err)
	}
	if len(logs) == 0 {
		return &Result{Message: "no logs pending labeling"}, nil
	}

	addrSet := map[string]bool{}
	var addresses []string
	for _, l := range logs {
		if !addrSet[l.Address] {
			addrSet[l.Address] = true
			addresses = append(addresses, l.Address)
		}
	}

	abis, err := w.contracts.ContractABIs(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract ABIs: %w", err)
	}

	decoder, abiErrs := ethereum.NewDecoder(abis)
	for _, abiErr := range abiErrs {
		w.logger.Warn("skipping unparseable ABI", zap.Error(abiErr))
	}

	res := &Result{}
	var events []any
	var transfers []any
	for _, l := range logs {
		if decoder.Known(l.Address) {
			ev, err := decoder.Decode(l)
			if err != nil {
				w.logger.Debug("undecodable log",
					zap.String("tx", l.TransactionHash),
					zap.Int64("log_index", l.LogIndex),
					zap.Error(err),
				)
				res.ItemsFailed++
			} else {
				events = append(events, *ev)
			}
		}

		if ethereum.IsTransfer(l) {
			transfer, err := ethereum.ParseTransfer(l, w.tokenDecimals(ctx, l.Address))
			if err != nil {
				w.logger.Debug("unparseable transfer", zap.String("tx", l.TransactionHash), zap.Error(err))
				res.ItemsFailed++
				continue
			}
			transfers = append(transfers, *transfer)
		}
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.LabeledEventsTable, events, w.cfg.EventBatchSize, w.logger)
	res.RowsWritten += written
	res.ItemsFailed += failed
	if appendErr != nil {
		return res, appendErr
	}

	written, failed, appendErr = appendBatches(ctx, w.warehouse, w.tables.TransfersTable, transfers, w.cfg.EventBatchSize, w.logger)
	res.RowsWritten += written
	res.ItemsFailed += failed
	if appendErr != nil {
		return res, appendErr
	}

	res.Message = fmt.Sprintf("%d logs, %d events, %d transfers", len(logs), len(events), len(transfers))
	return res, nil
}

func (w *LabelerWorker) tokenDecimals(ctx context.Context, tokenAddress string) uint8 {
	if w.metadata == nil {
		return 18
	}
	md, err := w.metadata.FetchMetadata(ctx, tokenAddress)
	if err != nil || md == nil {
		return 18
	}
	return md.Decimals
}
