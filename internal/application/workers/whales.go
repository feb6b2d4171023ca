package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
)

// WhalesWorker classifies addresses from the transfer history. Whales
// hold a priced portfolio above the USD threshold; smart money entered
// early into enough tokens that later appreciated.
type WhalesWorker struct {
	transfers repositories.TransferReader
	warehouse repositories.Appender
	cfg       config.AnalyticsConfig
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewWhalesWorker(
	transfers repositories.TransferReader,
	warehouse repositories.Appender,
	cfg config.AnalyticsConfig,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *WhalesWorker {
	return &WhalesWorker{
		transfers: transfers,
		warehouse: warehouse,
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
	}
}

func (w *WhalesWorker) Name() string { return "whales" }

func (w *WhalesWorker) Run(ctx context.Context) (*Result, error) {
	whales, err := w.transfers.WhaleCandidates(ctx, w.cfg.WhaleUSDThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query whale candidates: %w", err)
	}

	scores, err := w.transfers.SmartMoneyScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query smart money scores: %w", err)
	}

	now := time.Now().UTC()
	var records []any
	for _, c := range whales {
		records = append(records, rows.LabeledAddress{
			Address:           c.Address,
			Label:             rows.LabelWhale,
			PortfolioUSDValue: c.PortfolioUSDValue,
			LabeledAt:         now,
		})
	}
	for _, s := range scores {
		if s.Score < int64(w.cfg.SmartMoneyScore) {
			continue
		}
		records = append(records, rows.LabeledAddress{
			Address:   s.Address,
			Label:     rows.LabelSmartMoney,
			Score:     s.Score,
			LabeledAt: now,
		})
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.LabeledAddrsTable, records, 0, w.logger)
	return &Result{
		RowsWritten: written,
		ItemsFailed: failed,
		Message:     fmt.Sprintf("%d whales, %d smart money", len(whales), len(records)-len(whales)),
	}, appendErr
}
