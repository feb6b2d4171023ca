package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/mlserve"
)

type honeypotScorer interface {
	HoneypotEnabled() bool
	ScoreHoneypot(ctx context.Context, contracts []mlserve.ContractInput) ([]mlserve.HoneypotResult, error)
}

// HoneypotWorker submits contract bytecode to the hosted honeypot model
// and stores the returned risk probabilities.
type HoneypotWorker struct {
	contracts repositories.ContractReader
	warehouse repositories.Appender
	model     honeypotScorer
	cfg       config.ModelConfig
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewHoneypotWorker(
	contracts repositories.ContractReader,
	warehouse repositories.Appender,
	model honeypotScorer,
	cfg config.ModelConfig,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *HoneypotWorker {
	return &HoneypotWorker{
		contracts: contracts,
		warehouse: warehouse,
		model:     model,
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
	}
}

func (w *HoneypotWorker) Name() string { return "honeypot" }

func (w *HoneypotWorker) Run(ctx context.Context) (*Result, error) {
	if !w.model.HoneypotEnabled() {
		return &Result{Message: "honeypot model endpoint not configured"}, nil
	}

	pending, err := w.contracts.OpcodesPendingMLAnalysis(ctx, w.cfg.HoneypotBatch)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending contracts: %w", err)
	}
	if len(pending) == 0 {
		return &Result{Message: "no contracts pending model analysis"}, nil
	}

	inputs := make([]mlserve.ContractInput, 0, len(pending))
	for _, c := range pending {
		inputs = append(inputs, mlserve.ContractInput{
			Address: c.ContractAddress,
			Opcodes: c.Opcodes,
		})
	}

	results, err := w.model.ScoreHoneypot(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to score contracts: %w", err)
	}

	now := time.Now().UTC()
	records := make([]any, 0, len(results))
	for _, r := range results {
		records = append(records, rows.MLAnalysis{
			ContractAddress: r.Address,
			HoneypotProb:    r.Probability,
			ModelVersion:    r.ModelVersion,
			AnalyzedAt:      now,
		})
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.MLAnalysisTable, records, 0, w.logger)
	return &Result{
		RowsWritten: written,
		ItemsFailed: failed,
		Message:     fmt.Sprintf("%d contracts scored", len(results)),
	}, appendErr
}
