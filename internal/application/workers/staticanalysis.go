package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/slither"
)

type sourceAnalyzer interface {
	Analyze(ctx context.Context, sourceCode string) (*slither.Report, error)
}

// StaticAnalysisWorker runs slither over verified contract sources that
// have no static analysis row yet.
type StaticAnalysisWorker struct {
	contracts repositories.ContractReader
	warehouse repositories.Appender
	analyzer  sourceAnalyzer
	cfg       config.SlitherConfig
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewStaticAnalysisWorker(
	contracts repositories.ContractReader,
	warehouse repositories.Appender,
	analyzer sourceAnalyzer,
	cfg config.SlitherConfig,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *StaticAnalysisWorker {
	return &StaticAnalysisWorker{
		contracts: contracts,
		warehouse: warehouse,
		analyzer:  analyzer,
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
	}
}

func (w *StaticAnalysisWorker) Name() string { return "static_analysis" }

func (w *StaticAnalysisWorker) Run(ctx context.Context) (*Result, error) {
	pending, err := w.contracts.SourcesPendingStaticAnalysis(ctx, w.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending sources: %w", err)
	}
	if len(pending) == 0 {
		return &Result{Message: "no contracts pending static analysis"}, nil
	}

	res := &Result{}
	now := time.Now().UTC()
	var records []any
	for _, c := range pending {
		report, err := w.analyzer.Analyze(ctx, c.SourceCode)
		if err != nil {
			w.logger.Warn("analysis failed",
				zap.String("address", c.ContractAddress),
				zap.Error(err),
			)
			res.ItemsFailed++
			continue
		}
		records = append(records, rows.StaticAnalysis{
			ContractAddress:    c.ContractAddress,
			HighSeverityCount:  report.HighCount,
			MedSeverityCount:   report.MediumCount,
			LowSeverityCount:   report.LowCount,
			SecurityScore:      report.SecurityScore,
			DetectorsTriggered: report.Detectors,
			AnalyzedAt:         now,
		})
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.StaticAnalysisTable, records, 0, w.logger)
	res.RowsWritten = written
	res.ItemsFailed += failed
	res.Message = fmt.Sprintf("%d contracts analyzed", len(records))
	return res, appendErr
}
