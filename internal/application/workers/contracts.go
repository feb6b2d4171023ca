package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/explorers"
)

type codeSource interface {
	Supported(chain string) bool
	ChainID(chain string) int64
	ContractSource(ctx context.Context, chain, address string) (*explorers.SourceEntry, error)
	Bytecode(ctx context.Context, chain, address string) (string, error)
}

// ContractsWorker fetches verified source and deployed bytecode for
// tracked contracts that have no row in contract_code yet.
type ContractsWorker struct {
	projects  repositories.ProjectReader
	warehouse repositories.Appender
	explorer  codeSource
	cfg       config.ExplorerConfig
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewContractsWorker(
	projects repositories.ProjectReader,
	warehouse repositories.Appender,
	explorer codeSource,
	cfg config.ExplorerConfig,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *ContractsWorker {
	return &ContractsWorker{
		projects:  projects,
		warehouse: warehouse,
		explorer:  explorer,
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
	}
}

func (w *ContractsWorker) Name() string { return "contracts" }

func (w *ContractsWorker) Run(ctx context.Context) (*Result, error) {
	pending, err := w.projects.ContractsMissingCode(ctx, w.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts missing code: %w", err)
	}
	if len(pending) == 0 {
		return &Result{Message: "no contracts pending code fetch"}, nil
	}

	res := &Result{}
	now := time.Now().UTC()
	var records []any
	for _, p := range pending {
		if !w.explorer.Supported(p.Chain) {
			w.logger.Debug("chain has no explorer endpoint",
				zap.String("project", p.ProjectID),
				zap.String("chain", p.Chain),
			)
			continue
		}

		src, err := w.explorer.ContractSource(ctx, p.Chain, p.Address)
		if err != nil {
			w.logger.Warn("failed to fetch contract source",
				zap.String("address", p.Address),
				zap.Error(err),
			)
			res.ItemsFailed++
			continue
		}

		bytecode, err := w.explorer.Bytecode(ctx, p.Chain, p.Address)
		if err != nil {
			w.logger.Warn("failed to fetch bytecode",
				zap.String("address", p.Address),
				zap.Error(err),
			)
		}

		abi := src.ABI
		if abi == "Contract source code not verified" {
			abi = ""
		}
		records = append(records, rows.ContractCode{
			ContractAddress:    p.Address,
			ChainID:            w.explorer.ChainID(p.Chain),
			ContractName:       src.ContractName,
			CompilerVersion:    src.CompilerVersion,
			SourceCode:         src.SourceCode,
			ABI:                abi,
			Opcodes:            bytecode,
			IsVerified:         src.SourceCode != "",
			IngestionTimestamp: now,
		})
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.ContractCodeTable, records, 0, w.logger)
	res.RowsWritten = written
	res.ItemsFailed += failed
	res.Message = fmt.Sprintf("%d contracts fetched", len(records))
	return res, appendErr
}
