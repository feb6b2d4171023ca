package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
)

type protocolTVLSource interface {
	ProtocolTVL(ctx context.Context, slug string) (float64, error)
}

// DeFiWorker reconciles locally computed protocol TVL against
// DeFiLlama's published figure and records 24h swap fee revenue.
type DeFiWorker struct {
	events    repositories.EventReader
	prices    repositories.PriceReader
	warehouse repositories.Appender
	llama     protocolTVLSource
	protocols []config.Protocol
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewDeFiWorker(
	events repositories.EventReader,
	prices repositories.PriceReader,
	warehouse repositories.Appender,
	llama protocolTVLSource,
	protocols []config.Protocol,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *DeFiWorker {
	return &DeFiWorker{
		events:    events,
		prices:    prices,
		warehouse: warehouse,
		llama:     llama,
		protocols: protocols,
		tables:    tables,
		logger:    logger,
	}
}

func (w *DeFiWorker) Name() string { return "defi" }

func (w *DeFiWorker) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	now := time.Now().UTC()
	var records []any
	for _, protocol := range w.protocols {
		balances, err := w.events.ProtocolBalances(ctx, protocol.Contracts)
		if err != nil {
			w.logger.Warn("failed to read protocol balances", zap.String("protocol", protocol.Name), zap.Error(err))
			res.ItemsFailed++
			continue
		}

		tokens := make([]string, 0, len(balances))
		for token := range balances {
			tokens = append(tokens, token)
		}
		priceByToken, err := w.prices.LatestPrices(ctx, tokens)
		if err != nil {
			w.logger.Warn("failed to load token prices", zap.String("protocol", protocol.Name), zap.Error(err))
			priceByToken = map[string]float64{}
		}

		localTVL := 0.0
		for token, quantity := range balances {
			localTVL += quantity * priceByToken[strings.ToLower(token)]
		}

		llamaTVL, err := w.llama.ProtocolTVL(ctx, protocol.Slug)
		if err != nil {
			w.logger.Warn("failed to fetch published TVL", zap.String("protocol", protocol.Name), zap.Error(err))
		}

		diffPct := 0.0
		if llamaTVL > 0 {
			diffPct = (localTVL - llamaTVL) / llamaTVL * 100
		}

		revenue, err := w.events.ProtocolFees(ctx, protocol.Contracts)
		if err != nil {
			w.logger.Warn("failed to read protocol fees", zap.String("protocol", protocol.Name), zap.Error(err))
		}

		records = append(records, rows.ProtocolMetrics{
			Protocol:         protocol.Name,
			LocalTVL:         localTVL,
			DeFiLlamaTVL:     llamaTVL,
			TVLDifferencePct: diffPct,
			Revenue:          revenue,
			ComputedAt:       now,
		})
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.ProtocolTable, records, 0, w.logger)
	res.RowsWritten = written
	res.ItemsFailed += failed
	res.Message = fmt.Sprintf("%d protocols reconciled", len(records))
	return res, appendErr
}
