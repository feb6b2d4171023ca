package workers

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/thegraph"
)

type swapSource interface {
	Swaps(ctx context.Context, start, end int64, pageSize, limit int) ([]thegraph.Swap, error)
}

// DEXWorker ingests recent Uniswap v3 swaps from The Graph into the
// dex_swaps table.
type DEXWorker struct {
	source    swapSource
	warehouse repositories.Appender
	cfg       config.DEXConfig
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewDEXWorker(
	source swapSource,
	warehouse repositories.Appender,
	cfg config.DEXConfig,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *DEXWorker {
	return &DEXWorker{
		source:    source,
		warehouse: warehouse,
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
	}
}

func (w *DEXWorker) Name() string { return "dex" }

func (w *DEXWorker) Run(ctx context.Context) (*Result, error) {
	end := time.Now().UTC()
	start := end.Add(-w.cfg.Lookback)

	swaps, err := w.source.Swaps(ctx, start.Unix(), end.Unix(), w.cfg.PageSize, w.cfg.MaxSwaps)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch swaps: %w", err)
	}

	res := &Result{}
	now := time.Now().UTC()
	records := make([]any, 0, len(swaps))
	for _, s := range swaps {
		row, err := swapRow(s, now)
		if err != nil {
			w.logger.Warn("skipping malformed swap", zap.String("tx", s.Transaction.ID), zap.Error(err))
			res.ItemsFailed++
			continue
		}
		records = append(records, row)
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.SwapsTable, records, w.cfg.PageSize, w.logger)
	res.RowsWritten = written
	res.ItemsFailed += failed
	res.Message = fmt.Sprintf("%d swaps in window", len(swaps))
	return res, appendErr
}

// swapRow normalizes one subgraph swap. The USD unit price is derived
// from amountUSD over the token0 delta; when the subgraph reports no USD
// amount the pool's sqrtPriceX96 is used instead.
func swapRow(s thegraph.Swap, now time.Time) (rows.Swap, error) {
	ts, err := strconv.ParseInt(s.Timestamp, 10, 64)
	if err != nil {
		return rows.Swap{}, fmt.Errorf("invalid timestamp %q: %w", s.Timestamp, err)
	}
	amount0, err := strconv.ParseFloat(s.Amount0, 64)
	if err != nil {
		return rows.Swap{}, fmt.Errorf("invalid amount0 %q: %w", s.Amount0, err)
	}
	amount1, err := strconv.ParseFloat(s.Amount1, 64)
	if err != nil {
		return rows.Swap{}, fmt.Errorf("invalid amount1 %q: %w", s.Amount1, err)
	}
	amountUSD, err := strconv.ParseFloat(s.AmountUSD, 64)
	if err != nil {
		return rows.Swap{}, fmt.Errorf("invalid amountUSD %q: %w", s.AmountUSD, err)
	}

	// When the subgraph reports no USD amount, reconstruct it from the
	// pool price: volume = |token0 delta| * price, or the token1 delta
	// for one-sided swaps.
	if amountUSD <= 0 && s.SqrtPriceX96 != "" {
		ratio := sqrtPriceToRatio(s.SqrtPriceX96)
		if amount0 != 0 {
			amountUSD = math.Abs(amount0) * ratio
		} else {
			amountUSD = math.Abs(amount1) * ratio
		}
	}

	price := 0.0
	switch {
	case amount0 != 0:
		price = amountUSD / math.Abs(amount0)
	case amount1 != 0:
		price = amountUSD / math.Abs(amount1)
	}

	return rows.Swap{
		IngestionTimestamp: now,
		EventTimestamp:     time.Unix(ts, 0).UTC(),
		TransactionHash:    s.Transaction.ID,
		DEXSource:          "uniswap_v3",
		Pair:               s.Pool.Token0.Symbol + "/" + s.Pool.Token1.Symbol,
		PriceUSD:           price,
		VolumeUSD:          amountUSD,
		Token0Symbol:       s.Pool.Token0.Symbol,
		Token1Symbol:       s.Pool.Token1.Symbol,
		Amount0:            amount0,
		Amount1:            amount1,
	}, nil
}

// sqrtPriceToRatio converts a Uniswap v3 Q64.96 square root price into
// the token1 per token0 ratio: (sqrtPriceX96 / 2^96)^2.
func sqrtPriceToRatio(sqrtPriceX96 string) float64 {
	sqrtPrice, ok := new(big.Float).SetString(sqrtPriceX96)
	if !ok {
		return 0
	}
	q96 := new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 96))
	ratio := new(big.Float).Quo(sqrtPrice, q96)
	ratio.Mul(ratio, ratio)
	out, _ := ratio.Float64()
	return out
}
