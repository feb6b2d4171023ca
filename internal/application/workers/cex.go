package workers

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/infrastructure/exchanges"
)

// CEXWorker snapshots candles and order books for the configured trading
// pairs across every wired exchange.
type CEXWorker struct {
	exchanges []exchanges.Exchange
	warehouse repositories.Appender
	cfg       config.CEXConfig
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewCEXWorker(
	exs []exchanges.Exchange,
	warehouse repositories.Appender,
	cfg config.CEXConfig,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *CEXWorker {
	return &CEXWorker{
		exchanges: exs,
		warehouse: warehouse,
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
	}
}

func (w *CEXWorker) Name() string { return "cex" }

func (w *CEXWorker) Run(ctx context.Context) (*Result, error) {
	var (
		mu       sync.Mutex
		candles  []any
		levels   []any
		failures int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.MaxConcurrency)

	for _, ex := range w.exchanges {
		for _, pair := range w.cfg.Pairs {
			ex, pair := ex, pair
			g.Go(func() error {
				ohlcv, err := ex.OHLCV(gctx, pair, w.cfg.Interval)
				if err != nil {
					w.logger.Warn("failed to fetch candles",
						zap.String("exchange", ex.Name()),
						zap.String("pair", pair),
						zap.Error(err),
					)
					mu.Lock()
					failures++
					mu.Unlock()
				} else {
					mu.Lock()
					for _, c := range ohlcv {
						candles = append(candles, c)
					}
					mu.Unlock()
				}

				book, err := ex.OrderBook(gctx, pair, w.cfg.OrderBookDepth)
				if err != nil {
					w.logger.Warn("failed to fetch order book",
						zap.String("exchange", ex.Name()),
						zap.String("pair", pair),
						zap.Error(err),
					)
					mu.Lock()
					failures++
					mu.Unlock()
				} else {
					mu.Lock()
					for _, l := range book {
						levels = append(levels, l)
					}
					mu.Unlock()
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{ItemsFailed: failures}
	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.OHLCVTable, candles, 0, w.logger)
	res.RowsWritten += written
	res.ItemsFailed += failed
	if appendErr != nil {
		return res, appendErr
	}

	written, failed, appendErr = appendBatches(ctx, w.warehouse, w.tables.OrderBookTable, levels, 0, w.logger)
	res.RowsWritten += written
	res.ItemsFailed += failed
	if appendErr != nil {
		return res, appendErr
	}

	res.Message = fmt.Sprintf("%d candles, %d book levels", len(candles), len(levels))
	return res, nil
}
