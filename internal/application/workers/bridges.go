package workers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
)

// BridgesWorker aggregates decoded bridge events into daily USD inflow
// and outflow per tracked bridge.
type BridgesWorker struct {
	events    repositories.EventReader
	prices    repositories.PriceReader
	warehouse repositories.Appender
	bridges   []config.Bridge
	cfg       config.AnalyticsConfig
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewBridgesWorker(
	events repositories.EventReader,
	prices repositories.PriceReader,
	warehouse repositories.Appender,
	bridges []config.Bridge,
	cfg config.AnalyticsConfig,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *BridgesWorker {
	return &BridgesWorker{
		events:    events,
		prices:    prices,
		warehouse: warehouse,
		bridges:   bridges,
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
	}
}

func (w *BridgesWorker) Name() string { return "bridges" }

func (w *BridgesWorker) Run(ctx context.Context) (*Result, error) {
	since := time.Now().UTC().Add(-time.Duration(w.cfg.LookbackDays) * 24 * time.Hour)

	res := &Result{}
	now := time.Now().UTC()
	var records []any
	for _, bridge := range w.bridges {
		sums, err := w.events.BridgeEventSums(ctx, bridge.Contracts, since)
		if err != nil {
			w.logger.Warn("failed to aggregate bridge events", zap.String("bridge", bridge.Name), zap.Error(err))
			res.ItemsFailed++
			continue
		}
		if len(sums) == 0 {
			continue
		}

		tokenSet := map[string]bool{}
		var tokens []string
		for _, s := range sums {
			token := strings.ToLower(s.TokenAddress)
			if token != "" && !tokenSet[token] {
				tokenSet[token] = true
				tokens = append(tokens, token)
			}
		}
		priceByToken, err := w.prices.LatestPrices(ctx, tokens)
		if err != nil {
			w.logger.Warn("failed to load token prices", zap.String("bridge", bridge.Name), zap.Error(err))
			priceByToken = map[string]float64{}
		}

		for _, flow := range bridgeFlows(bridge, sums, priceByToken, now) {
			records = append(records, flow)
		}
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.BridgeFlowsTable, records, 0, w.logger)
	res.RowsWritten = written
	res.ItemsFailed += failed
	res.Message = fmt.Sprintf("%d bridges, %d daily flows", len(w.bridges), written)
	return res, appendErr
}

// bridgeFlows buckets event sums into daily USD inflow and outflow rows.
// Events not named in the bridge's deposit or withdraw lists are ignored.
func bridgeFlows(bridge config.Bridge, sums []repositories.EventAmount, priceByToken map[string]float64, now time.Time) []rows.BridgeFlow {
	deposits := map[string]bool{}
	for _, name := range bridge.DepositEvents {
		deposits[strings.ToLower(name)] = true
	}
	withdraws := map[string]bool{}
	for _, name := range bridge.WithdrawEvents {
		withdraws[strings.ToLower(name)] = true
	}

	type daily struct{ in, out float64 }
	byDay := map[time.Time]*daily{}
	for _, s := range sums {
		event := strings.ToLower(s.EventName)
		isDeposit := deposits[event]
		isWithdraw := withdraws[event]
		if !isDeposit && !isWithdraw {
			continue
		}
		usd := s.Amount * priceByToken[strings.ToLower(s.TokenAddress)]
		day := s.Day.UTC().Truncate(24 * time.Hour)
		d, ok := byDay[day]
		if !ok {
			d = &daily{}
			byDay[day] = d
		}
		if isDeposit {
			d.in += usd
		} else {
			d.out += usd
		}
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	flows := make([]rows.BridgeFlow, 0, len(days))
	for _, day := range days {
		d := byDay[day]
		flows = append(flows, rows.BridgeFlow{
			Bridge:             bridge.Name,
			Chain:              bridge.Chain,
			FlowDate:           day,
			InflowUSD:          d.in,
			OutflowUSD:         d.out,
			NetFlowUSD:         d.in - d.out,
			IngestionTimestamp: now,
		})
	}
	return flows
}
