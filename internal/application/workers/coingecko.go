package workers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/coingecko"
)

const dedupMarketDetail = "market_detail"

type marketSource interface {
	Markets(ctx context.Context, category string) ([]coingecko.MarketEntry, error)
	Detail(ctx context.Context, tokenID string) (*coingecko.TokenDetail, error)
}

// CoinGeckoWorker ingests token fundamentals for one CoinGecko category
// into the market_data table.
type CoinGeckoWorker struct {
	source    marketSource
	warehouse repositories.Appender
	dedup     repositories.DedupCache
	cfg       config.CoinGeckoConfig
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewCoinGeckoWorker(
	source marketSource,
	warehouse repositories.Appender,
	dedup repositories.DedupCache,
	cfg config.CoinGeckoConfig,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *CoinGeckoWorker {
	return &CoinGeckoWorker{
		source:    source,
		warehouse: warehouse,
		dedup:     dedup,
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
	}
}

func (w *CoinGeckoWorker) Name() string { return "coingecko" }

func (w *CoinGeckoWorker) Run(ctx context.Context) (*Result, error) {
	entries, err := w.source.Markets(ctx, w.cfg.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to list category markets: %w", err)
	}

	candidates := make([]coingecko.MarketEntry, 0, len(entries))
	for _, e := range entries {
		if e.MarketCap >= w.cfg.MinMarketCap && e.TotalVolume >= w.cfg.MinVolumeUSD {
			candidates = append(candidates, e)
		}
	}
	w.logger.Info("category listed",
		zap.String("category", w.cfg.Category),
		zap.Int("total", len(entries)),
		zap.Int("candidates", len(candidates)),
	)

	res := &Result{}
	now := time.Now().UTC()
	var pending []any
	for _, entry := range candidates {
		seen, err := w.dedup.Seen(ctx, dedupMarketDetail, entry.ID)
		if err != nil {
			w.logger.Warn("dedup lookup failed", zap.String("project", entry.ID), zap.Error(err))
		}
		if seen {
			continue
		}

		detail, err := w.source.Detail(ctx, entry.ID)
		if err != nil {
			w.logger.Warn("failed to fetch token detail", zap.String("project", entry.ID), zap.Error(err))
			res.ItemsFailed++
			continue
		}
		pending = append(pending, marketRow(detail, now))

		if err := w.dedup.MarkSeen(ctx, dedupMarketDetail, entry.ID); err != nil {
			w.logger.Warn("dedup mark failed", zap.String("project", entry.ID), zap.Error(err))
		}
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.MarketTable, pending, w.cfg.BatchSize, w.logger)
	res.RowsWritten = written
	res.ItemsFailed += failed
	res.Message = fmt.Sprintf("%d candidates, %d rows written", len(candidates), written)
	return res, appendErr
}

// marketRow flattens token detail into one warehouse row. Contract
// address prefers the ethereum deployment, then the alphabetically first
// platform that has one.
func marketRow(d *coingecko.TokenDetail, now time.Time) rows.Market {
	md := d.MarketData
	m := rows.Market{
		ProjectID:          d.ID,
		Symbol:             d.Symbol,
		Name:               d.Name,
		ImageURL:           d.Image.Large,
		PriceUSD:           coingecko.USD(md.CurrentPrice),
		MarketCap:          coingecko.USD(md.MarketCap),
		MarketCapRank:      d.MarketCapRank,
		FullyDilutedVal:    coingecko.USD(md.FullyDilutedValuation),
		Volume24h:          coingecko.USD(md.TotalVolume),
		High24h:            coingecko.USD(md.High24h),
		Low24h:             coingecko.USD(md.Low24h),
		PriceChange24h:     md.PriceChange24h,
		PriceChangePct24h:  md.PriceChangePct24h,
		MarketCapChange24h: md.MarketCapChange24h,
		MarketCapChangePct: md.MarketCapChangePct24h,
		CirculatingSupply:  md.CirculatingSupply,
		TotalSupply:        md.TotalSupply,
		MaxSupply:          md.MaxSupply,
		ATHUSD:             coingecko.USD(md.ATH),
		ATHChangePct:       coingecko.USD(md.ATHChangePct),
		ATHDate:            md.ATHDate["usd"],
		ATLUSD:             coingecko.USD(md.ATL),
		ATLChangePct:       coingecko.USD(md.ATLChangePct),
		ATLDate:            md.ATLDate["usd"],
		LastUpdated:        d.LastUpdated,
		IngestionTimestamp: now,
	}

	if addr, ok := d.Platforms["ethereum"]; ok && addr != "" {
		m.ContractChain = "ethereum"
		m.ContractAddress = addr
	} else {
		chains := make([]string, 0, len(d.Platforms))
		for chain := range d.Platforms {
			chains = append(chains, chain)
		}
		sort.Strings(chains)
		for _, chain := range chains {
			if d.Platforms[chain] != "" {
				m.ContractChain = chain
				m.ContractAddress = d.Platforms[chain]
				break
			}
		}
	}

	if len(d.Links.Homepage) > 0 {
		m.HomepageURL = d.Links.Homepage[0]
	}
	if len(d.Links.ReposURL.GitHub) > 0 {
		m.GitHubURL = d.Links.ReposURL.GitHub[0]
	}
	return m
}
