package workers

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/explorers"
)

type tvlSource interface {
	TokenTVL(ctx context.Context, chain, address string) (float64, error)
}

type transferSource interface {
	Supported(chain string) bool
	TokenTransfers(ctx context.Context, chain, contract string, pageSize int) ([]explorers.TokenTx, error)
}

// OnchainWorker computes on-chain activity metrics for tracked projects
// from explorer transfer histories and DeFiLlama TVL.
type OnchainWorker struct {
	projects  repositories.ProjectReader
	prices    repositories.PriceReader
	warehouse repositories.Appender
	explorer  transferSource
	tvl       tvlSource
	cfg       config.ExplorerConfig
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewOnchainWorker(
	projects repositories.ProjectReader,
	prices repositories.PriceReader,
	warehouse repositories.Appender,
	explorer transferSource,
	tvl tvlSource,
	cfg config.ExplorerConfig,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *OnchainWorker {
	return &OnchainWorker{
		projects:  projects,
		prices:    prices,
		warehouse: warehouse,
		explorer:  explorer,
		tvl:       tvl,
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
	}
}

func (w *OnchainWorker) Name() string { return "onchain" }

func (w *OnchainWorker) Run(ctx context.Context) (*Result, error) {
	projects, err := w.projects.ProjectsWithContracts(ctx, 24*time.Hour, w.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending projects: %w", err)
	}
	if len(projects) == 0 {
		return &Result{Message: "no projects pending analysis"}, nil
	}

	addresses := make([]string, 0, len(projects))
	for _, p := range projects {
		addresses = append(addresses, p.Address)
	}
	priceByToken, err := w.prices.LatestPrices(ctx, addresses)
	if err != nil {
		w.logger.Warn("failed to load token prices, whale counts degrade to zero", zap.Error(err))
		priceByToken = map[string]float64{}
	}

	res := &Result{}
	now := time.Now().UTC()
	var records []any
	for _, p := range projects {
		if !w.explorer.Supported(p.Chain) {
			w.logger.Debug("chain has no explorer endpoint",
				zap.String("project", p.ProjectID),
				zap.String("chain", p.Chain),
			)
			continue
		}

		tvl, err := w.tvl.TokenTVL(ctx, p.Chain, p.Address)
		if err != nil {
			w.logger.Warn("failed to fetch TVL", zap.String("project", p.ProjectID), zap.Error(err))
		}

		txs, err := w.explorer.TokenTransfers(ctx, p.Chain, p.Address, w.cfg.PageSize)
		if err != nil {
			w.logger.Warn("failed to fetch transfers", zap.String("project", p.ProjectID), zap.Error(err))
			res.ItemsFailed++
			continue
		}

		m := computeOnchainMetrics(txs, priceByToken[strings.ToLower(p.Address)], p.MarketCap, w.cfg.WhaleTxUSD, now)
		m.ProjectID = p.ProjectID
		m.AnalyzedAt = now
		m.TVL = tvl
		records = append(records, m)
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.OnchainTable, records, 0, w.logger)
	res.RowsWritten = written
	res.ItemsFailed += failed
	res.Message = fmt.Sprintf("%d projects analyzed", len(records))
	return res, appendErr
}

// computeOnchainMetrics derives activity metrics from a token's transfer
// history. priceUSD of zero disables the whale count and velocity.
func computeOnchainMetrics(txs []explorers.TokenTx, priceUSD, marketCap, whaleTxUSD float64, now time.Time) rows.OnchainMetrics {
	cutoff7d := now.Add(-7 * 24 * time.Hour).Unix()
	cutoff24h := now.Add(-24 * time.Hour).Unix()
	cutoff30d := now.Add(-30 * 24 * time.Hour).Unix()

	var (
		txCount7d    int64
		whaleCount7d int64
		wallets7d    = map[string]bool{}
		senders30d   = map[string]bool{}
		receivers30d = map[string]bool{}
		qualityTotal float64
		qualityN     int64
		volumeUSD24h float64
	)

	for _, tx := range txs {
		ts, err := strconv.ParseInt(tx.TimeStamp, 10, 64)
		if err != nil {
			continue
		}
		amount := parseTokenAmount(tx.Value, tx.TokenDecimal)
		valueUSD := amount * priceUSD

		if ts >= cutoff30d {
			if tx.From != "" {
				senders30d[strings.ToLower(tx.From)] = true
			}
			if tx.To != "" {
				receivers30d[strings.ToLower(tx.To)] = true
			}
		}
		if ts >= cutoff24h {
			volumeUSD24h += valueUSD
		}
		if ts >= cutoff7d {
			txCount7d++
			if tx.From != "" {
				wallets7d[strings.ToLower(tx.From)] = true
			}
			if tx.To != "" {
				wallets7d[strings.ToLower(tx.To)] = true
			}
			if whaleTxUSD > 0 && valueUSD > whaleTxUSD {
				whaleCount7d++
			}
			qualityTotal += functionQuality(tx.FunctionName)
			qualityN++
		}
	}

	// Pure receivers never sent the token; a high share of them means
	// holders are accumulating rather than churning.
	retention := 0.0
	if len(receivers30d) > 0 {
		pure := 0
		for addr := range receivers30d {
			if !senders30d[addr] {
				pure++
			}
		}
		retention = float64(pure) / float64(len(receivers30d)) * 100
	}

	quality := 0.0
	if qualityN > 0 {
		quality = qualityTotal / float64(qualityN)
	}

	velocity := 0.0
	if marketCap > 0 {
		velocity = volumeUSD24h / marketCap * 100
	}

	return rows.OnchainMetrics{
		TxCount7d:          txCount7d,
		ActiveWallets7d:    int64(len(wallets7d)),
		WhaleTxCount7d:     whaleCount7d,
		RetentionScore30d:  retention,
		TxQualityScore7d:   quality,
		NormalizedVelocity: velocity,
	}
}

// functionQuality weighs a transfer by the intent of the calling
// function. Staking and liquidity moves signal conviction, approvals and
// swaps signal engagement, bare transfers are baseline.
func functionQuality(functionName string) float64 {
	fn := strings.ToLower(functionName)
	switch {
	case strings.Contains(fn, "stake") || strings.Contains(fn, "liquidity"):
		return 5
	case strings.Contains(fn, "approve") || strings.Contains(fn, "swap"):
		return 2
	default:
		return 1
	}
}

func parseTokenAmount(value, decimals string) float64 {
	raw, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	dec, err := strconv.Atoi(decimals)
	if err != nil || dec < 0 || dec > 77 {
		dec = 18
	}
	return raw / math.Pow10(dec)
}
