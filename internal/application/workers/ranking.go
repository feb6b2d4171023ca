package workers

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
)

// RankingWorker min-max normalizes the consolidated asset metrics and
// combines them into one weighted composite score per asset.
type RankingWorker struct {
	metrics   repositories.MetricsReader
	warehouse repositories.Appender
	weights   config.RankingWeights
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewRankingWorker(
	metrics repositories.MetricsReader,
	warehouse repositories.Appender,
	weights config.RankingWeights,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *RankingWorker {
	return &RankingWorker{
		metrics:   metrics,
		warehouse: warehouse,
		weights:   weights,
		tables:    tables,
		logger:    logger,
	}
}

func (w *RankingWorker) Name() string { return "ranking" }

func (w *RankingWorker) Run(ctx context.Context) (*Result, error) {
	assets, err := w.metrics.AssetMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset metrics: %w", err)
	}
	if len(assets) == 0 {
		return &Result{Message: "no asset metrics available"}, nil
	}

	scores := rankAssets(assets, w.weights.Weights)

	now := time.Now().UTC()
	records := make([]any, len(scores))
	for i, s := range scores {
		s.ComputedAt = now
		records[i] = s
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.RankingTable, records, 0, w.logger)
	return &Result{
		RowsWritten: written,
		ItemsFailed: failed,
		Message:     fmt.Sprintf("%d assets ranked", len(scores)),
	}, appendErr
}

// rankAssets computes weighted composites over min-max normalized
// metrics. Metrics missing for an asset contribute zero; a metric with
// no spread across assets normalizes to zero for everyone.
func rankAssets(assets []repositories.AssetMetrics, weights map[string]float64) []rows.RankingScore {
	mins := map[string]float64{}
	maxs := map[string]float64{}
	for _, a := range assets {
		for metric, value := range a.Metrics {
			if _, ok := mins[metric]; !ok {
				mins[metric] = value
				maxs[metric] = value
				continue
			}
			mins[metric] = math.Min(mins[metric], value)
			maxs[metric] = math.Max(maxs[metric], value)
		}
	}

	scores := make([]rows.RankingScore, 0, len(assets))
	for _, a := range assets {
		composite := 0.0
		for metric, weight := range weights {
			value, ok := a.Metrics[metric]
			if !ok {
				continue
			}
			spread := maxs[metric] - mins[metric]
			if spread == 0 {
				continue
			}
			composite += weight * (value - mins[metric]) / spread
		}
		scores = append(scores, rows.RankingScore{Asset: a.Asset, CompositeScore: composite})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].CompositeScore > scores[j].CompositeScore
	})
	for i := range scores {
		scores[i].Rank = int64(i + 1)
	}
	return scores
}
