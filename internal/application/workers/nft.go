package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/opensea"
)

// Trend thresholds. A collection is trending when on-chain churn
// clears the floor count and social chatter is not negative.
const (
	trendingMinTransfers = 50
	trendingMinSentiment = 0.0
)

type marketplaceStats interface {
	Stats(ctx context.Context, slug string) (*opensea.CollectionStats, error)
}

// NFTWorker combines warehouse transfer stats, marketplace floor data,
// and social sentiment into one trend row per tracked collection.
type NFTWorker struct {
	transfers   repositories.TransferReader
	social      repositories.SocialReader
	warehouse   repositories.Appender
	marketplace marketplaceStats
	collections []config.NFTCollection
	tables      config.WarehouseConfig
	logger      *zap.Logger
}

func NewNFTWorker(
	transfers repositories.TransferReader,
	social repositories.SocialReader,
	warehouse repositories.Appender,
	marketplace marketplaceStats,
	collections []config.NFTCollection,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *NFTWorker {
	return &NFTWorker{
		transfers:   transfers,
		social:      social,
		warehouse:   warehouse,
		marketplace: marketplace,
		collections: collections,
		tables:      tables,
		logger:      logger,
	}
}

func (w *NFTWorker) Name() string { return "nft" }

func (w *NFTWorker) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	now := time.Now().UTC()
	var records []any
	for _, collection := range w.collections {
		transferCount, uniqueBuyers, err := w.transfers.NFTTransferStats(ctx, collection.Contract)
		if err != nil {
			w.logger.Warn("failed to read transfer stats", zap.String("collection", collection.Name), zap.Error(err))
			res.ItemsFailed++
			continue
		}

		var floorETH, volumeETH float64
		stats, err := w.marketplace.Stats(ctx, collection.Slug)
		if err != nil {
			w.logger.Warn("failed to fetch marketplace stats", zap.String("collection", collection.Name), zap.Error(err))
		} else {
			floorETH = stats.FloorPriceETH
			volumeETH = stats.VolumeETH24h
		}

		sentiment, err := w.social.LatestAssetSentiment(ctx, collection.Name)
		if err != nil {
			w.logger.Warn("failed to read collection sentiment", zap.String("collection", collection.Name), zap.Error(err))
		}

		records = append(records, rows.NFTTrend{
			Collection:       collection.Name,
			ContractAddress:  collection.Contract,
			TransferCount24h: transferCount,
			UniqueBuyers24h:  uniqueBuyers,
			FloorPriceETH:    floorETH,
			VolumeETH24h:     volumeETH,
			SentimentScore:   sentiment,
			Trending:         transferCount >= trendingMinTransfers && sentiment >= trendingMinSentiment,
			ObservedAt:       now,
		})
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.NFTTrendsTable, records, 0, w.logger)
	res.RowsWritten = written
	res.ItemsFailed += failed
	res.Message = fmt.Sprintf("%d collections observed", len(records))
	return res, appendErr
}
