package workers

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/opensea"
	"github.com/bimakw/market-intel/internal/testutil"
)

type stubMarketplace struct {
	stats map[string]*opensea.CollectionStats
}

func (s *stubMarketplace) Stats(ctx context.Context, slug string) (*opensea.CollectionStats, error) {
	if stats, ok := s.stats[slug]; ok {
		return stats, nil
	}
	return nil, errors.New("collection not found")
}

func TestNFTWorkerFlagsTrendingCollections(t *testing.T) {
	warehouse := testutil.NewMockWarehouse()
	warehouse.NFTTransferStatsFunc = func(ctx context.Context, contract string) (int64, int64, error) {
		if contract == testutil.TestAddress1 {
			return 120, 45, nil
		}
		return 10, 4, nil
	}
	warehouse.LatestAssetSentimentFunc = func(ctx context.Context, asset string) (float64, error) {
		if asset == "pudgy-penguins" {
			return 0.4, nil
		}
		return -0.2, nil
	}
	marketplace := &stubMarketplace{stats: map[string]*opensea.CollectionStats{
		"pudgypenguins": {FloorPriceETH: 9.5, VolumeETH24h: 310},
	}}

	worker := NewNFTWorker(warehouse, warehouse, warehouse, marketplace,
		[]config.NFTCollection{
			{Name: "pudgy-penguins", Slug: "pudgypenguins", Contract: testutil.TestAddress1},
			{Name: "quiet-collection", Slug: "quiet", Contract: testutil.TestAddress2},
		},
		config.WarehouseConfig{NFTTrendsTable: "nft_trends"},
		zap.NewNop())

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.RowsWritten != 2 {
		t.Fatalf("expected 2 rows, got %d", res.RowsWritten)
	}

	appended := warehouse.AppendedRows("nft_trends")
	trendy := appended[0].(rows.NFTTrend)
	if !trendy.Trending {
		t.Error("expected active collection to be trending")
	}
	if trendy.FloorPriceETH != 9.5 || trendy.VolumeETH24h != 310 {
		t.Errorf("unexpected marketplace fields %+v", trendy)
	}
	if trendy.TransferCount24h != 120 || trendy.UniqueBuyers24h != 45 {
		t.Errorf("unexpected transfer stats %+v", trendy)
	}

	quiet := appended[1].(rows.NFTTrend)
	if quiet.Trending {
		t.Error("low-activity negative-sentiment collection should not be trending")
	}
	if quiet.FloorPriceETH != 0 {
		t.Errorf("missing marketplace stats should leave floor at zero, got %f", quiet.FloorPriceETH)
	}
}

func TestNFTWorkerCountsTransferStatFailures(t *testing.T) {
	warehouse := testutil.NewMockWarehouse()
	warehouse.NFTTransferStatsFunc = func(ctx context.Context, contract string) (int64, int64, error) {
		return 0, 0, errors.New("query timeout")
	}

	worker := NewNFTWorker(warehouse, warehouse, warehouse, &stubMarketplace{},
		[]config.NFTCollection{{Name: "pudgy-penguins", Slug: "pudgypenguins", Contract: testutil.TestAddress1}},
		config.WarehouseConfig{NFTTrendsTable: "nft_trends"},
		zap.NewNop())

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.RowsWritten != 0 || res.ItemsFailed != 1 {
		t.Errorf("expected 0 written 1 failed, got %d/%d", res.RowsWritten, res.ItemsFailed)
	}
}
