package workers

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/coingecko"
	"github.com/bimakw/market-intel/internal/testutil"
)

type stubMarketSource struct {
	markets []coingecko.MarketEntry
	details map[string]*coingecko.TokenDetail
	errs    map[string]error
}

func (s *stubMarketSource) Markets(ctx context.Context, category string) ([]coingecko.MarketEntry, error) {
	return s.markets, nil
}

func (s *stubMarketSource) Detail(ctx context.Context, tokenID string) (*coingecko.TokenDetail, error) {
	if err := s.errs[tokenID]; err != nil {
		return nil, err
	}
	d, ok := s.details[tokenID]
	if !ok {
		return nil, errors.New("not found")
	}
	return d, nil
}

func tokenDetail(id string) *coingecko.TokenDetail {
	d := &coingecko.TokenDetail{
		ID:     id,
		Symbol: "tkn",
		Name:   "Token",
	}
	d.MarketData.CurrentPrice = map[string]float64{"usd": 2.5}
	d.MarketData.MarketCap = map[string]float64{"usd": 50_000_000}
	d.MarketData.TotalVolume = map[string]float64{"usd": 1_000_000}
	d.Platforms = map[string]string{
		"ethereum":            testutil.TestAddress1,
		"binance-smart-chain": testutil.TestAddress2,
	}
	d.Links.Homepage = []string{"https://token.example"}
	return d
}

func setupCoinGeckoTest(source *stubMarketSource) (*CoinGeckoWorker, *testutil.MockWarehouse, *testutil.MockDedupCache) {
	warehouse := testutil.NewMockWarehouse()
	dedup := testutil.NewMockDedupCache()
	cfg := config.CoinGeckoConfig{
		Category:     "artificial-intelligence",
		MinMarketCap: 10_000_000,
		MinVolumeUSD: 50_000,
		BatchSize:    20,
	}
	tables := config.WarehouseConfig{MarketTable: "market_data"}
	worker := NewCoinGeckoWorker(source, warehouse, dedup, cfg, tables, zap.NewNop())
	return worker, warehouse, dedup
}

func TestCoinGeckoWorkerFiltersThresholds(t *testing.T) {
	source := &stubMarketSource{
		markets: []coingecko.MarketEntry{
			{ID: "big", MarketCap: 50_000_000, TotalVolume: 1_000_000},
			{ID: "tiny-cap", MarketCap: 1_000_000, TotalVolume: 1_000_000},
			{ID: "no-volume", MarketCap: 50_000_000, TotalVolume: 10_000},
		},
		details: map[string]*coingecko.TokenDetail{"big": tokenDetail("big")},
	}
	worker, warehouse, _ := setupCoinGeckoTest(source)

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.RowsWritten != 1 {
		t.Errorf("expected 1 row written, got %d", res.RowsWritten)
	}

	appended := warehouse.AppendedRows("market_data")
	if len(appended) != 1 {
		t.Fatalf("expected 1 appended row, got %d", len(appended))
	}
	market := appended[0].(rows.Market)
	if market.ProjectID != "big" {
		t.Errorf("expected project big, got %s", market.ProjectID)
	}
	if market.ContractChain != "ethereum" {
		t.Errorf("expected the ethereum deployment preferred, got %s", market.ContractChain)
	}
	if market.ContractAddress != testutil.TestAddress1 {
		t.Errorf("unexpected contract address %s", market.ContractAddress)
	}
	if market.PriceUSD != 2.5 {
		t.Errorf("expected price 2.5, got %f", market.PriceUSD)
	}
}

func TestCoinGeckoWorkerSkipsSeenProjects(t *testing.T) {
	source := &stubMarketSource{
		markets: []coingecko.MarketEntry{
			{ID: "cached", MarketCap: 50_000_000, TotalVolume: 1_000_000},
		},
		details: map[string]*coingecko.TokenDetail{"cached": tokenDetail("cached")},
	}
	worker, warehouse, dedup := setupCoinGeckoTest(source)

	if err := dedup.MarkSeen(context.Background(), dedupMarketDetail, "cached"); err != nil {
		t.Fatalf("MarkSeen returned error: %v", err)
	}

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.RowsWritten != 0 {
		t.Errorf("expected 0 rows written, got %d", res.RowsWritten)
	}
	if len(warehouse.AppendedRows("market_data")) != 0 {
		t.Error("expected no appends for a seen project")
	}
}

func TestCoinGeckoWorkerCountsDetailFailures(t *testing.T) {
	source := &stubMarketSource{
		markets: []coingecko.MarketEntry{
			{ID: "good", MarketCap: 50_000_000, TotalVolume: 1_000_000},
			{ID: "broken", MarketCap: 50_000_000, TotalVolume: 1_000_000},
		},
		details: map[string]*coingecko.TokenDetail{"good": tokenDetail("good")},
		errs:    map[string]error{"broken": errors.New("rate limited")},
	}
	worker, _, _ := setupCoinGeckoTest(source)

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.RowsWritten != 1 {
		t.Errorf("expected 1 row written, got %d", res.RowsWritten)
	}
	if res.ItemsFailed != 1 {
		t.Errorf("expected 1 item failed, got %d", res.ItemsFailed)
	}
}

func TestMarketRowFallsBackToFirstPlatform(t *testing.T) {
	d := tokenDetail("alt")
	d.Platforms = map[string]string{
		"polygon-pos":         testutil.TestAddress2,
		"binance-smart-chain": testutil.TestAddress1,
	}

	m := marketRow(d, testutil.CreateTestMarket().IngestionTimestamp)
	if m.ContractChain != "binance-smart-chain" {
		t.Errorf("expected alphabetically first platform, got %s", m.ContractChain)
	}
}
