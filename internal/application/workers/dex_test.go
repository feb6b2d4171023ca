package workers

import (
	"context"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/thegraph"
	"github.com/bimakw/market-intel/internal/testutil"
)

type stubSwapSource struct {
	swaps []thegraph.Swap
}

func (s *stubSwapSource) Swaps(ctx context.Context, start, end int64, pageSize, limit int) ([]thegraph.Swap, error) {
	return s.swaps, nil
}

func graphSwap(amount0, amount1, amountUSD string) thegraph.Swap {
	var s thegraph.Swap
	s.Transaction.ID = testutil.TestTxHash
	s.Timestamp = "1717243200"
	s.Pool.Token0.Symbol = "WETH"
	s.Pool.Token1.Symbol = "USDC"
	s.Amount0 = amount0
	s.Amount1 = amount1
	s.AmountUSD = amountUSD
	return s
}

func TestDEXWorkerNormalizesSwaps(t *testing.T) {
	source := &stubSwapSource{swaps: []thegraph.Swap{graphSwap("-2", "7000", "7000")}}
	warehouse := testutil.NewMockWarehouse()
	worker := NewDEXWorker(source, warehouse,
		config.DEXConfig{PageSize: 100, MaxSwaps: 1000},
		config.WarehouseConfig{SwapsTable: "dex_swaps"},
		zap.NewNop())

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.RowsWritten != 1 {
		t.Fatalf("expected 1 row written, got %d", res.RowsWritten)
	}

	swap := warehouse.AppendedRows("dex_swaps")[0].(rows.Swap)
	if swap.Pair != "WETH/USDC" {
		t.Errorf("unexpected pair %s", swap.Pair)
	}
	if swap.PriceUSD != 3500 {
		t.Errorf("expected unit price 3500, got %f", swap.PriceUSD)
	}
	if swap.VolumeUSD != 7000 {
		t.Errorf("expected volume 7000, got %f", swap.VolumeUSD)
	}
	if swap.EventTimestamp.Unix() != 1717243200 {
		t.Errorf("unexpected event timestamp %v", swap.EventTimestamp)
	}
}

func TestDEXWorkerCountsMalformedSwaps(t *testing.T) {
	bad := graphSwap("not-a-number", "1", "1")
	source := &stubSwapSource{swaps: []thegraph.Swap{bad, graphSwap("-1", "3500", "3500")}}
	warehouse := testutil.NewMockWarehouse()
	worker := NewDEXWorker(source, warehouse,
		config.DEXConfig{PageSize: 100, MaxSwaps: 1000},
		config.WarehouseConfig{SwapsTable: "dex_swaps"},
		zap.NewNop())

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.ItemsFailed != 1 {
		t.Errorf("expected 1 malformed swap counted, got %d", res.ItemsFailed)
	}
	if res.RowsWritten != 1 {
		t.Errorf("expected 1 row written, got %d", res.RowsWritten)
	}
}

func TestSwapRowSqrtPriceFallback(t *testing.T) {
	s := graphSwap("-2", "7000", "0")
	// sqrtPriceX96 = 2^96 encodes a ratio of exactly 1.
	s.SqrtPriceX96 = "79228162514264337593543950336"

	row, err := swapRow(s, testutil.CreateTestMarket().IngestionTimestamp)
	if err != nil {
		t.Fatalf("swapRow returned error: %v", err)
	}
	if math.Abs(row.PriceUSD-1) > 1e-9 {
		t.Errorf("expected ratio 1 from sqrtPriceX96, got %f", row.PriceUSD)
	}
	// volume = |amount0| * ratio.
	if math.Abs(row.VolumeUSD-2) > 1e-9 {
		t.Errorf("expected derived volume 2, got %f", row.VolumeUSD)
	}
}

func TestSwapRowSqrtPriceFallbackOneSided(t *testing.T) {
	s := graphSwap("0", "-3", "0")
	// ratio 4, so volume = |amount1| * 4 and price = volume / |amount1|.
	s.SqrtPriceX96 = "158456325028528675187087900672"

	row, err := swapRow(s, testutil.CreateTestMarket().IngestionTimestamp)
	if err != nil {
		t.Fatalf("swapRow returned error: %v", err)
	}
	if math.Abs(row.VolumeUSD-12) > 1e-9 {
		t.Errorf("expected derived volume 12, got %f", row.VolumeUSD)
	}
	if math.Abs(row.PriceUSD-4) > 1e-9 {
		t.Errorf("expected price 4, got %f", row.PriceUSD)
	}
}

func TestSqrtPriceToRatio(t *testing.T) {
	// 2 * 2^96 squares to 4.
	if got := sqrtPriceToRatio("158456325028528675187087900672"); math.Abs(got-4) > 1e-9 {
		t.Errorf("expected 4, got %f", got)
	}
	if got := sqrtPriceToRatio("garbage"); got != 0 {
		t.Errorf("expected 0 for unparseable input, got %f", got)
	}
}
