package workers

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/testutil"
)

func TestWhalesWorkerLabelsBothClasses(t *testing.T) {
	warehouse := testutil.NewMockWarehouse()
	warehouse.WhaleCandidatesFunc = func(ctx context.Context, thresholdUSD float64) ([]repositories.AddressValue, error) {
		if thresholdUSD != 1_000_000 {
			t.Errorf("expected configured threshold, got %f", thresholdUSD)
		}
		return []repositories.AddressValue{
			{Address: testutil.TestAddress1, PortfolioUSDValue: 2_500_000},
		}, nil
	}
	warehouse.SmartMoneyScoresFunc = func(ctx context.Context) ([]repositories.AddressScore, error) {
		return []repositories.AddressScore{
			{Address: testutil.TestAddress2, Score: 5},
			{Address: "0x3333333333333333333333333333333333333333", Score: 2},
		}, nil
	}

	worker := NewWhalesWorker(warehouse, warehouse,
		config.AnalyticsConfig{WhaleUSDThreshold: 1_000_000, SmartMoneyScore: 3},
		config.WarehouseConfig{LabeledAddrsTable: "labeled_addresses"},
		zap.NewNop())

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.RowsWritten != 2 {
		t.Fatalf("expected 2 labels, got %d", res.RowsWritten)
	}

	appended := warehouse.AppendedRows("labeled_addresses")
	whale := appended[0].(rows.LabeledAddress)
	if whale.Label != rows.LabelWhale || whale.PortfolioUSDValue != 2_500_000 {
		t.Errorf("unexpected whale row %+v", whale)
	}
	smart := appended[1].(rows.LabeledAddress)
	if smart.Label != rows.LabelSmartMoney || smart.Score != 5 {
		t.Errorf("unexpected smart money row %+v", smart)
	}
	if smart.Address != testutil.TestAddress2 {
		t.Errorf("expected the below-threshold score filtered out, got %s", smart.Address)
	}
}
