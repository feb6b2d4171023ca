package workers

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/slither"
	"github.com/bimakw/market-intel/internal/testutil"
)

type stubAnalyzer struct {
	reports map[string]*slither.Report
}

func (s *stubAnalyzer) Analyze(ctx context.Context, sourceCode string) (*slither.Report, error) {
	if report, ok := s.reports[sourceCode]; ok {
		return report, nil
	}
	return nil, errors.New("slither crashed")
}

func TestStaticAnalysisWorker(t *testing.T) {
	warehouse := testutil.NewMockWarehouse()
	warehouse.SourcesPendingStaticAnalysisFunc = func(ctx context.Context, limit int) ([]repositories.ContractSource, error) {
		return []repositories.ContractSource{
			{ContractAddress: testutil.TestAddress1, SourceCode: "contract A {}"},
			{ContractAddress: testutil.TestAddress2, SourceCode: "contract Broken {}"},
		}, nil
	}
	analyzer := &stubAnalyzer{reports: map[string]*slither.Report{
		"contract A {}": {
			HighCount:     1,
			MediumCount:   2,
			LowCount:      3,
			SecurityScore: 81,
			Detectors:     []string{"reentrancy-eth"},
		},
	}}

	worker := NewStaticAnalysisWorker(warehouse, warehouse, analyzer,
		config.SlitherConfig{BatchSize: 20},
		config.WarehouseConfig{StaticAnalysisTable: "contract_static_analysis"},
		zap.NewNop())

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.RowsWritten != 1 || res.ItemsFailed != 1 {
		t.Fatalf("expected 1 written and 1 failed, got %d and %d", res.RowsWritten, res.ItemsFailed)
	}

	row := warehouse.AppendedRows("contract_static_analysis")[0].(rows.StaticAnalysis)
	if row.SecurityScore != 81 {
		t.Errorf("expected score 81, got %f", row.SecurityScore)
	}
	if row.HighSeverityCount != 1 || row.MedSeverityCount != 2 || row.LowSeverityCount != 3 {
		t.Errorf("unexpected severity counts %+v", row)
	}
}
