package workers

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/explorers"
	"github.com/bimakw/market-intel/internal/testutil"
)

type stubCodeSource struct {
	sources map[string]*explorers.SourceEntry
	codes   map[string]string
	errs    map[string]error
}

func (s *stubCodeSource) Supported(chain string) bool { return chain == "ethereum" }

func (s *stubCodeSource) ChainID(chain string) int64 {
	if chain == "ethereum" {
		return 1
	}
	return 0
}

func (s *stubCodeSource) ContractSource(ctx context.Context, chain, address string) (*explorers.SourceEntry, error) {
	if err := s.errs[address]; err != nil {
		return nil, err
	}
	return s.sources[address], nil
}

func (s *stubCodeSource) Bytecode(ctx context.Context, chain, address string) (string, error) {
	return s.codes[address], nil
}

func TestContractsWorkerFetchesPendingCode(t *testing.T) {
	warehouse := testutil.NewMockWarehouse()
	warehouse.ContractsMissingCodeFunc = func(ctx context.Context, limit int) ([]repositories.ProjectContract, error) {
		return []repositories.ProjectContract{
			{ProjectID: "fetch-ai", Chain: "ethereum", Address: testutil.TestAddress1},
			{ProjectID: "solana-thing", Chain: "solana", Address: "sol123"},
			{ProjectID: "broken", Chain: "ethereum", Address: testutil.TestAddress2},
		}, nil
	}
	source := &stubCodeSource{
		sources: map[string]*explorers.SourceEntry{
			testutil.TestAddress1: {
				ContractName:    "FetchToken",
				CompilerVersion: "v0.8.19",
				SourceCode:      "contract FetchToken {}",
				ABI:             "[]",
			},
		},
		codes: map[string]string{testutil.TestAddress1: "0x6080"},
		errs:  map[string]error{testutil.TestAddress2: errors.New("rate limited")},
	}

	worker := NewContractsWorker(warehouse, warehouse, source,
		config.ExplorerConfig{BatchSize: 20},
		config.WarehouseConfig{ContractCodeTable: "contract_code"},
		zap.NewNop())

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.RowsWritten != 1 {
		t.Fatalf("expected 1 row, got %d", res.RowsWritten)
	}
	if res.ItemsFailed != 1 {
		t.Errorf("expected 1 failed fetch, got %d", res.ItemsFailed)
	}

	code := warehouse.AppendedRows("contract_code")[0].(rows.ContractCode)
	if code.ChainID != 1 {
		t.Errorf("expected chain id 1, got %d", code.ChainID)
	}
	if !code.IsVerified {
		t.Error("expected the contract marked verified")
	}
	if code.Opcodes != "0x6080" {
		t.Errorf("unexpected bytecode %s", code.Opcodes)
	}
}

func TestContractsWorkerClearsUnverifiedABI(t *testing.T) {
	warehouse := testutil.NewMockWarehouse()
	warehouse.ContractsMissingCodeFunc = func(ctx context.Context, limit int) ([]repositories.ProjectContract, error) {
		return []repositories.ProjectContract{
			{ProjectID: "shady", Chain: "ethereum", Address: testutil.TestAddress1},
		}, nil
	}
	source := &stubCodeSource{
		sources: map[string]*explorers.SourceEntry{
			testutil.TestAddress1: {ABI: "Contract source code not verified"},
		},
	}

	worker := NewContractsWorker(warehouse, warehouse, source,
		config.ExplorerConfig{BatchSize: 20},
		config.WarehouseConfig{ContractCodeTable: "contract_code"},
		zap.NewNop())

	if _, err := worker.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	code := warehouse.AppendedRows("contract_code")[0].(rows.ContractCode)
	if code.ABI != "" {
		t.Errorf("expected the explorer sentinel stripped, got %q", code.ABI)
	}
	if code.IsVerified {
		t.Error("expected an unverified contract")
	}
}
