package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bimakw/market-intel/internal/domain/entities"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
)

// MockCall records a single method invocation on a mock.
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockWarehouse is an in-memory stand-in for the BigQuery client. Every
// reader method can be overridden through its Func field; Append collects
// rows per table so tests can inspect what a worker wrote.
type MockWarehouse struct {
	mu       sync.RWMutex
	Calls    []MockCall
	Appended map[string][]any

	AppendFunc                       func(ctx context.Context, table string, records []any) (int, error)
	ProjectsWithContractsFunc        func(ctx context.Context, staleAfter time.Duration, limit int) ([]repositories.ProjectContract, error)
	TrackedAddressesFunc             func(ctx context.Context) ([]string, error)
	ContractsMissingCodeFunc         func(ctx context.Context, limit int) ([]repositories.ProjectContract, error)
	ProjectReposFunc                 func(ctx context.Context, staleAfter time.Duration, limit int) ([]repositories.ProjectRepo, error)
	UnlabeledLogsFunc                func(ctx context.Context, limit int) ([]rows.RawLog, error)
	MaxBlockNumberFunc               func(ctx context.Context) (int64, error)
	SourcesPendingStaticAnalysisFunc func(ctx context.Context, limit int) ([]repositories.ContractSource, error)
	OpcodesPendingMLAnalysisFunc     func(ctx context.Context, limit int) ([]repositories.ContractSource, error)
	ContractABIsFunc                 func(ctx context.Context, addresses []string) (map[string]string, error)
	WhaleCandidatesFunc              func(ctx context.Context, thresholdUSD float64) ([]repositories.AddressValue, error)
	SmartMoneyScoresFunc             func(ctx context.Context) ([]repositories.AddressScore, error)
	NFTTransferStatsFunc             func(ctx context.Context, contract string) (int64, int64, error)
	BridgeEventSumsFunc              func(ctx context.Context, contracts []string, since time.Time) ([]repositories.EventAmount, error)
	ProtocolBalancesFunc             func(ctx context.Context, contracts []string) (map[string]float64, error)
	ProtocolFeesFunc                 func(ctx context.Context, contracts []string) (float64, error)
	LatestPricesFunc                 func(ctx context.Context, tokens []string) (map[string]float64, error)
	AssetMetricsFunc                 func(ctx context.Context) ([]repositories.AssetMetrics, error)
	UnscoredPostsFunc                func(ctx context.Context, limit int) ([]rows.SocialPost, error)
	LatestAssetSentimentFunc         func(ctx context.Context, asset string) (float64, error)
	QueryFloatFunc                   func(ctx context.Context, query string) (float64, error)
	RowCountFunc                     func(ctx context.Context, table string) (int64, error)
}

// NewMockWarehouse creates a mock warehouse with empty storage.
func NewMockWarehouse() *MockWarehouse {
	return &MockWarehouse{Appended: make(map[string][]any)}
}

func (m *MockWarehouse) recordCall(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// AppendedRows returns the rows collected for one table.
func (m *MockWarehouse) AppendedRows(table string) []any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Appended[table]
}

func (m *MockWarehouse) Append(ctx context.Context, table string, records []any) (int, error) {
	m.recordCall("Append", table, records)
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, table, records)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Appended[table] = append(m.Appended[table], records...)
	return len(records), nil
}

func (m *MockWarehouse) ProjectsWithContracts(ctx context.Context, staleAfter time.Duration, limit int) ([]repositories.ProjectContract, error) {
	m.recordCall("ProjectsWithContracts", staleAfter, limit)
	if m.ProjectsWithContractsFunc != nil {
		return m.ProjectsWithContractsFunc(ctx, staleAfter, limit)
	}
	return nil, nil
}

func (m *MockWarehouse) TrackedAddresses(ctx context.Context) ([]string, error) {
	m.recordCall("TrackedAddresses")
	if m.TrackedAddressesFunc != nil {
		return m.TrackedAddressesFunc(ctx)
	}
	return nil, nil
}

func (m *MockWarehouse) ContractsMissingCode(ctx context.Context, limit int) ([]repositories.ProjectContract, error) {
	m.recordCall("ContractsMissingCode", limit)
	if m.ContractsMissingCodeFunc != nil {
		return m.ContractsMissingCodeFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockWarehouse) ProjectRepos(ctx context.Context, staleAfter time.Duration, limit int) ([]repositories.ProjectRepo, error) {
	m.recordCall("ProjectRepos", staleAfter, limit)
	if m.ProjectReposFunc != nil {
		return m.ProjectReposFunc(ctx, staleAfter, limit)
	}
	return nil, nil
}

func (m *MockWarehouse) UnlabeledLogs(ctx context.Context, limit int) ([]rows.RawLog, error) {
	m.recordCall("UnlabeledLogs", limit)
	if m.UnlabeledLogsFunc != nil {
		return m.UnlabeledLogsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockWarehouse) MaxBlockNumber(ctx context.Context) (int64, error) {
	m.recordCall("MaxBlockNumber")
	if m.MaxBlockNumberFunc != nil {
		return m.MaxBlockNumberFunc(ctx)
	}
	return 0, nil
}

func (m *MockWarehouse) SourcesPendingStaticAnalysis(ctx context.Context, limit int) ([]repositories.ContractSource, error) {
	m.recordCall("SourcesPendingStaticAnalysis", limit)
	if m.SourcesPendingStaticAnalysisFunc != nil {
		return m.SourcesPendingStaticAnalysisFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockWarehouse) OpcodesPendingMLAnalysis(ctx context.Context, limit int) ([]repositories.ContractSource, error) {
	m.recordCall("OpcodesPendingMLAnalysis", limit)
	if m.OpcodesPendingMLAnalysisFunc != nil {
		return m.OpcodesPendingMLAnalysisFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockWarehouse) ContractABIs(ctx context.Context, addresses []string) (map[string]string, error) {
	m.recordCall("ContractABIs", addresses)
	if m.ContractABIsFunc != nil {
		return m.ContractABIsFunc(ctx, addresses)
	}
	return map[string]string{}, nil
}

func (m *MockWarehouse) WhaleCandidates(ctx context.Context, thresholdUSD float64) ([]repositories.AddressValue, error) {
	m.recordCall("WhaleCandidates", thresholdUSD)
	if m.WhaleCandidatesFunc != nil {
		return m.WhaleCandidatesFunc(ctx, thresholdUSD)
	}
	return nil, nil
}

func (m *MockWarehouse) SmartMoneyScores(ctx context.Context) ([]repositories.AddressScore, error) {
	m.recordCall("SmartMoneyScores")
	if m.SmartMoneyScoresFunc != nil {
		return m.SmartMoneyScoresFunc(ctx)
	}
	return nil, nil
}

func (m *MockWarehouse) NFTTransferStats(ctx context.Context, contract string) (int64, int64, error) {
	m.recordCall("NFTTransferStats", contract)
	if m.NFTTransferStatsFunc != nil {
		return m.NFTTransferStatsFunc(ctx, contract)
	}
	return 0, 0, nil
}

func (m *MockWarehouse) BridgeEventSums(ctx context.Context, contracts []string, since time.Time) ([]repositories.EventAmount, error) {
	m.recordCall("BridgeEventSums", contracts, since)
	if m.BridgeEventSumsFunc != nil {
		return m.BridgeEventSumsFunc(ctx, contracts, since)
	}
	return nil, nil
}

func (m *MockWarehouse) ProtocolBalances(ctx context.Context, contracts []string) (map[string]float64, error) {
	m.recordCall("ProtocolBalances", contracts)
	if m.ProtocolBalancesFunc != nil {
		return m.ProtocolBalancesFunc(ctx, contracts)
	}
	return map[string]float64{}, nil
}

func (m *MockWarehouse) ProtocolFees(ctx context.Context, contracts []string) (float64, error) {
	m.recordCall("ProtocolFees", contracts)
	if m.ProtocolFeesFunc != nil {
		return m.ProtocolFeesFunc(ctx, contracts)
	}
	return 0, nil
}

func (m *MockWarehouse) LatestPrices(ctx context.Context, tokens []string) (map[string]float64, error) {
	m.recordCall("LatestPrices", tokens)
	if m.LatestPricesFunc != nil {
		return m.LatestPricesFunc(ctx, tokens)
	}
	return map[string]float64{}, nil
}

func (m *MockWarehouse) AssetMetrics(ctx context.Context) ([]repositories.AssetMetrics, error) {
	m.recordCall("AssetMetrics")
	if m.AssetMetricsFunc != nil {
		return m.AssetMetricsFunc(ctx)
	}
	return nil, nil
}

func (m *MockWarehouse) UnscoredPosts(ctx context.Context, limit int) ([]rows.SocialPost, error) {
	m.recordCall("UnscoredPosts", limit)
	if m.UnscoredPostsFunc != nil {
		return m.UnscoredPostsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *MockWarehouse) LatestAssetSentiment(ctx context.Context, asset string) (float64, error) {
	m.recordCall("LatestAssetSentiment", asset)
	if m.LatestAssetSentimentFunc != nil {
		return m.LatestAssetSentimentFunc(ctx, asset)
	}
	return 0, nil
}

func (m *MockWarehouse) QueryFloat(ctx context.Context, query string) (float64, error) {
	m.recordCall("QueryFloat", query)
	if m.QueryFloatFunc != nil {
		return m.QueryFloatFunc(ctx, query)
	}
	return 0, nil
}

func (m *MockWarehouse) RowCount(ctx context.Context, table string) (int64, error) {
	m.recordCall("RowCount", table)
	if m.RowCountFunc != nil {
		return m.RowCountFunc(ctx, table)
	}
	return 0, nil
}

// MockRunLedger is an in-memory run ledger.
type MockRunLedger struct {
	mu    sync.RWMutex
	Calls []MockCall
	Runs  map[string]*entities.Run

	StartRunFunc   func(ctx context.Context, worker string) (string, error)
	FinishRunFunc  func(ctx context.Context, runID, status string, rowsWritten, itemsFailed int64, message string) error
	RecentRunsFunc func(ctx context.Context, limit int) ([]entities.Run, error)
	LatestRunsFunc func(ctx context.Context) ([]entities.Run, error)
}

func NewMockRunLedger() *MockRunLedger {
	return &MockRunLedger{Runs: make(map[string]*entities.Run)}
}

func (m *MockRunLedger) recordCall(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

func (m *MockRunLedger) StartRun(ctx context.Context, worker string) (string, error) {
	m.recordCall("StartRun", worker)
	if m.StartRunFunc != nil {
		return m.StartRunFunc(ctx, worker)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.Runs[id] = &entities.Run{
		ID:        id,
		Worker:    worker,
		Status:    entities.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	return id, nil
}

func (m *MockRunLedger) FinishRun(ctx context.Context, runID, status string, rowsWritten, itemsFailed int64, message string) error {
	m.recordCall("FinishRun", runID, status, rowsWritten, itemsFailed, message)
	if m.FinishRunFunc != nil {
		return m.FinishRunFunc(ctx, runID, status, rowsWritten, itemsFailed, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.Runs[runID]
	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}
	now := time.Now().UTC()
	run.Status = status
	run.RowsWritten = rowsWritten
	run.ItemsFailed = itemsFailed
	run.Message = message
	run.FinishedAt = &now
	return nil
}

func (m *MockRunLedger) RecentRuns(ctx context.Context, limit int) ([]entities.Run, error) {
	m.recordCall("RecentRuns", limit)
	if m.RecentRunsFunc != nil {
		return m.RecentRunsFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []entities.Run
	for _, run := range m.Runs {
		out = append(out, *run)
	}
	return out, nil
}

func (m *MockRunLedger) LatestRuns(ctx context.Context) ([]entities.Run, error) {
	m.recordCall("LatestRuns")
	if m.LatestRunsFunc != nil {
		return m.LatestRunsFunc(ctx)
	}
	return m.RecentRuns(ctx, 0)
}

// MockDedupCache is an in-memory dedup cache.
type MockDedupCache struct {
	mu    sync.RWMutex
	Calls []MockCall
	keys  map[string]bool

	SeenFunc     func(ctx context.Context, namespace, key string) (bool, error)
	MarkSeenFunc func(ctx context.Context, namespace, key string) error
}

func NewMockDedupCache() *MockDedupCache {
	return &MockDedupCache{keys: make(map[string]bool)}
}

func (m *MockDedupCache) recordCall(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

func (m *MockDedupCache) Seen(ctx context.Context, namespace, key string) (bool, error) {
	m.recordCall("Seen", namespace, key)
	if m.SeenFunc != nil {
		return m.SeenFunc(ctx, namespace, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.keys[namespace+":"+key], nil
}

func (m *MockDedupCache) MarkSeen(ctx context.Context, namespace, key string) error {
	m.recordCall("MarkSeen", namespace, key)
	if m.MarkSeenFunc != nil {
		return m.MarkSeenFunc(ctx, namespace, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[namespace+":"+key] = true
	return nil
}

// MockNotifier records sent alert messages.
type MockNotifier struct {
	mu       sync.RWMutex
	Messages []string

	SendFunc func(ctx context.Context, message string) error
}

func (m *MockNotifier) Send(ctx context.Context, message string) error {
	m.mu.Lock()
	m.Messages = append(m.Messages, message)
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(ctx, message)
	}
	return nil
}

// Sent returns the messages delivered so far.
func (m *MockNotifier) Sent() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.Messages...)
}

// MockHealthChecker simulates a backing service health probe.
type MockHealthChecker struct {
	healthy bool

	HealthCheckFunc func(ctx context.Context) error
}

// NewMockHealthChecker creates a health checker with a fixed outcome.
func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	return &MockHealthChecker{healthy: healthy}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	if m.HealthCheckFunc != nil {
		return m.HealthCheckFunc(ctx)
	}
	if !m.healthy {
		return fmt.Errorf("service unavailable")
	}
	return nil
}

// Interface conformance checks.
var (
	_ repositories.Appender       = (*MockWarehouse)(nil)
	_ repositories.ProjectReader  = (*MockWarehouse)(nil)
	_ repositories.LogReader      = (*MockWarehouse)(nil)
	_ repositories.ContractReader = (*MockWarehouse)(nil)
	_ repositories.TransferReader = (*MockWarehouse)(nil)
	_ repositories.EventReader    = (*MockWarehouse)(nil)
	_ repositories.PriceReader    = (*MockWarehouse)(nil)
	_ repositories.MetricsReader  = (*MockWarehouse)(nil)
	_ repositories.SocialReader   = (*MockWarehouse)(nil)
	_ repositories.ScalarReader   = (*MockWarehouse)(nil)
	_ repositories.RunLedger      = (*MockRunLedger)(nil)
	_ repositories.DedupCache     = (*MockDedupCache)(nil)
)
