package repositories

import (
	"context"
	"time"

	"github.com/bimakw/market-intel/internal/domain/rows"
)

// Appender appends normalized rows to one destination table. Rows are
// append-only; the warehouse enforces no uniqueness.
type Appender interface {
	// Append inserts the given rows into table. Returns the number of
	// rows accepted by the warehouse.
	Append(ctx context.Context, table string, records []any) (int, error)
}

// ProjectContract identifies a tracked project's token contract.
type ProjectContract struct {
	ProjectID string
	Name      string
	Chain     string
	Address   string
	MarketCap float64
}

// ProjectReader reads tracked projects out of the market_data table.
type ProjectReader interface {
	// ProjectsWithContracts returns projects that have a contract address
	// and no on-chain analysis newer than staleAfter.
	ProjectsWithContracts(ctx context.Context, staleAfter time.Duration, limit int) ([]ProjectContract, error)

	// TrackedAddresses returns the distinct contract addresses of all
	// tracked projects.
	TrackedAddresses(ctx context.Context) ([]string, error)

	// ContractsMissingCode returns tracked contracts with no row in the
	// contract_code table.
	ContractsMissingCode(ctx context.Context, limit int) ([]ProjectContract, error)

	// ProjectRepos returns projects with a GitHub link and no score newer
	// than staleAfter.
	ProjectRepos(ctx context.Context, staleAfter time.Duration, limit int) ([]ProjectRepo, error)
}

// ProjectRepo identifies a tracked project's GitHub repository.
type ProjectRepo struct {
	ProjectID string
	GitHubURL string
}

// LogReader reads undecoded logs pending labeling.
type LogReader interface {
	// UnlabeledLogs returns raw logs that have no corresponding row in
	// the labeled_events table, oldest blocks first.
	UnlabeledLogs(ctx context.Context, limit int) ([]rows.RawLog, error)

	// MaxBlockNumber returns the highest block number present in the
	// logs_raw table, or 0 when the table is empty.
	MaxBlockNumber(ctx context.Context) (int64, error)
}

// ContractSource is pending input for the analysis workers.
type ContractSource struct {
	ContractAddress string
	SourceCode      string
	ABI             string
	Opcodes         string
}

// ContractReader reads contract code pending analysis.
type ContractReader interface {
	// SourcesPendingStaticAnalysis returns contracts with source code and
	// no static analysis row.
	SourcesPendingStaticAnalysis(ctx context.Context, limit int) ([]ContractSource, error)

	// OpcodesPendingMLAnalysis returns contracts with opcodes and no
	// model analysis row.
	OpcodesPendingMLAnalysis(ctx context.Context, limit int) ([]ContractSource, error)

	// ContractABIs returns the stored ABI JSON for each of the given
	// contract addresses.
	ContractABIs(ctx context.Context, addresses []string) (map[string]string, error)
}

// AddressValue is an address with its estimated portfolio value.
type AddressValue struct {
	Address           string
	PortfolioUSDValue float64
}

// AddressScore is an address with a behavioral score.
type AddressScore struct {
	Address string
	Score   int64
}

// TransferReader aggregates token transfer data.
type TransferReader interface {
	// WhaleCandidates returns addresses whose priced portfolio exceeds
	// thresholdUSD.
	WhaleCandidates(ctx context.Context, thresholdUSD float64) ([]AddressValue, error)

	// SmartMoneyScores returns per-address scores derived from realized
	// trading outcomes.
	SmartMoneyScores(ctx context.Context) ([]AddressScore, error)

	// NFTTransferStats returns 24h transfer count and unique receiving
	// addresses for one collection contract.
	NFTTransferStats(ctx context.Context, contract string) (transferCount, uniqueBuyers int64, err error)
}

// EventAmount is a bridge deposit/withdrawal aggregate for one day.
type EventAmount struct {
	ContractAddress string
	EventName       string
	TokenAddress    string
	Amount          float64
	Day             time.Time
}

// EventReader aggregates decoded events.
type EventReader interface {
	// BridgeEventSums returns daily per-event amount sums for the given
	// bridge contracts since the given time.
	BridgeEventSums(ctx context.Context, contracts []string, since time.Time) ([]EventAmount, error)

	// ProtocolBalances returns net token quantities (deposits minus
	// withdrawals) held by the given protocol contracts.
	ProtocolBalances(ctx context.Context, contracts []string) (map[string]float64, error)

	// ProtocolFees returns the sum of swap fees collected by the given
	// protocol contracts.
	ProtocolFees(ctx context.Context, contracts []string) (float64, error)
}

// PriceReader reads the latest known token prices.
type PriceReader interface {
	// LatestPrices returns the most recent USD price per token address.
	LatestPrices(ctx context.Context, tokens []string) (map[string]float64, error)
}

// AssetMetrics is one asset's raw metric vector used for ranking.
type AssetMetrics struct {
	Asset   string
	Metrics map[string]float64
}

// MetricsReader reads the consolidated asset metrics table.
type MetricsReader interface {
	AssetMetrics(ctx context.Context) ([]AssetMetrics, error)
}

// SocialReader reads raw social posts pending sentiment scoring.
type SocialReader interface {
	// UnscoredPosts returns posts with no sentiment row, newest first.
	UnscoredPosts(ctx context.Context, limit int) ([]rows.SocialPost, error)

	// LatestAssetSentiment returns the most recent average sentiment
	// score for the given asset, or 0 when none exists.
	LatestAssetSentiment(ctx context.Context, asset string) (float64, error)
}

// ScalarReader evaluates ad hoc aggregate queries. Used by the alert
// engine, whose rules carry their own SQL.
type ScalarReader interface {
	// QueryFloat runs a query expected to return a single numeric value.
	QueryFloat(ctx context.Context, query string) (float64, error)

	// RowCount returns the number of rows in a destination table.
	RowCount(ctx context.Context, table string) (int64, error)
}
