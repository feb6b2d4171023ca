package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
)

// run executes a parameterized query and returns its row iterator.
// Unqualified table names resolve against the configured dataset, which
// lets operator-supplied alert queries stay short.
func (c *Client) run(ctx context.Context, sql string, params ...bigquery.QueryParameter) (*bigquery.RowIterator, error) {
	q := c.bq.Query(sql)
	q.DefaultProjectID = c.cfg.ProjectID
	q.DefaultDatasetID = c.cfg.Dataset
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	return it, nil
}

// ProjectsWithContracts returns the latest snapshot of every tracked
// project carrying a contract address, minus those with a fresh on-chain
// analysis.
func (c *Client) ProjectsWithContracts(ctx context.Context, staleAfter time.Duration, limit int) ([]repositories.ProjectContract, error) {
	sql := fmt.Sprintf(`
		WITH latest AS (
			SELECT project_id, name, contract_chain, contract_address, market_cap,
				ROW_NUMBER() OVER (PARTITION BY project_id ORDER BY ingestion_timestamp DESC) AS rn
			FROM %s
			WHERE contract_address IS NOT NULL AND contract_address != ''
		),
		analyzed AS (
			SELECT project_id, MAX(analyzed_at) AS last_analyzed
			FROM %s
			GROUP BY project_id
		)
		SELECT l.project_id, l.name, l.contract_chain, l.contract_address, l.market_cap
		FROM latest l
		LEFT JOIN analyzed a ON l.project_id = a.project_id
		WHERE l.rn = 1
			AND (a.last_analyzed IS NULL
				OR a.last_analyzed < TIMESTAMP_SUB(CURRENT_TIMESTAMP(), INTERVAL @stale_hours HOUR))
		ORDER BY l.market_cap DESC
		LIMIT @row_limit`,
		c.ref(c.cfg.MarketTable), c.ref(c.cfg.OnchainTable))

	it, err := c.run(ctx, sql,
		bigquery.QueryParameter{Name: "stale_hours", Value: int64(staleAfter.Hours())},
		bigquery.QueryParameter{Name: "row_limit", Value: int64(limit)},
	)
	if err != nil {
		return nil, err
	}

	var out []repositories.ProjectContract
	for {
		var r struct {
			ProjectID string  `bigquery:"project_id"`
			Name      string  `bigquery:"name"`
			Chain     string  `bigquery:"contract_chain"`
			Address   string  `bigquery:"contract_address"`
			MarketCap float64 `bigquery:"market_cap"`
		}
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read project row: %w", err)
		}
		out = append(out, repositories.ProjectContract{
			ProjectID: r.ProjectID,
			Name:      r.Name,
			Chain:     r.Chain,
			Address:   r.Address,
			MarketCap: r.MarketCap,
		})
	}
	return out, nil
}

// TrackedAddresses returns the distinct lowercase contract addresses of
// all tracked projects.
func (c *Client) TrackedAddresses(ctx context.Context) ([]string, error) {
	sql := fmt.Sprintf(`
		SELECT DISTINCT LOWER(contract_address) AS address
		FROM %s
		WHERE contract_address IS NOT NULL AND contract_address != ''`,
		c.ref(c.cfg.MarketTable))

	it, err := c.run(ctx, sql)
	if err != nil {
		return nil, err
	}

	var out []string
	for {
		var r struct {
			Address string `bigquery:"address"`
		}
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read address row: %w", err)
		}
		out = append(out, r.Address)
	}
	return out, nil
}

// ContractsMissingCode returns tracked contracts with no fetched source.
func (c *Client) ContractsMissingCode(ctx context.Context, limit int) ([]repositories.ProjectContract, error) {
	sql := fmt.Sprintf(`
		WITH latest AS (
			SELECT project_id, name, contract_chain, contract_address, market_cap,
				ROW_NUMBER() OVER (PARTITION BY project_id ORDER BY ingestion_timestamp DESC) AS rn
			FROM %s
			WHERE contract_address IS NOT NULL AND contract_address != ''
		)
		SELECT l.project_id, l.name, l.contract_chain, l.contract_address, l.market_cap
		FROM latest l
		LEFT JOIN %s cc ON LOWER(l.contract_address) = LOWER(cc.contract_address)
		WHERE l.rn = 1 AND cc.contract_address IS NULL
		ORDER BY l.market_cap DESC
		LIMIT @row_limit`,
		c.ref(c.cfg.MarketTable), c.ref(c.cfg.ContractCodeTable))

	it, err := c.run(ctx, sql,
		bigquery.QueryParameter{Name: "row_limit", Value: int64(limit)},
	)
	if err != nil {
		return nil, err
	}

	var out []repositories.ProjectContract
	for {
		var r struct {
			ProjectID string  `bigquery:"project_id"`
			Name      string  `bigquery:"name"`
			Chain     string  `bigquery:"contract_chain"`
			Address   string  `bigquery:"contract_address"`
			MarketCap float64 `bigquery:"market_cap"`
		}
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read contract row: %w", err)
		}
		out = append(out, repositories.ProjectContract{
			ProjectID: r.ProjectID,
			Name:      r.Name,
			Chain:     r.Chain,
			Address:   r.Address,
			MarketCap: r.MarketCap,
		})
	}
	return out, nil
}

// ProjectRepos returns projects with a GitHub link and no score newer
// than staleAfter.
func (c *Client) ProjectRepos(ctx context.Context, staleAfter time.Duration, limit int) ([]repositories.ProjectRepo, error) {
	sql := fmt.Sprintf(`
		WITH latest AS (
			SELECT project_id, github_url,
				ROW_NUMBER() OVER (PARTITION BY project_id ORDER BY ingestion_timestamp DESC) AS rn
			FROM %s
			WHERE github_url IS NOT NULL AND github_url != ''
		),
		scored AS (
			SELECT project_id, MAX(analyzed_at) AS last_scored
			FROM %s
			GROUP BY project_id
		)
		SELECT l.project_id, l.github_url
		FROM latest l
		LEFT JOIN scored s ON l.project_id = s.project_id
		WHERE l.rn = 1
			AND (s.last_scored IS NULL
				OR s.last_scored < TIMESTAMP_SUB(CURRENT_TIMESTAMP(), INTERVAL @stale_hours HOUR))
		LIMIT @row_limit`,
		c.ref(c.cfg.MarketTable), c.ref(c.cfg.GitHubTable))

	it, err := c.run(ctx, sql,
		bigquery.QueryParameter{Name: "stale_hours", Value: int64(staleAfter.Hours())},
		bigquery.QueryParameter{Name: "row_limit", Value: int64(limit)},
	)
	if err != nil {
		return nil, err
	}

	var out []repositories.ProjectRepo
	for {
		var r struct {
			ProjectID string `bigquery:"project_id"`
			GitHubURL string `bigquery:"github_url"`
		}
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read repo row: %w", err)
		}
		out = append(out, repositories.ProjectRepo{ProjectID: r.ProjectID, GitHubURL: r.GitHubURL})
	}
	return out, nil
}

// UnlabeledLogs returns raw logs with no decoded counterpart, oldest
// blocks first.
func (c *Client) UnlabeledLogs(ctx context.Context, limit int) ([]rows.RawLog, error) {
	sql := fmt.Sprintf(`
		SELECT l.log_index, l.transaction_hash, l.block_number, l.address, l.data, l.topics, l.ingestion_timestamp
		FROM %s l
		LEFT JOIN %s e
			ON l.transaction_hash = e.transaction_hash AND l.log_index = e.log_index
		WHERE e.transaction_hash IS NULL
		ORDER BY l.block_number ASC
		LIMIT @row_limit`,
		c.ref(c.cfg.RawLogsTable), c.ref(c.cfg.LabeledEventsTable))

	it, err := c.run(ctx, sql,
		bigquery.QueryParameter{Name: "row_limit", Value: int64(limit)},
	)
	if err != nil {
		return nil, err
	}

	var out []rows.RawLog
	for {
		var r rows.RawLog
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read log row: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// MaxBlockNumber returns the highest ingested block, or 0 when no logs
// exist yet.
func (c *Client) MaxBlockNumber(ctx context.Context) (int64, error) {
	sql := fmt.Sprintf(`SELECT IFNULL(MAX(block_number), 0) AS max_block FROM %s`,
		c.ref(c.cfg.RawLogsTable))

	it, err := c.run(ctx, sql)
	if err != nil {
		return 0, err
	}

	var r struct {
		MaxBlock int64 `bigquery:"max_block"`
	}
	if err := it.Next(&r); err != nil {
		return 0, fmt.Errorf("failed to read max block: %w", err)
	}
	return r.MaxBlock, nil
}

// SourcesPendingStaticAnalysis returns contracts with source code and no
// static analysis row.
func (c *Client) SourcesPendingStaticAnalysis(ctx context.Context, limit int) ([]repositories.ContractSource, error) {
	return c.pendingContracts(ctx, c.cfg.StaticAnalysisTable, "source_code", limit)
}

// OpcodesPendingMLAnalysis returns contracts with opcodes and no model
// analysis row.
func (c *Client) OpcodesPendingMLAnalysis(ctx context.Context, limit int) ([]repositories.ContractSource, error) {
	return c.pendingContracts(ctx, c.cfg.MLAnalysisTable, "opcodes", limit)
}

func (c *Client) pendingContracts(ctx context.Context, doneTable, requiredCol string, limit int) ([]repositories.ContractSource, error) {
	sql := fmt.Sprintf(`
		WITH latest AS (
			SELECT contract_address, source_code, abi, opcodes,
				ROW_NUMBER() OVER (PARTITION BY contract_address ORDER BY ingestion_timestamp DESC) AS rn
			FROM %s
			WHERE %s IS NOT NULL AND %s != ''
		)
		SELECT l.contract_address, l.source_code, l.abi, l.opcodes
		FROM latest l
		LEFT JOIN %s d ON LOWER(l.contract_address) = LOWER(d.contract_address)
		WHERE l.rn = 1 AND d.contract_address IS NULL
		LIMIT @row_limit`,
		c.ref(c.cfg.ContractCodeTable), requiredCol, requiredCol, c.ref(doneTable))

	it, err := c.run(ctx, sql,
		bigquery.QueryParameter{Name: "row_limit", Value: int64(limit)},
	)
	if err != nil {
		return nil, err
	}

	var out []repositories.ContractSource
	for {
		var r struct {
			ContractAddress string `bigquery:"contract_address"`
			SourceCode      string `bigquery:"source_code"`
			ABI             string `bigquery:"abi"`
			Opcodes         string `bigquery:"opcodes"`
		}
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read pending contract row: %w", err)
		}
		out = append(out, repositories.ContractSource{
			ContractAddress: r.ContractAddress,
			SourceCode:      r.SourceCode,
			ABI:             r.ABI,
			Opcodes:         r.Opcodes,
		})
	}
	return out, nil
}

// ContractABIs returns the stored ABI JSON per contract address.
func (c *Client) ContractABIs(ctx context.Context, addresses []string) (map[string]string, error) {
	sql := fmt.Sprintf(`
		WITH latest AS (
			SELECT LOWER(contract_address) AS contract_address, abi,
				ROW_NUMBER() OVER (PARTITION BY LOWER(contract_address) ORDER BY ingestion_timestamp DESC) AS rn
			FROM %s
			WHERE abi IS NOT NULL AND abi != ''
		)
		SELECT contract_address, abi
		FROM latest
		WHERE rn = 1 AND contract_address IN UNNEST(@addresses)`,
		c.ref(c.cfg.ContractCodeTable))

	lowered := make([]string, 0, len(addresses))
	for _, a := range addresses {
		lowered = append(lowered, strings.ToLower(a))
	}

	it, err := c.run(ctx, sql,
		bigquery.QueryParameter{Name: "addresses", Value: lowered},
	)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for {
		var r struct {
			ContractAddress string `bigquery:"contract_address"`
			ABI             string `bigquery:"abi"`
		}
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read abi row: %w", err)
		}
		out[r.ContractAddress] = r.ABI
	}
	return out, nil
}

// WhaleCandidates prices every address's net transfer balance with the
// latest known token prices and returns those above thresholdUSD.
func (c *Client) WhaleCandidates(ctx context.Context, thresholdUSD float64) ([]repositories.AddressValue, error) {
	sql := fmt.Sprintf(`
		WITH prices AS (
			SELECT LOWER(contract_address) AS token_address, price_usd,
				ROW_NUMBER() OVER (PARTITION BY LOWER(contract_address) ORDER BY ingestion_timestamp DESC) AS rn
			FROM %s
			WHERE contract_address != ''
		),
		deltas AS (
			SELECT to_address AS address, LOWER(token_address) AS token_address, value AS delta FROM %s
			UNION ALL
			SELECT from_address, LOWER(token_address), -value FROM %s
		),
		balances AS (
			SELECT address, token_address, SUM(delta) AS balance
			FROM deltas
			GROUP BY address, token_address
			HAVING balance > 0
		)
		SELECT b.address, SUM(b.balance * p.price_usd) AS portfolio_usd
		FROM balances b
		JOIN prices p ON b.token_address = p.token_address AND p.rn = 1
		GROUP BY b.address
		HAVING portfolio_usd > @threshold
		ORDER BY portfolio_usd DESC`,
		c.ref(c.cfg.MarketTable), c.ref(c.cfg.TransfersTable), c.ref(c.cfg.TransfersTable))

	it, err := c.run(ctx, sql,
		bigquery.QueryParameter{Name: "threshold", Value: thresholdUSD},
	)
	if err != nil {
		return nil, err
	}

	var out []repositories.AddressValue
	for {
		var r struct {
			Address      string  `bigquery:"address"`
			PortfolioUSD float64 `bigquery:"portfolio_usd"`
		}
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read whale row: %w", err)
		}
		out = append(out, repositories.AddressValue{Address: r.Address, PortfolioUSDValue: r.PortfolioUSD})
	}
	return out, nil
}

// SmartMoneyScores scores addresses by the number of distinct tokens
// they entered during the earliest quartile of the token's transfer
// history. Addresses with fewer than three early entries are excluded.
func (c *Client) SmartMoneyScores(ctx context.Context) ([]repositories.AddressScore, error) {
	sql := fmt.Sprintf(`
		WITH ranked AS (
			SELECT to_address AS address, token_address,
				NTILE(4) OVER (PARTITION BY token_address ORDER BY block_number) AS quartile
			FROM %s
		)
		SELECT address, COUNT(DISTINCT token_address) AS score
		FROM ranked
		WHERE quartile = 1
		GROUP BY address
		HAVING score >= 3
		ORDER BY score DESC`,
		c.ref(c.cfg.TransfersTable))

	it, err := c.run(ctx, sql)
	if err != nil {
		return nil, err
	}

	var out []repositories.AddressScore
	for {
		var r struct {
			Address string `bigquery:"address"`
			Score   int64  `bigquery:"score"`
		}
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read score row: %w", err)
		}
		out = append(out, repositories.AddressScore{Address: r.Address, Score: r.Score})
	}
	return out, nil
}

// NFTTransferStats returns 24h transfer count and unique receiver count
// for one collection contract.
func (c *Client) NFTTransferStats(ctx context.Context, contract string) (int64, int64, error) {
	sql := fmt.Sprintf(`
		SELECT COUNT(*) AS transfer_count, COUNT(DISTINCT to_address) AS unique_buyers
		FROM %s
		WHERE LOWER(token_address) = @contract
			AND ingestion_timestamp > TIMESTAMP_SUB(CURRENT_TIMESTAMP(), INTERVAL 24 HOUR)`,
		c.ref(c.cfg.TransfersTable))

	it, err := c.run(ctx, sql,
		bigquery.QueryParameter{Name: "contract", Value: strings.ToLower(contract)},
	)
	if err != nil {
		return 0, 0, err
	}

	var r struct {
		TransferCount int64 `bigquery:"transfer_count"`
		UniqueBuyers  int64 `bigquery:"unique_buyers"`
	}
	if err := it.Next(&r); err != nil {
		return 0, 0, fmt.Errorf("failed to read transfer stats: %w", err)
	}
	return r.TransferCount, r.UniqueBuyers, nil
}

// BridgeEventSums returns daily per-event amount sums for the given
// bridge contracts. Amounts and token addresses come from the decoded
// event arguments.
func (c *Client) BridgeEventSums(ctx context.Context, contracts []string, since time.Time) ([]repositories.EventAmount, error) {
	sql := fmt.Sprintf(`
		SELECT
			LOWER(contract_address) AS contract_address,
			event_name,
			IFNULL(LOWER(JSON_VALUE(args, '$.token')), '') AS token_address,
			SUM(IFNULL(SAFE_CAST(JSON_VALUE(args, '$.amount') AS FLOAT64), 0)) AS amount,
			TIMESTAMP_TRUNC(ingestion_timestamp, DAY) AS day
		FROM %s
		WHERE LOWER(contract_address) IN UNNEST(@contracts)
			AND ingestion_timestamp >= @since
		GROUP BY contract_address, event_name, token_address, day
		ORDER BY day`,
		c.ref(c.cfg.LabeledEventsTable))

	it, err := c.run(ctx, sql,
		bigquery.QueryParameter{Name: "contracts", Value: lowerAll(contracts)},
		bigquery.QueryParameter{Name: "since", Value: since},
	)
	if err != nil {
		return nil, err
	}

	var out []repositories.EventAmount
	for {
		var r struct {
			ContractAddress string    `bigquery:"contract_address"`
			EventName       string    `bigquery:"event_name"`
			TokenAddress    string    `bigquery:"token_address"`
			Amount          float64   `bigquery:"amount"`
			Day             time.Time `bigquery:"day"`
		}
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read bridge event row: %w", err)
		}
		out = append(out, repositories.EventAmount{
			ContractAddress: r.ContractAddress,
			EventName:       r.EventName,
			TokenAddress:    r.TokenAddress,
			Amount:          r.Amount,
			Day:             r.Day,
		})
	}
	return out, nil
}

// ProtocolBalances returns per-token net quantities held by the given
// protocol contracts.
func (c *Client) ProtocolBalances(ctx context.Context, contracts []string) (map[string]float64, error) {
	sql := fmt.Sprintf(`
		WITH deltas AS (
			SELECT LOWER(token_address) AS token_address, value AS delta
			FROM %s WHERE LOWER(to_address) IN UNNEST(@contracts)
			UNION ALL
			SELECT LOWER(token_address), -value
			FROM %s WHERE LOWER(from_address) IN UNNEST(@contracts)
		)
		SELECT token_address, SUM(delta) AS balance
		FROM deltas
		GROUP BY token_address
		HAVING balance > 0`,
		c.ref(c.cfg.TransfersTable), c.ref(c.cfg.TransfersTable))

	it, err := c.run(ctx, sql,
		bigquery.QueryParameter{Name: "contracts", Value: lowerAll(contracts)},
	)
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64)
	for {
		var r struct {
			TokenAddress string  `bigquery:"token_address"`
			Balance      float64 `bigquery:"balance"`
		}
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read balance row: %w", err)
		}
		out[r.TokenAddress] = r.Balance
	}
	return out, nil
}

// ProtocolFees sums decoded fee arguments over the given protocol
// contracts for the last 24 hours.
func (c *Client) ProtocolFees(ctx context.Context, contracts []string) (float64, error) {
	sql := fmt.Sprintf(`
		SELECT SUM(IFNULL(SAFE_CAST(JSON_VALUE(args, '$.fee') AS FLOAT64), 0)) AS total_fees
		FROM %s
		WHERE LOWER(contract_address) IN UNNEST(@contracts)
			AND ingestion_timestamp > TIMESTAMP_SUB(CURRENT_TIMESTAMP(), INTERVAL 24 HOUR)`,
		c.ref(c.cfg.LabeledEventsTable))

	it, err := c.run(ctx, sql,
		bigquery.QueryParameter{Name: "contracts", Value: lowerAll(contracts)},
	)
	if err != nil {
		return 0, err
	}

	var r struct {
		TotalFees bigquery.NullFloat64 `bigquery:"total_fees"`
	}
	if err := it.Next(&r); err != nil {
		return 0, fmt.Errorf("failed to read fee row: %w", err)
	}
	return r.TotalFees.Float64, nil
}

// LatestPrices returns the most recent USD price per token address.
func (c *Client) LatestPrices(ctx context.Context, tokens []string) (map[string]float64, error) {
	sql := fmt.Sprintf(`
		WITH latest AS (
			SELECT LOWER(contract_address) AS token_address, price_usd,
				ROW_NUMBER() OVER (PARTITION BY LOWER(contract_address) ORDER BY ingestion_timestamp DESC) AS rn
			FROM %s
			WHERE contract_address != ''
		)
		SELECT token_address, price_usd
		FROM latest
		WHERE rn = 1 AND token_address IN UNNEST(@tokens)`,
		c.ref(c.cfg.MarketTable))

	it, err := c.run(ctx, sql,
		bigquery.QueryParameter{Name: "tokens", Value: lowerAll(tokens)},
	)
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64)
	for {
		var r struct {
			TokenAddress string  `bigquery:"token_address"`
			PriceUSD     float64 `bigquery:"price_usd"`
		}
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read price row: %w", err)
		}
		out[r.TokenAddress] = r.PriceUSD
	}
	return out, nil
}

// AssetMetrics reads the consolidated metric table and pivots it into one
// vector per asset.
func (c *Client) AssetMetrics(ctx context.Context) ([]repositories.AssetMetrics, error) {
	sql := fmt.Sprintf(`
		WITH latest AS (
			SELECT asset, metric, value,
				ROW_NUMBER() OVER (PARTITION BY asset, metric ORDER BY computed_at DESC) AS rn
			FROM %s
		)
		SELECT asset, metric, value
		FROM latest
		WHERE rn = 1
		ORDER BY asset`,
		c.ref(c.cfg.AssetMetricsTable))

	it, err := c.run(ctx, sql)
	if err != nil {
		return nil, err
	}

	byAsset := make(map[string]map[string]float64)
	var order []string
	for {
		var r struct {
			Asset  string  `bigquery:"asset"`
			Metric string  `bigquery:"metric"`
			Value  float64 `bigquery:"value"`
		}
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read metric row: %w", err)
		}
		if _, ok := byAsset[r.Asset]; !ok {
			byAsset[r.Asset] = make(map[string]float64)
			order = append(order, r.Asset)
		}
		byAsset[r.Asset][r.Metric] = r.Value
	}

	out := make([]repositories.AssetMetrics, 0, len(order))
	for _, asset := range order {
		out = append(out, repositories.AssetMetrics{Asset: asset, Metrics: byAsset[asset]})
	}
	return out, nil
}

// UnscoredPosts returns raw posts with no sentiment row, newest first.
func (c *Client) UnscoredPosts(ctx context.Context, limit int) ([]rows.SocialPost, error) {
	sql := fmt.Sprintf(`
		SELECT p.post_id, p.platform, p.author, p.text, p.posted_at, p.subreddit, p.score, p.ingestion_timestamp
		FROM %s p
		LEFT JOIN %s s ON p.post_id = s.post_id
		WHERE s.post_id IS NULL
		ORDER BY p.posted_at DESC
		LIMIT @row_limit`,
		c.ref(c.cfg.SocialTable), c.ref(c.cfg.SentimentTable))

	it, err := c.run(ctx, sql,
		bigquery.QueryParameter{Name: "row_limit", Value: int64(limit)},
	)
	if err != nil {
		return nil, err
	}

	var out []rows.SocialPost
	for {
		var r rows.SocialPost
		err := it.Next(&r)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read post row: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// LatestAssetSentiment returns the average sentiment score over the last
// 24 hours for one asset, or 0 when no observations exist.
func (c *Client) LatestAssetSentiment(ctx context.Context, asset string) (float64, error) {
	sql := fmt.Sprintf(`
		SELECT AVG(sentiment_score) AS avg_score
		FROM %s
		WHERE asset_id = @asset
			AND observed_at > TIMESTAMP_SUB(CURRENT_TIMESTAMP(), INTERVAL 24 HOUR)`,
		c.ref(c.cfg.SentimentTable))

	it, err := c.run(ctx, sql,
		bigquery.QueryParameter{Name: "asset", Value: asset},
	)
	if err != nil {
		return 0, err
	}

	var r struct {
		AvgScore bigquery.NullFloat64 `bigquery:"avg_score"`
	}
	if err := it.Next(&r); err != nil {
		return 0, fmt.Errorf("failed to read sentiment row: %w", err)
	}
	return r.AvgScore.Float64, nil
}

// QueryFloat runs an arbitrary aggregate query expected to yield a single
// numeric value.
func (c *Client) QueryFloat(ctx context.Context, query string) (float64, error) {
	it, err := c.run(ctx, query)
	if err != nil {
		return 0, err
	}

	var row []bigquery.Value
	if err := it.Next(&row); err != nil {
		return 0, fmt.Errorf("failed to read query result: %w", err)
	}
	if len(row) == 0 || row[0] == nil {
		return 0, nil
	}

	switch v := row[0].(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("query returned non-numeric value %T", row[0])
	}
}

// RowCount returns the number of rows in one destination table.
func (c *Client) RowCount(ctx context.Context, table string) (int64, error) {
	sql := fmt.Sprintf(`SELECT COUNT(*) AS n FROM %s`, c.ref(table))

	it, err := c.run(ctx, sql)
	if err != nil {
		return 0, err
	}

	var r struct {
		N int64 `bigquery:"n"`
	}
	if err := it.Next(&r); err != nil {
		return 0, fmt.Errorf("failed to read row count: %w", err)
	}
	return r.N, nil
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
