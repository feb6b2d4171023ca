package rows

import "time"

// RankingScore is a weighted composite asset score appended to the
// asset_ranking_scores table.
type RankingScore struct {
	Asset              string    `bigquery:"asset"`
	CompositeScore     float64   `bigquery:"composite_score"`
	Rank               int64     `bigquery:"rank"`
	ComputedAt         time.Time `bigquery:"computed_at"`
}

// BridgeFlow is one day of net flow through a bridge on one chain,
// appended to the daily_bridge_flows table.
type BridgeFlow struct {
	Bridge             string    `bigquery:"bridge"`
	Chain              string    `bigquery:"chain"`
	FlowDate           time.Time `bigquery:"flow_date"`
	InflowUSD          float64   `bigquery:"inflow_usd"`
	OutflowUSD         float64   `bigquery:"outflow_usd"`
	NetFlowUSD         float64   `bigquery:"net_flow_usd"`
	IngestionTimestamp time.Time `bigquery:"ingestion_timestamp"`
}

// NFTTrend is a trend snapshot for one NFT collection appended to the
// nft_collection_trends table.
type NFTTrend struct {
	Collection         string    `bigquery:"collection"`
	ContractAddress    string    `bigquery:"contract_address"`
	TransferCount24h   int64     `bigquery:"transfer_count_24h"`
	UniqueBuyers24h    int64     `bigquery:"unique_buyers_24h"`
	FloorPriceETH      float64   `bigquery:"floor_price_eth"`
	VolumeETH24h       float64   `bigquery:"volume_eth_24h"`
	SentimentScore     float64   `bigquery:"sentiment_score"`
	Trending           bool      `bigquery:"trending"`
	ObservedAt         time.Time `bigquery:"observed_at"`
}

// ProtocolMetrics is a DeFi protocol snapshot appended to the
// protocol_metrics table.
type ProtocolMetrics struct {
	Protocol           string    `bigquery:"protocol"`
	LocalTVL           float64   `bigquery:"local_tvl"`
	DeFiLlamaTVL       float64   `bigquery:"defillama_tvl"`
	TVLDifferencePct   float64   `bigquery:"tvl_difference_pct"`
	Revenue            float64   `bigquery:"revenue"`
	ComputedAt         time.Time `bigquery:"computed_at"`
}
