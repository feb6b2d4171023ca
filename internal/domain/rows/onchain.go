package rows

import "time"

// OnchainMetrics is a per-project on-chain activity analysis appended to
// the onchain_metrics table.
type OnchainMetrics struct {
	ProjectID           string    `bigquery:"project_id"`
	AnalyzedAt          time.Time `bigquery:"analyzed_at"`
	TVL                 float64   `bigquery:"tvl"`
	TxCount7d           int64     `bigquery:"tx_count_7d"`
	ActiveWallets7d     int64     `bigquery:"active_wallets_7d"`
	WhaleTxCount7d      int64     `bigquery:"whale_tx_count_7d"`
	RetentionScore30d   float64   `bigquery:"retention_score_30d"`
	TxQualityScore7d    float64   `bigquery:"tx_quality_score_7d"`
	NormalizedVelocity  float64   `bigquery:"normalized_velocity_24h"`
}
