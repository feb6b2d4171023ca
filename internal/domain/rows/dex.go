package rows

import "time"

// Swap is a decoded DEX swap appended to the dex_swaps table.
type Swap struct {
	IngestionTimestamp time.Time `bigquery:"ingestion_timestamp"`
	EventTimestamp     time.Time `bigquery:"event_timestamp"`
	TransactionHash    string    `bigquery:"transaction_hash"`
	DEXSource          string    `bigquery:"dex_source"`
	Pair               string    `bigquery:"pair"`
	PriceUSD           float64   `bigquery:"price_usd"`
	VolumeUSD          float64   `bigquery:"volume_usd"`
	Token0Symbol       string    `bigquery:"token0_symbol"`
	Token1Symbol       string    `bigquery:"token1_symbol"`
	Amount0            float64   `bigquery:"amount0"`
	Amount1            float64   `bigquery:"amount1"`
}
