package rows

import "time"

// TokenTransfer is a flattened ERC-20/ERC-721 Transfer event appended to
// the eth_token_transfers table. Value is expressed in whole token units.
type TokenTransfer struct {
	TransactionHash    string    `bigquery:"transaction_hash"`
	LogIndex           int64     `bigquery:"log_index"`
	BlockNumber        int64     `bigquery:"block_number"`
	TokenAddress       string    `bigquery:"token_address"`
	FromAddress        string    `bigquery:"from_address"`
	ToAddress          string    `bigquery:"to_address"`
	Value              float64   `bigquery:"value"`
	IngestionTimestamp time.Time `bigquery:"ingestion_timestamp"`
}
