package rows

import "time"

// RawLog is an undecoded EVM log appended to the logs_raw table.
type RawLog struct {
	LogIndex           int64     `bigquery:"log_index"`
	TransactionHash    string    `bigquery:"transaction_hash"`
	BlockNumber        int64     `bigquery:"block_number"`
	Address            string    `bigquery:"address"`
	Data               string    `bigquery:"data"`
	Topics             []string  `bigquery:"topics"`
	IngestionTimestamp time.Time `bigquery:"ingestion_timestamp"`
}

// LabeledEvent is a decoded log appended to the labeled_events table.
// Args holds the decoded event arguments serialized as JSON.
type LabeledEvent struct {
	TransactionHash    string    `bigquery:"transaction_hash"`
	LogIndex           int64     `bigquery:"log_index"`
	BlockNumber        int64     `bigquery:"block_number"`
	ContractAddress    string    `bigquery:"contract_address"`
	EventName          string    `bigquery:"event_name"`
	Args               string    `bigquery:"args"`
	IngestionTimestamp time.Time `bigquery:"ingestion_timestamp"`
}
