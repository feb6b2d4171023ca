package rows

import "time"

// OHLCV is a single candle appended to the cex_ohlcv table.
type OHLCV struct {
	IngestionTimestamp time.Time `bigquery:"ingestion_timestamp"`
	EventTimestamp     time.Time `bigquery:"event_timestamp"`
	TradingPair        string    `bigquery:"trading_pair"`
	ExchangeSource     string    `bigquery:"exchange_source"`
	Granularity        string    `bigquery:"granularity"`
	Open               float64   `bigquery:"open"`
	High               float64   `bigquery:"high"`
	Low                float64   `bigquery:"low"`
	Close              float64   `bigquery:"close"`
	Volume             float64   `bigquery:"volume"`
}

// OrderBookLevel is one price level of an order book snapshot appended to
// the cex_order_books table. Side is "bid" or "ask".
type OrderBookLevel struct {
	IngestionTimestamp time.Time `bigquery:"ingestion_timestamp"`
	TradingPair        string    `bigquery:"trading_pair"`
	ExchangeSource     string    `bigquery:"exchange_source"`
	Side               string    `bigquery:"side"`
	Price              float64   `bigquery:"price"`
	Quantity           float64   `bigquery:"quantity"`
}
