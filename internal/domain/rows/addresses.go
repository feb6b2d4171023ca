package rows

import "time"

// Address label values.
const (
	LabelWhale      = "whale"
	LabelSmartMoney = "smart_money"
)

// LabeledAddress is an address classification appended to the
// labeled_addresses table.
type LabeledAddress struct {
	Address           string    `bigquery:"address"`
	Label             string    `bigquery:"label"`
	PortfolioUSDValue float64   `bigquery:"portfolio_usd_value"`
	Score             int64     `bigquery:"score"`
	LabeledAt         time.Time `bigquery:"labeled_at"`
}
