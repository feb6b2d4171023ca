package rows

import "time"

// Market is a token fundamentals row appended to the market_data table.
// One row per token per run; rows are immutable once written.
type Market struct {
	ProjectID            string    `bigquery:"project_id"`
	Symbol               string    `bigquery:"symbol"`
	Name                 string    `bigquery:"name"`
	ImageURL             string    `bigquery:"image_url"`
	PriceUSD             float64   `bigquery:"price_usd"`
	MarketCap            float64   `bigquery:"market_cap"`
	MarketCapRank        int64     `bigquery:"market_cap_rank"`
	FullyDilutedVal      float64   `bigquery:"fully_diluted_valuation"`
	Volume24h            float64   `bigquery:"volume_24h"`
	High24h              float64   `bigquery:"high_24h"`
	Low24h               float64   `bigquery:"low_24h"`
	PriceChange24h       float64   `bigquery:"price_change_24h"`
	PriceChangePct24h    float64   `bigquery:"price_change_pct_24h"`
	MarketCapChange24h   float64   `bigquery:"market_cap_change_24h"`
	MarketCapChangePct   float64   `bigquery:"market_cap_change_pct_24h"`
	CirculatingSupply    float64   `bigquery:"circulating_supply"`
	TotalSupply          float64   `bigquery:"total_supply"`
	MaxSupply            float64   `bigquery:"max_supply"`
	ATHUSD               float64   `bigquery:"ath_usd"`
	ATHChangePct         float64   `bigquery:"ath_change_pct"`
	ATHDate              string    `bigquery:"ath_date"`
	ATLUSD               float64   `bigquery:"atl_usd"`
	ATLChangePct         float64   `bigquery:"atl_change_pct"`
	ATLDate              string    `bigquery:"atl_date"`
	ContractChain        string    `bigquery:"contract_chain"`
	ContractAddress      string    `bigquery:"contract_address"`
	HomepageURL          string    `bigquery:"homepage_url"`
	GitHubURL            string    `bigquery:"github_url"`
	LastUpdated          string    `bigquery:"last_updated"`
	IngestionTimestamp   time.Time `bigquery:"ingestion_timestamp"`
}
