package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

// MarketEntry is one row of the /coins/markets listing.
type MarketEntry struct {
	ID          string  `json:"id"`
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	MarketCap   float64 `json:"market_cap"`
	TotalVolume float64 `json:"total_volume"`
}

// TokenDetail is the subset of /coins/{id} the pipeline extracts.
type TokenDetail struct {
	ID            string            `json:"id"`
	Symbol        string            `json:"symbol"`
	Name          string            `json:"name"`
	MarketCapRank int64             `json:"market_cap_rank"`
	LastUpdated   string            `json:"last_updated"`
	Platforms     map[string]string `json:"platforms"`
	Image         struct {
		Large string `json:"large"`
	} `json:"image"`
	Links struct {
		Homepage []string `json:"homepage"`
		ReposURL struct {
			GitHub []string `json:"github"`
		} `json:"repos_url"`
	} `json:"links"`
	MarketData MarketData `json:"market_data"`
}

// MarketData holds per-currency market figures keyed by currency code.
type MarketData struct {
	CurrentPrice           map[string]float64 `json:"current_price"`
	MarketCap              map[string]float64 `json:"market_cap"`
	FullyDilutedValuation  map[string]float64 `json:"fully_diluted_valuation"`
	TotalVolume            map[string]float64 `json:"total_volume"`
	High24h                map[string]float64 `json:"high_24h"`
	Low24h                 map[string]float64 `json:"low_24h"`
	PriceChange24h         float64            `json:"price_change_24h"`
	PriceChangePct24h      float64            `json:"price_change_percentage_24h"`
	MarketCapChange24h     float64            `json:"market_cap_change_24h"`
	MarketCapChangePct24h  float64            `json:"market_cap_change_percentage_24h"`
	CirculatingSupply      float64            `json:"circulating_supply"`
	TotalSupply            float64            `json:"total_supply"`
	MaxSupply              float64            `json:"max_supply"`
	ATH                    map[string]float64 `json:"ath"`
	ATHChangePct           map[string]float64 `json:"ath_change_percentage"`
	ATHDate                map[string]string  `json:"ath_date"`
	ATL                    map[string]float64 `json:"atl"`
	ATLChangePct           map[string]float64 `json:"atl_change_percentage"`
	ATLDate                map[string]string  `json:"atl_date"`
}

// Client talks to the CoinGecko v3 REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpx.Client
}

// NewClient creates a CoinGecko client.
func NewClient(cfg config.CoinGeckoConfig, http *httpx.Client) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    http,
	}
}

// Markets lists tokens of one category ordered by market cap.
func (c *Client) Markets(ctx context.Context, category string) ([]MarketEntry, error) {
	params := url.Values{
		"vs_currency": {"usd"},
		"order":       {"market_cap_desc"},
		"per_page":    {strconv.Itoa(250)},
		"page":        {"1"},
		"sparkline":   {"false"},
	}
	if category != "" {
		params.Set("category", category)
	}

	var out []MarketEntry
	if err := c.http.GetJSON(ctx, c.baseURL+"/coins/markets", params, c.headers(), &out); err != nil {
		return nil, fmt.Errorf("coingecko markets: %w", err)
	}
	return out, nil
}

// Detail fetches full token details for one listing ID.
func (c *Client) Detail(ctx context.Context, tokenID string) (*TokenDetail, error) {
	params := url.Values{
		"localization":   {"false"},
		"tickers":        {"false"},
		"market_data":    {"true"},
		"community_data": {"false"},
		"developer_data": {"false"},
		"sparkline":      {"false"},
	}

	var out TokenDetail
	if err := c.http.GetJSON(ctx, c.baseURL+"/coins/"+url.PathEscape(tokenID), params, c.headers(), &out); err != nil {
		return nil, fmt.Errorf("coingecko detail %s: %w", tokenID, err)
	}
	return &out, nil
}

func (c *Client) headers() http.Header {
	if c.apiKey == "" {
		return nil
	}
	return http.Header{"X-Cg-Pro-Api-Key": {c.apiKey}}
}

// USD returns the usd entry of a per-currency map, or 0.
func USD(m map[string]float64) float64 {
	return m["usd"]
}
