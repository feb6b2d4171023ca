package opensea

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

// CollectionStats is the market snapshot of one collection.
type CollectionStats struct {
	FloorPriceETH float64
	VolumeETH24h  float64
}

// Client talks to the OpenSea v2 API.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpx.Client
}

// NewClient creates an OpenSea client.
func NewClient(baseURL, apiKey string, http *httpx.Client) *Client {
	return &Client{baseURL: baseURL, apiKey: apiKey, http: http}
}

type statsResponse struct {
	Total struct {
		FloorPrice float64 `json:"floor_price"`
	} `json:"total"`
	Intervals []struct {
		Interval string  `json:"interval"`
		Volume   float64 `json:"volume"`
	} `json:"intervals"`
}

// Stats fetches floor price and 24h volume for one collection slug.
func (c *Client) Stats(ctx context.Context, slug string) (*CollectionStats, error) {
	var headers http.Header
	if c.apiKey != "" {
		headers = http.Header{"X-Api-Key": {c.apiKey}}
	}

	var resp statsResponse
	target := c.baseURL + "/collections/" + url.PathEscape(slug) + "/stats"
	if err := c.http.GetJSON(ctx, target, nil, headers, &resp); err != nil {
		return nil, fmt.Errorf("opensea stats %s: %w", slug, err)
	}

	out := &CollectionStats{FloorPriceETH: resp.Total.FloorPrice}
	for _, iv := range resp.Intervals {
		if iv.Interval == "one_day" {
			out.VolumeETH24h = iv.Volume
			break
		}
	}
	return out, nil
}
