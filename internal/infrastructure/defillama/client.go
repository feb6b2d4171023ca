package defillama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

// Client talks to the public DeFiLlama API.
type Client struct {
	baseURL string
	http    *httpx.Client
}

// NewClient creates a DeFiLlama client.
func NewClient(http *httpx.Client) *Client {
	return &Client{baseURL: "https://api.llama.fi", http: http}
}

// TokenTVL returns the total value locked for one token, addressed as
// chain:address. A missing listing yields 0.
func (c *Client) TokenTVL(ctx context.Context, chain, address string) (float64, error) {
	target := fmt.Sprintf("%s/tvl/%s:%s", c.baseURL, url.PathEscape(chain), url.PathEscape(address))

	var raw json.RawMessage
	if err := c.http.GetJSON(ctx, target, nil, nil, &raw); err != nil {
		var statusErr *httpx.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == 400 {
			return 0, nil
		}
		return 0, fmt.Errorf("defillama tvl %s:%s: %w", chain, address, err)
	}

	var tvl float64
	if err := json.Unmarshal(raw, &tvl); err != nil {
		// Unknown tokens come back as an error message string.
		return 0, nil
	}
	return tvl, nil
}

// ProtocolTVL returns the current total value locked of a protocol slug.
func (c *Client) ProtocolTVL(ctx context.Context, slug string) (float64, error) {
	target := fmt.Sprintf("%s/tvl/%s", c.baseURL, url.PathEscape(slug))

	var tvl float64
	if err := c.http.GetJSON(ctx, target, nil, nil, &tvl); err != nil {
		return 0, fmt.Errorf("defillama tvl %s: %w", slug, err)
	}
	return tvl, nil
}
