package thegraph

import (
	"context"
	"fmt"

	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

const swapsQuery = `
query($start:Int!, $end:Int!, $first:Int!, $skip:Int!) {
  swaps(
    first: $first
    skip: $skip
    orderBy: timestamp
    orderDirection: desc
    where: {timestamp_gte: $start, timestamp_lt: $end}
  ) {
    transaction { id }
    timestamp
    pool { id token0 { symbol } token1 { symbol } }
    amount0
    amount1
    amountUSD
    sqrtPriceX96
  }
}`

// Swap is one raw swap entity returned by the Uniswap v3 subgraph. All
// numeric values come back as decimal strings.
type Swap struct {
	Transaction struct {
		ID string `json:"id"`
	} `json:"transaction"`
	Timestamp string `json:"timestamp"`
	Pool      struct {
		ID     string `json:"id"`
		Token0 struct {
			Symbol string `json:"symbol"`
		} `json:"token0"`
		Token1 struct {
			Symbol string `json:"symbol"`
		} `json:"token1"`
	} `json:"pool"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	AmountUSD    string `json:"amountUSD"`
	SqrtPriceX96 string `json:"sqrtPriceX96"`
}

// Client queries a The Graph subgraph over its GraphQL HTTP endpoint.
type Client struct {
	endpoint string
	http     *httpx.Client
}

// NewClient creates a subgraph client.
func NewClient(endpoint string, http *httpx.Client) *Client {
	return &Client{endpoint: endpoint, http: http}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// Swaps pages through Uniswap v3 swaps between two unix timestamps,
// newest first, up to limit entries.
func (c *Client) Swaps(ctx context.Context, start, end int64, pageSize, limit int) ([]Swap, error) {
	if pageSize <= 0 || pageSize > 1000 {
		pageSize = 1000
	}

	var all []Swap
	skip := 0
	for {
		req := graphqlRequest{
			Query: swapsQuery,
			Variables: map[string]any{
				"start": start,
				"end":   end,
				"first": pageSize,
				"skip":  skip,
			},
		}

		var resp struct {
			Data struct {
				Swaps []Swap `json:"swaps"`
			} `json:"data"`
			Errors []graphqlError `json:"errors"`
		}
		if err := c.http.PostJSON(ctx, c.endpoint, nil, req, &resp); err != nil {
			return nil, fmt.Errorf("subgraph swaps query: %w", err)
		}
		if len(resp.Errors) > 0 {
			return nil, fmt.Errorf("subgraph swaps query: %s", resp.Errors[0].Message)
		}

		if len(resp.Data.Swaps) == 0 {
			break
		}
		all = append(all, resp.Data.Swaps...)
		if len(resp.Data.Swaps) < pageSize {
			break
		}
		skip += len(resp.Data.Swaps)
		if limit > 0 && skip >= limit {
			break
		}
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
