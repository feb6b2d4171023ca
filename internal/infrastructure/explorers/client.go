package explorers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

// endpoint is one Etherscan-family API deployment.
type endpoint struct {
	baseURL string
	apiKey  string
	chainID int64
}

// ErrUnsupportedChain is returned for chains with no configured explorer.
var ErrUnsupportedChain = fmt.Errorf("unsupported chain")

// TokenTx is one entry of an account tokentx listing. Etherscan returns
// every field as a string.
type TokenTx struct {
	TimeStamp    string `json:"timeStamp"`
	Hash         string `json:"hash"`
	From         string `json:"from"`
	To           string `json:"to"`
	Value        string `json:"value"`
	TokenDecimal string `json:"tokenDecimal"`
	FunctionName string `json:"functionName"`
}

// SourceEntry is one result entry of a getsourcecode call.
type SourceEntry struct {
	ContractName    string `json:"ContractName"`
	CompilerVersion string `json:"CompilerVersion"`
	SourceCode      string `json:"SourceCode"`
	ABI             string `json:"ABI"`
}

// Client talks to the Etherscan-family explorers for the supported
// chains, using CoinGecko platform identifiers as chain names.
type Client struct {
	endpoints map[string]endpoint
	http      *httpx.Client
}

// NewClient creates an explorer client from the configured API keys.
func NewClient(cfg config.ExplorerConfig, http *httpx.Client) *Client {
	return &Client{
		endpoints: map[string]endpoint{
			"ethereum":            {baseURL: "https://api.etherscan.io/api", apiKey: cfg.EtherscanKey, chainID: 1},
			"binance-smart-chain": {baseURL: "https://api.bscscan.com/api", apiKey: cfg.BscscanKey, chainID: 56},
			"polygon-pos":         {baseURL: "https://api.polygonscan.com/api", apiKey: cfg.PolygonscanKey, chainID: 137},
		},
		http: http,
	}
}

// Supported reports whether the chain has a configured explorer.
func (c *Client) Supported(chain string) bool {
	ep, ok := c.endpoints[chain]
	return ok && ep.apiKey != ""
}

// ChainID returns the numeric chain ID for a supported chain, or 0.
func (c *Client) ChainID(chain string) int64 {
	return c.endpoints[chain].chainID
}

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, chain string, params url.Values, result any) error {
	ep, ok := c.endpoints[chain]
	if !ok || ep.apiKey == "" {
		return fmt.Errorf("%w: %s", ErrUnsupportedChain, chain)
	}
	params.Set("apikey", ep.apiKey)

	var resp response
	if err := c.http.GetJSON(ctx, ep.baseURL, params, nil, &resp); err != nil {
		return err
	}

	// Status "0" with an empty result means no data rather than failure.
	if resp.Status == "0" && resp.Message != "No transactions found" {
		var msg string
		if err := json.Unmarshal(resp.Result, &msg); err == nil && msg != "" {
			return fmt.Errorf("explorer error: %s", msg)
		}
		return fmt.Errorf("explorer error: %s", resp.Message)
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(resp.Result, result)
}

// TokenTransfers fetches the most recent token transfer transactions of
// one contract, newest first.
func (c *Client) TokenTransfers(ctx context.Context, chain, contract string, pageSize int) ([]TokenTx, error) {
	params := url.Values{
		"module":          {"account"},
		"action":          {"tokentx"},
		"contractaddress": {contract},
		"page":            {"1"},
		"offset":          {strconv.Itoa(pageSize)},
		"sort":            {"desc"},
	}

	var txs []TokenTx
	if err := c.call(ctx, chain, params, &txs); err != nil {
		return nil, fmt.Errorf("tokentx %s on %s: %w", contract, chain, err)
	}
	return txs, nil
}

// ContractSource fetches verified source code metadata for one contract.
func (c *Client) ContractSource(ctx context.Context, chain, address string) (*SourceEntry, error) {
	params := url.Values{
		"module":  {"contract"},
		"action":  {"getsourcecode"},
		"address": {address},
	}

	var entries []SourceEntry
	if err := c.call(ctx, chain, params, &entries); err != nil {
		return nil, fmt.Errorf("getsourcecode %s on %s: %w", address, chain, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("getsourcecode %s on %s: empty result", address, chain)
	}
	return &entries[0], nil
}

// Bytecode fetches the deployed runtime bytecode of one contract via the
// explorer's proxy endpoint.
func (c *Client) Bytecode(ctx context.Context, chain, address string) (string, error) {
	ep, ok := c.endpoints[chain]
	if !ok || ep.apiKey == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedChain, chain)
	}

	params := url.Values{
		"module":  {"proxy"},
		"action":  {"eth_getCode"},
		"address": {address},
		"apikey":  {ep.apiKey},
	}

	// Proxy actions use the JSON-RPC envelope, not the status/result one.
	var resp struct {
		Result string `json:"result"`
	}
	if err := c.http.GetJSON(ctx, ep.baseURL, params, nil, &resp); err != nil {
		return "", fmt.Errorf("eth_getCode %s on %s: %w", address, chain, err)
	}
	return resp.Result, nil
}
