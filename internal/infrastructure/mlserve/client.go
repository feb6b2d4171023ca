package mlserve

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

// SentimentResult is one scored text. Label is positive, negative or
// neutral; Score is the model confidence for that label.
type SentimentResult struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// HoneypotResult is one scored contract.
type HoneypotResult struct {
	Address      string  `json:"address"`
	Probability  float64 `json:"probability"`
	ModelVersion string  `json:"model_version"`
}

// ContractInput is one contract submitted for honeypot scoring.
type ContractInput struct {
	Address string `json:"address"`
	Opcodes string `json:"opcodes"`
}

// Client calls the hosted model-serving endpoints.
type Client struct {
	cfg  config.ModelConfig
	http *httpx.Client
}

// NewClient creates a model-serving client.
func NewClient(cfg config.ModelConfig, http *httpx.Client) *Client {
	return &Client{cfg: cfg, http: http}
}

// SentimentEnabled reports whether a sentiment endpoint is configured.
func (c *Client) SentimentEnabled() bool { return c.cfg.SentimentEndpoint != "" }

// HoneypotEnabled reports whether a honeypot endpoint is configured.
func (c *Client) HoneypotEnabled() bool { return c.cfg.HoneypotEndpoint != "" }

// ScoreSentiment classifies a batch of texts. Results come back in input
// order.
func (c *Client) ScoreSentiment(ctx context.Context, texts []string) ([]SentimentResult, error) {
	req := struct {
		Texts []string `json:"texts"`
	}{Texts: texts}

	var resp struct {
		Results []SentimentResult `json:"results"`
	}
	headers := bearer(c.cfg.SentimentAPIKey)
	if err := c.http.PostJSON(ctx, c.cfg.SentimentEndpoint, headers, req, &resp); err != nil {
		return nil, fmt.Errorf("sentiment scoring: %w", err)
	}
	if len(resp.Results) != len(texts) {
		return nil, fmt.Errorf("sentiment scoring: got %d results for %d texts", len(resp.Results), len(texts))
	}
	return resp.Results, nil
}

// ScoreHoneypot scores contracts by their opcode sequences.
func (c *Client) ScoreHoneypot(ctx context.Context, contracts []ContractInput) ([]HoneypotResult, error) {
	req := struct {
		Contracts []ContractInput `json:"contracts"`
	}{Contracts: contracts}

	var resp struct {
		Results []HoneypotResult `json:"results"`
	}
	headers := bearer(c.cfg.HoneypotAPIKey)
	if err := c.http.PostJSON(ctx, c.cfg.HoneypotEndpoint, headers, req, &resp); err != nil {
		return nil, fmt.Errorf("honeypot scoring: %w", err)
	}
	return resp.Results, nil
}

func bearer(key string) http.Header {
	if key == "" {
		return nil
	}
	return http.Header{"Authorization": {"Bearer " + key}}
}
