package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	endpoint  string
	apiKey    string
	model     string
	maxTokens int
	http      *httpx.Client
}

// NewClient creates an LLM client from the news configuration.
func NewClient(cfg config.NewsConfig, http *httpx.Client) *Client {
	return &Client{
		endpoint:  cfg.LLMEndpoint,
		apiKey:    cfg.LLMAPIKey,
		model:     cfg.LLMModel,
		maxTokens: cfg.LLMMaxTokens,
		http:      http,
	}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize produces a short neutral summary of one article text.
func (c *Client) Summarize(ctx context.Context, title, text string) (string, error) {
	if !c.Enabled() {
		return "", nil
	}

	// Large articles get truncated; the opening carries the substance.
	const maxInput = 12000
	if len(text) > maxInput {
		text = text[:maxInput]
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You summarize cryptocurrency news articles in two or three factual sentences. No opinions, no advice."},
			{Role: "user", Content: fmt.Sprintf("Title: %s\n\n%s", title, text)},
		},
		MaxTokens: c.maxTokens,
	}

	headers := http.Header{}
	if c.apiKey != "" {
		headers.Set("Authorization", "Bearer "+c.apiKey)
	}

	var resp chatResponse
	if err := c.http.PostJSON(ctx, c.endpoint, headers, req, &resp); err != nil {
		return "", fmt.Errorf("llm summarize: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm summarize: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
