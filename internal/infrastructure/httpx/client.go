package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client wraps net/http with a token-bucket rate limiter and bounded
// retries with exponential backoff on 429 and 5xx responses. All source
// clients in this repository are built on it.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit bounds outgoing requests to n per interval.
func WithRateLimit(n int, interval time.Duration) Option {
	return func(c *Client) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Every(interval/time.Duration(n)), n)
		}
	}
}

// WithMaxRetries sets the number of retries on retryable status codes.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a rate-limited HTTP client.
func New(logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxRetries: 3,
		baseDelay:  time.Second,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for non-2xx responses that are not retryable,
// or when retries are exhausted.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, body)
}

// GetJSON performs a GET with query parameters and decodes the JSON
// response into dest.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, headers http.Header, dest any) error {
	return c.doJSON(ctx, http.MethodGet, rawURL, params, headers, nil, dest)
}

// PostJSON performs a POST with a JSON body and decodes the JSON response
// into dest.
func (c *Client) PostJSON(ctx context.Context, rawURL string, headers http.Header, body, dest any) error {
	return c.doJSON(ctx, http.MethodPost, rawURL, nil, headers, body, dest)
}

// PostFormJSON performs a form-encoded POST and decodes the JSON
// response into dest. Used by OAuth token endpoints.
func (c *Client) PostFormJSON(ctx context.Context, rawURL string, headers http.Header, form url.Values, dest any) error {
	if headers == nil {
		headers = http.Header{}
	}
	headers.Set("Content-Type", "application/x-www-form-urlencoded")

	respBody, err := c.doRetry(ctx, http.MethodPost, rawURL, headers, []byte(form.Encode()))
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetBytes performs a GET and returns the raw response body. Used for
// non-JSON payloads such as RSS feeds.
func (c *Client) GetBytes(ctx context.Context, rawURL string, headers http.Header) ([]byte, error) {
	return c.doRetry(ctx, http.MethodGet, rawURL, headers, nil)
}

func (c *Client) doJSON(ctx context.Context, method, rawURL string, params url.Values, headers http.Header, body, dest any) error {
	if len(params) > 0 {
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid url %q: %w", rawURL, err)
		}
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		rawURL = u.String()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	respBody, err := c.doRetry(ctx, method, rawURL, headers, payload)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// doRetry is the shared request path: every outbound call waits on the
// rate limiter, retries 429 and 5xx responses with doubling backoff,
// and fails immediately on other 4xx statuses.
func (c *Client) doRetry(ctx context.Context, method, rawURL string, headers http.Header, payload []byte) ([]byte, error) {
	delay := c.baseDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		respBody, status, err := c.do(ctx, method, rawURL, headers, payload)
		if err != nil {
			lastErr = err
		} else if status == http.StatusTooManyRequests || status >= 500 {
			lastErr = &StatusError{StatusCode: status, Body: string(respBody)}
		} else if status >= 400 {
			return nil, &StatusError{StatusCode: status, Body: string(respBody)}
		} else {
			return respBody, nil
		}

		if attempt < c.maxRetries {
			c.logger.Warn("request failed, retrying",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", delay),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}
	}

	return nil, fmt.Errorf("request to %s failed after %d attempts: %w", rawURL, c.maxRetries+1, lastErr)
}

func (c *Client) do(ctx context.Context, method, rawURL string, headers http.Header, payload []byte) ([]byte, int, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if payload != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}
