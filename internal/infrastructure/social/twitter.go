package social

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

// Twitter fetches recent posts via the X API v2 recent search endpoint.
type Twitter struct {
	baseURL     string
	bearerToken string
	maxResults  int
	http        *httpx.Client
}

// NewTwitter creates an X API client.
func NewTwitter(bearerToken string, maxResults int, http *httpx.Client) *Twitter {
	if maxResults <= 0 || maxResults > 100 {
		maxResults = 50
	}
	return &Twitter{
		baseURL:     "https://api.twitter.com",
		bearerToken: bearerToken,
		maxResults:  maxResults,
		http:        http,
	}
}

// Enabled reports whether credentials are configured.
func (t *Twitter) Enabled() bool { return t.bearerToken != "" }

type tweetSearchResponse struct {
	Data []struct {
		ID            string    `json:"id"`
		AuthorID      string    `json:"author_id"`
		Text          string    `json:"text"`
		CreatedAt     time.Time `json:"created_at"`
		PublicMetrics struct {
			LikeCount    int64 `json:"like_count"`
			RetweetCount int64 `json:"retweet_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

// Search fetches recent tweets matching any of the given keywords.
func (t *Twitter) Search(ctx context.Context, keywords []string) ([]rows.SocialPost, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	params := url.Values{
		"query":        {strings.Join(keywords, " OR ")},
		"max_results":  {strconv.Itoa(t.maxResults)},
		"tweet.fields": {"created_at,public_metrics,author_id"},
	}
	headers := http.Header{"Authorization": {"Bearer " + t.bearerToken}}

	var resp tweetSearchResponse
	if err := t.http.GetJSON(ctx, t.baseURL+"/2/tweets/search/recent", params, headers, &resp); err != nil {
		return nil, fmt.Errorf("twitter search: %w", err)
	}

	now := time.Now().UTC()
	out := make([]rows.SocialPost, 0, len(resp.Data))
	for _, tw := range resp.Data {
		out = append(out, rows.SocialPost{
			PostID:             "twitter:" + tw.ID,
			Platform:           "twitter",
			Author:             tw.AuthorID,
			Text:               tw.Text,
			PostedAt:           tw.CreatedAt,
			Score:              tw.PublicMetrics.LikeCount + tw.PublicMetrics.RetweetCount,
			IngestionTimestamp: now,
		})
	}
	return out, nil
}
