package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

// APIFetcher pulls article URLs out of JSON news APIs. Response shapes
// vary per provider, so it walks the whole document and collects every
// url-ish string field.
type APIFetcher struct {
	http *httpx.Client
}

func NewAPIFetcher(http *httpx.Client) *APIFetcher {
	return &APIFetcher{http: http}
}

// ArticleURLs fetches one configured API source and returns the article
// links found in its response.
func (f *APIFetcher) ArticleURLs(ctx context.Context, source config.APISource) ([]string, error) {
	target := source.URL
	if len(source.Params) > 0 {
		params := url.Values{}
		for k, v := range source.Params {
			params.Set(k, v)
		}
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + params.Encode()
	}
	headers := http.Header{}
	for k, v := range source.Headers {
		headers.Set(k, v)
	}

	body, err := f.http.GetBytes(ctx, target, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch api source %s: %w", source.Name, err)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode api source %s: %w", source.Name, err)
	}

	seen := map[string]bool{}
	var urls []string
	collectURLs(doc, seen, &urls)
	return urls, nil
}

// collectURLs walks arbitrary decoded JSON collecting string values under
// url or link keys.
func collectURLs(v any, seen map[string]bool, out *[]string) {
	switch node := v.(type) {
	case map[string]any:
		for key, child := range node {
			lower := strings.ToLower(key)
			if lower == "url" || lower == "link" || lower == "article_url" {
				if s, ok := child.(string); ok && strings.HasPrefix(s, "http") && !seen[s] {
					seen[s] = true
					*out = append(*out, s)
					continue
				}
			}
			collectURLs(child, seen, out)
		}
	case []any:
		for _, child := range node {
			collectURLs(child, seen, out)
		}
	}
}
