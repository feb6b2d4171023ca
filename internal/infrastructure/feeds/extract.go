package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

// Article is a page reduced to its readable content.
type Article struct {
	URL         string
	Source      string
	Title       string
	Text        string
	PublishedAt time.Time
}

// Extractor downloads pages and strips them down to title and body text.
type Extractor struct {
	http *httpx.Client
}

// NewExtractor creates an article extractor.
func NewExtractor(http *httpx.Client) *Extractor {
	return &Extractor{http: http}
}

var (
	titleRe     = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	ogTitleRe   = regexp.MustCompile(`(?is)<meta[^>]+property="og:title"[^>]+content="([^"]*)"`)
	pubTimeRe   = regexp.MustCompile(`(?is)<meta[^>]+property="article:published_time"[^>]+content="([^"]*)"`)
	paragraphRe = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	tagRe       = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptRe    = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	entityMap   = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'", "&nbsp;", " ")
)

// Extract downloads one page and returns its readable content. Pages with
// no extractable paragraphs yield an error.
func (e *Extractor) Extract(ctx context.Context, pageURL string, publishedAt time.Time) (*Article, error) {
	headers := http.Header{"User-Agent": {"Mozilla/5.0"}}
	body, err := e.http.GetBytes(ctx, pageURL, headers)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", pageURL, err)
	}

	html := scriptRe.ReplaceAllString(string(body), "")

	title := firstMatch(ogTitleRe, html)
	if title == "" {
		title = firstMatch(titleRe, html)
	}
	if publishedAt.IsZero() {
		if raw := firstMatch(pubTimeRe, html); raw != "" {
			if t, err := time.Parse(time.RFC3339, raw); err == nil {
				publishedAt = t.UTC()
			}
		}
	}

	var paragraphs []string
	for _, m := range paragraphRe.FindAllStringSubmatch(html, -1) {
		text := strings.TrimSpace(entityMap.Replace(tagRe.ReplaceAllString(m[1], "")))
		// Navigation fragments and captions are short; drop them.
		if len(text) >= 80 {
			paragraphs = append(paragraphs, text)
		}
	}
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("no extractable content at %s", pageURL)
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid article url %s: %w", pageURL, err)
	}

	return &Article{
		URL:         pageURL,
		Source:      parsed.Host,
		Title:       strings.TrimSpace(entityMap.Replace(title)),
		Text:        strings.Join(paragraphs, "\n\n"),
		PublishedAt: publishedAt,
	}, nil
}

func firstMatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
