package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

// Entry is one feed item.
type Entry struct {
	Title       string
	Link        string
	PublishedAt time.Time
}

// Fetcher downloads and parses RSS and Atom feeds.
type Fetcher struct {
	http       *httpx.Client
	maxEntries int
	logger     *zap.Logger
}

// NewFetcher creates a feed fetcher. maxEntries bounds the entries taken
// per feed.
func NewFetcher(http *httpx.Client, maxEntries int, logger *zap.Logger) *Fetcher {
	return &Fetcher{http: http, maxEntries: maxEntries, logger: logger}
}

type rssDoc struct {
	Channel struct {
		Items []struct {
			Title   string `xml:"title"`
			Link    string `xml:"link"`
			PubDate string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

type atomDoc struct {
	Entries []struct {
		Title string `xml:"title"`
		Link  struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
		Updated string `xml:"updated"`
	} `xml:"entry"`
}

// Fetch downloads one feed and returns its entries, newest as served.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]Entry, error) {
	body, err := f.http.GetBytes(ctx, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}

	entries, err := parseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	if f.maxEntries > 0 && len(entries) > f.maxEntries {
		entries = entries[:f.maxEntries]
	}
	return entries, nil
}

// FetchAll collects entries from multiple feeds. A broken feed is logged
// and skipped.
func (f *Fetcher) FetchAll(ctx context.Context, feedURLs []string) []Entry {
	var all []Entry
	for _, u := range feedURLs {
		entries, err := f.Fetch(ctx, u)
		if err != nil {
			f.logger.Warn("Skipping feed",
				zap.String("feed", u),
				zap.Error(err),
			)
			continue
		}
		all = append(all, entries...)
	}
	return all
}

func parseFeed(body []byte) ([]Entry, error) {
	var rss rssDoc
	if err := xml.Unmarshal(body, &rss); err == nil && len(rss.Channel.Items) > 0 {
		out := make([]Entry, 0, len(rss.Channel.Items))
		for _, it := range rss.Channel.Items {
			out = append(out, Entry{
				Title:       it.Title,
				Link:        it.Link,
				PublishedAt: parseFeedTime(it.PubDate),
			})
		}
		return out, nil
	}

	var atom atomDoc
	if err := xml.Unmarshal(body, &atom); err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(atom.Entries))
	for _, e := range atom.Entries {
		out = append(out, Entry{
			Title:       e.Title,
			Link:        e.Link.Href,
			PublishedAt: parseFeedTime(e.Updated),
		})
	}
	return out, nil
}

func parseFeedTime(s string) time.Time {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
