package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/feeds"
	"github.com/bimakw/market-intel/internal/testutil"
)

type stubFeedSource struct {
	entries []feeds.Entry
}

func (s *stubFeedSource) FetchAll(ctx context.Context, feedURLs []string) []feeds.Entry {
	return s.entries
}

type stubAPIFetcher struct {
	urls map[string][]string
}

func (s *stubAPIFetcher) ArticleURLs(ctx context.Context, source config.APISource) ([]string, error) {
	if urls, ok := s.urls[source.Name]; ok {
		return urls, nil
	}
	return nil, errors.New("source unavailable")
}

type stubExtractor struct {
	fail map[string]bool
}

func (s *stubExtractor) Extract(ctx context.Context, pageURL string, publishedAt time.Time) (*feeds.Article, error) {
	if s.fail[pageURL] {
		return nil, errors.New("no paragraphs")
	}
	return &feeds.Article{
		URL:         pageURL,
		Source:      "example.com",
		Title:       "AI tokens rally",
		Text:        "A long article body.",
		PublishedAt: publishedAt,
	}, nil
}

type stubSummarizer struct {
	enabled bool
	calls   int
}

func (s *stubSummarizer) Enabled() bool { return s.enabled }

func (s *stubSummarizer) Summarize(ctx context.Context, title, text string) (string, error) {
	s.calls++
	return "Two sentence summary.", nil
}

func setupNewsTest(sources config.NewsSources, feedSrc *stubFeedSource, apis *stubAPIFetcher, extractor *stubExtractor, summary *stubSummarizer) (*NewsWorker, *testutil.MockWarehouse, *testutil.MockDedupCache) {
	warehouse := testutil.NewMockWarehouse()
	dedup := testutil.NewMockDedupCache()
	cfg := config.NewsConfig{MaxEntries: 50, MaxArticles: 100}
	tables := config.WarehouseConfig{ArticlesTable: "raw_articles"}
	worker := NewNewsWorker(sources, feedSrc, apis, extractor, summary, warehouse, dedup, cfg, tables, zap.NewNop())
	return worker, warehouse, dedup
}

func TestNewsWorkerCollectsFromAllSources(t *testing.T) {
	published := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	sources := config.NewsSources{
		RSSFeeds:   []string{"https://news.example/rss"},
		APISources: []config.APISource{{Name: "cryptopanic"}, {Name: "broken"}},
		ScrapeURLs: []string{"https://blog.example/post"},
	}
	feedSrc := &stubFeedSource{entries: []feeds.Entry{
		{Link: "https://news.example/article-1", PublishedAt: published},
	}}
	apis := &stubAPIFetcher{urls: map[string][]string{
		"cryptopanic": {"https://panic.example/article-2"},
	}}
	summary := &stubSummarizer{enabled: true}
	worker, warehouse, _ := setupNewsTest(sources, feedSrc, apis, &stubExtractor{}, summary)

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.RowsWritten != 3 {
		t.Fatalf("expected 3 articles, got %d", res.RowsWritten)
	}
	if summary.calls != 3 {
		t.Errorf("expected 3 summaries, got %d", summary.calls)
	}

	article := warehouse.AppendedRows("raw_articles")[0].(rows.Article)
	if article.URL != "https://news.example/article-1" {
		t.Errorf("unexpected first article %s", article.URL)
	}
	if article.Summary != "Two sentence summary." {
		t.Errorf("unexpected summary %q", article.Summary)
	}
	if !article.PublishedAt.Equal(published) {
		t.Errorf("expected the feed publish time carried through, got %v", article.PublishedAt)
	}
}

func TestNewsWorkerDeduplicatesAcrossRuns(t *testing.T) {
	sources := config.NewsSources{ScrapeURLs: []string{"https://blog.example/post"}}
	worker, warehouse, dedup := setupNewsTest(sources, &stubFeedSource{}, &stubAPIFetcher{}, &stubExtractor{}, &stubSummarizer{})

	if _, err := worker.Run(context.Background()); err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}
	if _, err := worker.Run(context.Background()); err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}

	if got := len(warehouse.AppendedRows("raw_articles")); got != 1 {
		t.Errorf("expected the article stored once, got %d", got)
	}
	seen, err := dedup.Seen(context.Background(), dedupNews, "https://blog.example/post")
	if err != nil || !seen {
		t.Errorf("expected the url marked seen, got %v %v", seen, err)
	}
}

func TestNewsWorkerCountsExtractionFailures(t *testing.T) {
	sources := config.NewsSources{ScrapeURLs: []string{"https://broken.example/post", "https://ok.example/post"}}
	extractor := &stubExtractor{fail: map[string]bool{"https://broken.example/post": true}}
	worker, _, _ := setupNewsTest(sources, &stubFeedSource{}, &stubAPIFetcher{}, extractor, &stubSummarizer{})

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.ItemsFailed != 1 {
		t.Errorf("expected 1 extraction failure, got %d", res.ItemsFailed)
	}
	if res.RowsWritten != 1 {
		t.Errorf("expected 1 article stored, got %d", res.RowsWritten)
	}
}
