package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/feeds"
)

const dedupNews = "news"

type feedSource interface {
	FetchAll(ctx context.Context, feedURLs []string) []feeds.Entry
}

type articleExtractor interface {
	Extract(ctx context.Context, pageURL string, publishedAt time.Time) (*feeds.Article, error)
}

type summarizer interface {
	Enabled() bool
	Summarize(ctx context.Context, title, text string) (string, error)
}

type apiSourceFetcher interface {
	ArticleURLs(ctx context.Context, source config.APISource) ([]string, error)
}

// NewsWorker collects article URLs from RSS feeds, JSON news APIs, and a
// static scrape list, extracts the article bodies, and optionally
// summarizes them with an LLM before appending to raw_articles.
type NewsWorker struct {
	sources   config.NewsSources
	feeds     feedSource
	apis      apiSourceFetcher
	extractor articleExtractor
	summary   summarizer
	warehouse repositories.Appender
	dedup     repositories.DedupCache
	cfg       config.NewsConfig
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewNewsWorker(
	sources config.NewsSources,
	feedFetcher feedSource,
	apis apiSourceFetcher,
	extractor articleExtractor,
	summary summarizer,
	warehouse repositories.Appender,
	dedup repositories.DedupCache,
	cfg config.NewsConfig,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *NewsWorker {
	return &NewsWorker{
		sources:   sources,
		feeds:     feedFetcher,
		apis:      apis,
		extractor: extractor,
		summary:   summary,
		warehouse: warehouse,
		dedup:     dedup,
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
	}
}

func (w *NewsWorker) Name() string { return "news" }

type articleCandidate struct {
	url         string
	publishedAt time.Time
}

func (w *NewsWorker) Run(ctx context.Context) (*Result, error) {
	var candidates []articleCandidate
	for _, entry := range w.feeds.FetchAll(ctx, w.sources.RSSFeeds) {
		candidates = append(candidates, articleCandidate{url: entry.Link, publishedAt: entry.PublishedAt})
	}

	for _, source := range w.sources.APISources {
		urls, err := w.apis.ArticleURLs(ctx, source)
		if err != nil {
			w.logger.Warn("api source failed", zap.String("source", source.Name), zap.Error(err))
			continue
		}
		for _, u := range urls {
			candidates = append(candidates, articleCandidate{url: u})
		}
	}

	for _, u := range w.sources.ScrapeURLs {
		candidates = append(candidates, articleCandidate{url: u})
	}

	res := &Result{}
	now := time.Now().UTC()
	var records []any
	for _, cand := range candidates {
		if len(records) >= w.cfg.MaxArticles {
			break
		}
		if cand.url == "" || !strings.HasPrefix(cand.url, "http") {
			continue
		}

		seen, err := w.dedup.Seen(ctx, dedupNews, cand.url)
		if err != nil {
			w.logger.Warn("dedup lookup failed", zap.String("url", cand.url), zap.Error(err))
		}
		if seen {
			continue
		}

		article, err := w.extractor.Extract(ctx, cand.url, cand.publishedAt)
		if err != nil {
			w.logger.Debug("extraction failed", zap.String("url", cand.url), zap.Error(err))
			res.ItemsFailed++
			continue
		}

		summary := ""
		if w.summary.Enabled() {
			summary, err = w.summary.Summarize(ctx, article.Title, article.Text)
			if err != nil {
				w.logger.Warn("summarization failed", zap.String("url", cand.url), zap.Error(err))
			}
		}

		records = append(records, rows.Article{
			URL:                article.URL,
			Title:              article.Title,
			Text:               article.Text,
			Summary:            summary,
			Source:             article.Source,
			PublishedAt:        article.PublishedAt,
			IngestionTimestamp: now,
		})
		if err := w.dedup.MarkSeen(ctx, dedupNews, cand.url); err != nil {
			w.logger.Warn("dedup mark failed", zap.String("url", cand.url), zap.Error(err))
		}
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.ArticlesTable, records, 0, w.logger)
	res.RowsWritten = written
	res.ItemsFailed += failed
	res.Message = fmt.Sprintf("%d candidates, %d articles stored", len(candidates), written)
	return res, appendErr
}
