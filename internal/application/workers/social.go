package workers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
)

const dedupSocial = "social"

type tweetSource interface {
	Enabled() bool
	Search(ctx context.Context, keywords []string) ([]rows.SocialPost, error)
}

type redditSource interface {
	Enabled() bool
	NewPosts(ctx context.Context, subreddit string) ([]rows.SocialPost, error)
}

// SocialWorker scrapes recent posts from X keyword search and the
// configured subreddits into raw_social_posts.
type SocialWorker struct {
	sources   config.SocialSources
	twitter   tweetSource
	reddit    redditSource
	warehouse repositories.Appender
	dedup     repositories.DedupCache
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewSocialWorker(
	sources config.SocialSources,
	twitter tweetSource,
	reddit redditSource,
	warehouse repositories.Appender,
	dedup repositories.DedupCache,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *SocialWorker {
	return &SocialWorker{
		sources:   sources,
		twitter:   twitter,
		reddit:    reddit,
		warehouse: warehouse,
		dedup:     dedup,
		tables:    tables,
		logger:    logger,
	}
}

func (w *SocialWorker) Name() string { return "social" }

func (w *SocialWorker) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	var posts []rows.SocialPost

	if w.twitter.Enabled() && len(w.sources.Keywords) > 0 {
		found, err := w.twitter.Search(ctx, w.sources.Keywords)
		if err != nil {
			w.logger.Warn("keyword search failed", zap.Error(err))
			res.ItemsFailed++
		} else {
			posts = append(posts, found...)
		}
	}

	if w.reddit.Enabled() {
		for _, subreddit := range w.sources.Subreddits {
			found, err := w.reddit.NewPosts(ctx, subreddit)
			if err != nil {
				w.logger.Warn("subreddit fetch failed", zap.String("subreddit", subreddit), zap.Error(err))
				res.ItemsFailed++
				continue
			}
			posts = append(posts, found...)
		}
	}

	var records []any
	for _, post := range posts {
		seen, err := w.dedup.Seen(ctx, dedupSocial, post.PostID)
		if err != nil {
			w.logger.Warn("dedup lookup failed", zap.String("post", post.PostID), zap.Error(err))
		}
		if seen {
			continue
		}
		records = append(records, post)
		if err := w.dedup.MarkSeen(ctx, dedupSocial, post.PostID); err != nil {
			w.logger.Warn("dedup mark failed", zap.String("post", post.PostID), zap.Error(err))
		}
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.SocialTable, records, 0, w.logger)
	res.RowsWritten = written
	res.ItemsFailed += failed
	res.Message = fmt.Sprintf("%d posts fetched, %d new", len(posts), written)
	return res, appendErr
}
