package workers

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/mlserve"
)

// Posts fetched per run; several sentiment batches worth.
const unscoredPostLimit = 500

type sentimentScorer interface {
	SentimentEnabled() bool
	ScoreSentiment(ctx context.Context, texts []string) ([]mlserve.SentimentResult, error)
}

// SentimentWorker scores unscored social posts with the hosted sentiment
// model and attributes each score to the assets whose cashtags appear in
// the post.
type SentimentWorker struct {
	social    repositories.SocialReader
	warehouse repositories.Appender
	model     sentimentScorer
	assetMap  map[string]string
	cfg       config.ModelConfig
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewSentimentWorker(
	social repositories.SocialReader,
	warehouse repositories.Appender,
	model sentimentScorer,
	assetMap map[string]string,
	cfg config.ModelConfig,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *SentimentWorker {
	return &SentimentWorker{
		social:    social,
		warehouse: warehouse,
		model:     model,
		assetMap:  assetMap,
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
	}
}

func (w *SentimentWorker) Name() string { return "sentiment" }

func (w *SentimentWorker) Run(ctx context.Context) (*Result, error) {
	if !w.model.SentimentEnabled() {
		return &Result{Message: "sentiment model endpoint not configured"}, nil
	}

	posts, err := w.social.UnscoredPosts(ctx, unscoredPostLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unscored posts: %w", err)
	}

	// Only posts that mention a mapped asset are worth a model call.
	type scorable struct {
		post   rows.SocialPost
		assets []string
		text   string
	}
	var pending []scorable
	for _, post := range posts {
		assets := mappedAssets(post.Text, w.assetMap)
		if len(assets) == 0 {
			continue
		}
		pending = append(pending, scorable{post: post, assets: assets, text: cleanPostText(post.Text)})
	}
	if len(pending) == 0 {
		return &Result{Message: fmt.Sprintf("%d posts, none mention tracked assets", len(posts))}, nil
	}

	res := &Result{}
	now := time.Now().UTC()
	batchSize := w.cfg.SentimentBatch
	if batchSize <= 0 {
		batchSize = len(pending)
	}

	var records []any
	for start := 0; start < len(pending); start += batchSize {
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		texts := make([]string, len(batch))
		for i, s := range batch {
			texts[i] = s.text
		}
		results, err := w.model.ScoreSentiment(ctx, texts)
		if err != nil {
			w.logger.Warn("sentiment batch failed", zap.Int("batch_size", len(batch)), zap.Error(err))
			res.ItemsFailed += int64(len(batch))
			continue
		}

		for i, r := range results {
			score := signedSentiment(r)
			for _, asset := range batch[i].assets {
				records = append(records, rows.Sentiment{
					AssetID:            asset,
					PostID:             batch[i].post.PostID,
					Platform:           batch[i].post.Platform,
					Label:              r.Label,
					SentimentScore:     score,
					ObservedAt:         batch[i].post.PostedAt,
					IngestionTimestamp: now,
				})
			}
		}
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.SentimentTable, records, batchSize, w.logger)
	res.RowsWritten = written
	res.ItemsFailed += failed
	res.Message = fmt.Sprintf("%d posts scored, %d asset observations", len(pending), written)
	return res, appendErr
}

var (
	cashtagRe = regexp.MustCompile(`\$([A-Za-z]{2,10})\b`)
	urlRe     = regexp.MustCompile(`https?://\S+`)
	mentionRe = regexp.MustCompile(`@\w+`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// mappedAssets extracts cashtags and resolves them through the tag to
// asset registry. Unmapped tags are ignored.
func mappedAssets(text string, assetMap map[string]string) []string {
	seen := map[string]bool{}
	var assets []string
	for _, m := range cashtagRe.FindAllStringSubmatch(text, -1) {
		tag := strings.ToUpper(m[1])
		asset, ok := assetMap[tag]
		if !ok || seen[asset] {
			continue
		}
		seen[asset] = true
		assets = append(assets, asset)
	}
	return assets
}

// cleanPostText strips URLs and mentions that would only confuse the
// model.
func cleanPostText(text string) string {
	text = urlRe.ReplaceAllString(text, "")
	text = mentionRe.ReplaceAllString(text, "")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// signedSentiment folds the model's label and confidence into one signed
// score in [-1, 1].
func signedSentiment(r mlserve.SentimentResult) float64 {
	switch strings.ToLower(r.Label) {
	case "positive", "bullish":
		return r.Score
	case "negative", "bearish":
		return -r.Score
	default:
		return 0
	}
}
