package workers

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/testutil"
)

type stubTwitter struct {
	enabled bool
	posts   []rows.SocialPost
}

func (s *stubTwitter) Enabled() bool { return s.enabled }

func (s *stubTwitter) Search(ctx context.Context, keywords []string) ([]rows.SocialPost, error) {
	return s.posts, nil
}

type stubReddit struct {
	enabled bool
	posts   map[string][]rows.SocialPost
}

func (s *stubReddit) Enabled() bool { return s.enabled }

func (s *stubReddit) NewPosts(ctx context.Context, subreddit string) ([]rows.SocialPost, error) {
	return s.posts[subreddit], nil
}

func TestSocialWorkerMergesPlatforms(t *testing.T) {
	warehouse := testutil.NewMockWarehouse()
	dedup := testutil.NewMockDedupCache()
	twitter := &stubTwitter{enabled: true, posts: []rows.SocialPost{
		testutil.CreateTestSocialPost(testutil.WithPostID("twitter:1")),
	}}
	reddit := &stubReddit{enabled: true, posts: map[string][]rows.SocialPost{
		"CryptoCurrency": {
			testutil.CreateTestSocialPost(testutil.WithPostID("reddit:a"), testutil.WithPlatform("reddit")),
		},
	}}
	sources := config.SocialSources{
		Keywords:   []string{"fetch.ai", "$FET"},
		Subreddits: []string{"CryptoCurrency"},
	}

	worker := NewSocialWorker(sources, twitter, reddit, warehouse, dedup,
		config.WarehouseConfig{SocialTable: "raw_social_posts"}, zap.NewNop())

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.RowsWritten != 2 {
		t.Fatalf("expected 2 posts, got %d", res.RowsWritten)
	}

	// A second run sees both posts as duplicates.
	res, err = worker.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if res.RowsWritten != 0 {
		t.Errorf("expected 0 new posts on re-run, got %d", res.RowsWritten)
	}
}

func TestSocialWorkerSkipsDisabledPlatforms(t *testing.T) {
	warehouse := testutil.NewMockWarehouse()
	worker := NewSocialWorker(
		config.SocialSources{Keywords: []string{"x"}, Subreddits: []string{"y"}},
		&stubTwitter{enabled: false},
		&stubReddit{enabled: false},
		warehouse, testutil.NewMockDedupCache(),
		config.WarehouseConfig{SocialTable: "raw_social_posts"}, zap.NewNop())

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.RowsWritten != 0 || res.ItemsFailed != 0 {
		t.Errorf("expected a clean no-op, got %+v", res)
	}
}
