package workers

import (
	"context"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/github"
	"github.com/bimakw/market-intel/internal/testutil"
)

type stubRepoSource struct {
	repos     []github.Repo
	repo      *github.Repo
	commits   []int
	released  time.Time
	readme    int
	workflows int
	contents  map[string]bool
	contribs  bool
}

func (s *stubRepoSource) OwnerRepos(ctx context.Context, owner string) ([]github.Repo, error) {
	return s.repos, nil
}

func (s *stubRepoSource) GetRepo(ctx context.Context, owner, name string) (*github.Repo, error) {
	return s.repo, nil
}

func (s *stubRepoSource) WeeklyCommits(ctx context.Context, owner, name string) ([]int, error) {
	return s.commits, nil
}

func (s *stubRepoSource) LatestReleaseAt(ctx context.Context, owner, name string) (time.Time, error) {
	return s.released, nil
}

func (s *stubRepoSource) HasContributors(ctx context.Context, owner, name string) bool {
	return s.contribs
}

func (s *stubRepoSource) ReadmeSize(ctx context.Context, owner, name string) int { return s.readme }

func (s *stubRepoSource) HasContent(ctx context.Context, owner, name, path string) bool {
	return s.contents[path]
}

func (s *stubRepoSource) WorkflowCount(ctx context.Context, owner, name string) int {
	return s.workflows
}

func TestSelectBestRepo(t *testing.T) {
	repos := []github.Repo{
		{Name: "website", Stars: 500},
		{Name: "token-core", Stars: 50, Forks: 10},
		{Name: "old-protocol", Stars: 40, Archived: true},
		{Name: "fork-of-something", Stars: 900, Fork: true},
	}

	best := selectBestRepo(repos)
	if best == nil {
		t.Fatal("expected a best repo")
	}
	// website: 500-100=400, token-core: 50+20+100=170... website still
	// wins on raw stars, which mirrors the listing heuristic.
	if best.Name != "website" {
		t.Errorf("expected website (highest adjusted score), got %s", best.Name)
	}
}

func TestSelectBestRepoPrefersProtocolNames(t *testing.T) {
	repos := []github.Repo{
		{Name: "docs", Stars: 120},
		{Name: "contracts", Stars: 30, Forks: 5},
	}

	best := selectBestRepo(repos)
	if best == nil || best.Name != "contracts" {
		t.Fatalf("expected contracts to win, got %+v", best)
	}
}

func TestSelectBestRepoSkipsArchivedAndForks(t *testing.T) {
	repos := []github.Repo{
		{Name: "protocol", Stars: 1000, Archived: true},
		{Name: "mirror", Stars: 1000, Fork: true},
	}
	if best := selectBestRepo(repos); best != nil {
		t.Errorf("expected no candidate, got %s", best.Name)
	}
}

func TestGitHubWorkerScoresDirectRepo(t *testing.T) {
	now := time.Now().UTC()
	source := &stubRepoSource{
		repo: &github.Repo{
			Name:       "agent-protocol",
			Stars:      2000,
			Forks:      500,
			OpenIssues: 10,
			License:    &struct {
				Key string `json:"key"`
			}{Key: "mit"},
		},
		commits:   []int{0, 1, 2, 50, 60, 70, 80},
		released:  now.Add(-30 * 24 * time.Hour),
		readme:    5000,
		workflows: 2,
		contribs:  true,
		contents: map[string]bool{
			"CONTRIBUTING.md": true,
			"package.json":    true,
			"tests":           true,
			"contracts":       true,
		},
	}

	warehouse := testutil.NewMockWarehouse()
	warehouse.ProjectReposFunc = func(ctx context.Context, staleAfter time.Duration, limit int) ([]repositories.ProjectRepo, error) {
		return []repositories.ProjectRepo{
			{ProjectID: "fetch-ai", GitHubURL: "https://github.com/fetchai/agent-protocol"},
		}, nil
	}

	worker := NewGitHubWorker(warehouse, warehouse, source,
		config.GitHubConfig{BatchSize: 20},
		config.WarehouseConfig{GitHubTable: "github_scores"},
		zap.NewNop())

	res, err := worker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.RowsWritten != 1 {
		t.Fatalf("expected 1 score row, got %d", res.RowsWritten)
	}

	score := warehouse.AppendedRows("github_scores")[0].(rows.GitHubScore)
	if score.ProjectID != "fetch-ai" {
		t.Errorf("unexpected project %s", score.ProjectID)
	}
	if score.Repository != "https://github.com/fetchai/agent-protocol" {
		t.Errorf("unexpected repository %s", score.Repository)
	}
	// Last four weeks sum to 260 commits, capped at 20; recent release
	// +5; issue penalty 5-10/50=4.8.
	if want := 29.8; math.Abs(score.ActivityScore-want) > 1e-9 {
		t.Errorf("expected activity %v, got %v", want, score.ActivityScore)
	}
	// Stars and forks both cap, plus contributors.
	if want := 35.0; score.CommunityScore != want {
		t.Errorf("expected community %v, got %v", want, score.CommunityScore)
	}
	if want := 20.0; score.BestPracticesScore != want {
		t.Errorf("expected practices %v, got %v", want, score.BestPracticesScore)
	}
	if want := 15.0; score.RelevanceScore != want {
		t.Errorf("expected relevance %v, got %v", want, score.RelevanceScore)
	}
	if score.RepoType != "dapp_or_protocol" {
		t.Errorf("unexpected repo type %s", score.RepoType)
	}
	if score.TotalScore != score.ActivityScore+score.CommunityScore+score.BestPracticesScore+score.RelevanceScore {
		t.Error("total should be the sum of the subscores")
	}
}
