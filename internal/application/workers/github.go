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
	"github.com/bimakw/market-intel/internal/infrastructure/github"
)

type repoSource interface {
	OwnerRepos(ctx context.Context, owner string) ([]github.Repo, error)
	GetRepo(ctx context.Context, owner, name string) (*github.Repo, error)
	WeeklyCommits(ctx context.Context, owner, name string) ([]int, error)
	LatestReleaseAt(ctx context.Context, owner, name string) (time.Time, error)
	HasContributors(ctx context.Context, owner, name string) bool
	ReadmeSize(ctx context.Context, owner, name string) int
	HasContent(ctx context.Context, owner, name, path string) bool
	WorkflowCount(ctx context.Context, owner, name string) int
}

// GitHubWorker scores project repositories on activity, community,
// engineering practices, and code relevance. Owner-level links resolve
// to the most protocol-looking repository first.
type GitHubWorker struct {
	projects  repositories.ProjectReader
	warehouse repositories.Appender
	source    repoSource
	cfg       config.GitHubConfig
	tables    config.WarehouseConfig
	logger    *zap.Logger
}

func NewGitHubWorker(
	projects repositories.ProjectReader,
	warehouse repositories.Appender,
	source repoSource,
	cfg config.GitHubConfig,
	tables config.WarehouseConfig,
	logger *zap.Logger,
) *GitHubWorker {
	return &GitHubWorker{
		projects:  projects,
		warehouse: warehouse,
		source:    source,
		cfg:       cfg,
		tables:    tables,
		logger:    logger,
	}
}

func (w *GitHubWorker) Name() string { return "github" }

func (w *GitHubWorker) Run(ctx context.Context) (*Result, error) {
	projects, err := w.projects.ProjectRepos(ctx, 7*24*time.Hour, w.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects with repositories: %w", err)
	}
	if len(projects) == 0 {
		return &Result{Message: "no repositories pending scoring"}, nil
	}

	res := &Result{}
	now := time.Now().UTC()
	var records []any
	for _, p := range projects {
		row, err := w.scoreProject(ctx, p, now)
		if err != nil {
			w.logger.Warn("failed to score repository",
				zap.String("project", p.ProjectID),
				zap.String("url", p.GitHubURL),
				zap.Error(err),
			)
			res.ItemsFailed++
			continue
		}
		records = append(records, *row)
	}

	written, failed, appendErr := appendBatches(ctx, w.warehouse, w.tables.GitHubTable, records, 0, w.logger)
	res.RowsWritten = written
	res.ItemsFailed += failed
	res.Message = fmt.Sprintf("%d repositories scored", len(records))
	return res, appendErr
}

func (w *GitHubWorker) scoreProject(ctx context.Context, p repositories.ProjectRepo, now time.Time) (*rows.GitHubScore, error) {
	owner, name, err := github.ParseRepoURL(p.GitHubURL)
	if err != nil {
		return nil, err
	}
	if name == "" {
		repos, err := w.source.OwnerRepos(ctx, owner)
		if err != nil {
			return nil, err
		}
		best := selectBestRepo(repos)
		if best == nil {
			return nil, fmt.Errorf("no scoreable repository for owner %s", owner)
		}
		if best.Owner.Login != "" {
			owner = best.Owner.Login
		}
		name = best.Name
	}

	repo, err := w.source.GetRepo(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	activity := w.activityScore(ctx, repo, owner, name, now)
	community := w.communityScore(ctx, repo, owner, name)
	practices := w.practicesScore(ctx, repo, owner, name)
	relevance := w.relevanceScore(ctx, owner, name)

	repoType := "website_or_unknown"
	if relevance >= 5 {
		repoType = "dapp_or_protocol"
	}

	return &rows.GitHubScore{
		ProjectID:          p.ProjectID,
		Repository:         fmt.Sprintf("https://github.com/%s/%s", owner, name),
		RepoType:           repoType,
		ActivityScore:      activity,
		CommunityScore:     community,
		BestPracticesScore: practices,
		RelevanceScore:     relevance,
		TotalScore:         activity + community + practices + relevance,
		AnalyzedAt:         now,
	}, nil
}

// selectBestRepo picks the repository most likely to hold the project's
// actual code out of an owner listing.
func selectBestRepo(repos []github.Repo) *github.Repo {
	bestScore := -1 << 30
	var best *github.Repo
	for i := range repos {
		repo := &repos[i]
		if repo.Archived || repo.Fork {
			continue
		}
		score := repo.Stars + repo.Forks*2
		name := strings.ToLower(repo.Name)
		for _, k := range []string{"protocol", "core", "contracts", "dapp"} {
			if strings.Contains(name, k) {
				score += 100
				break
			}
		}
		for _, k := range []string{"website", "docs", ".github.io"} {
			if strings.Contains(name, k) {
				score -= 100
				break
			}
		}
		if score > bestScore {
			bestScore = score
			best = repo
		}
	}
	return best
}

func (w *GitHubWorker) activityScore(ctx context.Context, repo *github.Repo, owner, name string, now time.Time) float64 {
	score := 0.0

	weeks, err := w.source.WeeklyCommits(ctx, owner, name)
	if err == nil && len(weeks) > 0 {
		start := len(weeks) - 4
		if start < 0 {
			start = 0
		}
		total := 0
		for _, n := range weeks[start:] {
			total += n
		}
		score += min(float64(total)/10, 20)
	}

	releasedAt, err := w.source.LatestReleaseAt(ctx, owner, name)
	if err == nil && !releasedAt.IsZero() && now.Sub(releasedAt) < 90*24*time.Hour {
		score += 5
	}

	penalty := 5 - float64(repo.OpenIssues)/50
	if penalty > 0 {
		score += penalty
	}
	return score
}

func (w *GitHubWorker) communityScore(ctx context.Context, repo *github.Repo, owner, name string) float64 {
	score := min(float64(repo.Stars)/100, 20)
	score += min(float64(repo.Forks)/50, 10)
	if w.source.HasContributors(ctx, owner, name) {
		score += 5
	}
	return score
}

func (w *GitHubWorker) practicesScore(ctx context.Context, repo *github.Repo, owner, name string) float64 {
	score := 0.0
	if repo.License != nil {
		score += 5
	}
	if w.source.ReadmeSize(ctx, owner, name) > 1000 {
		score += 5
	}
	if w.source.HasContent(ctx, owner, name, "CONTRIBUTING.md") {
		score += 5
	}
	if w.source.WorkflowCount(ctx, owner, name) > 0 {
		score += 5
	}
	return score
}

func (w *GitHubWorker) relevanceScore(ctx context.Context, owner, name string) float64 {
	score := 0.0
	for _, manifest := range []string{"package.json", "requirements.txt", "go.mod", "Cargo.toml"} {
		if w.source.HasContent(ctx, owner, name, manifest) {
			score += 5
			break
		}
	}
	if w.source.HasContent(ctx, owner, name, "tests") {
		score += 5
	}
	if w.source.HasContent(ctx, owner, name, "contracts") {
		score += 5
	}
	return score
}
