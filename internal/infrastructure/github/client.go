package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

// Repo is the subset of GitHub repository metadata used for scoring.
type Repo struct {
	Name       string `json:"name"`
	FullName   string `json:"full_name"`
	HTMLURL    string `json:"html_url"`
	Archived   bool   `json:"archived"`
	Fork       bool   `json:"fork"`
	Stars      int    `json:"stargazers_count"`
	Forks      int    `json:"forks_count"`
	Watchers   int    `json:"subscribers_count"`
	OpenIssues int    `json:"open_issues_count"`
	HasWiki    bool   `json:"has_wiki"`
	PushedAt   time.Time `json:"pushed_at"`
	License    *struct {
		Key string `json:"key"`
	} `json:"license"`
	Description string `json:"description"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// Client talks to the GitHub REST API v3.
type Client struct {
	baseURL string
	token   string
	http    *httpx.Client
}

// NewClient creates a GitHub API client. An empty token falls back to
// unauthenticated requests with their much lower rate limits.
func NewClient(token string, http *httpx.Client) *Client {
	return &Client{
		baseURL: "https://api.github.com",
		token:   token,
		http:    http,
	}
}

func (c *Client) headers() http.Header {
	h := http.Header{"Accept": {"application/vnd.github+json"}}
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}

// OwnerRepos lists public repositories of a user or organization, most
// recently pushed first.
func (c *Client) OwnerRepos(ctx context.Context, owner string) ([]Repo, error) {
	params := url.Values{
		"type":     {"owner"},
		"sort":     {"pushed"},
		"per_page": {"100"},
	}

	var repos []Repo
	err := c.http.GetJSON(ctx, c.baseURL+"/users/"+url.PathEscape(owner)+"/repos", params, c.headers(), &repos)
	if err != nil {
		// User listings 404 for organizations.
		params = url.Values{
			"type":     {"public"},
			"sort":     {"pushed"},
			"per_page": {"100"},
		}
		if orgErr := c.http.GetJSON(ctx, c.baseURL+"/orgs/"+url.PathEscape(owner)+"/repos", params, c.headers(), &repos); orgErr != nil {
			return nil, fmt.Errorf("github repos for %s: %w", owner, err)
		}
	}
	return repos, nil
}

// GetRepo fetches one repository by owner and name.
func (c *Client) GetRepo(ctx context.Context, owner, name string) (*Repo, error) {
	var repo Repo
	target := c.baseURL + "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name)
	if err := c.http.GetJSON(ctx, target, nil, c.headers(), &repo); err != nil {
		return nil, fmt.Errorf("github repo %s/%s: %w", owner, name, err)
	}
	return &repo, nil
}

func (c *Client) repoPath(owner, name, suffix string) string {
	return c.baseURL + "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name) + suffix
}

// WeeklyCommits returns per-week commit totals for the last year, most
// recent week last. GitHub returns 202 while the stats are being
// computed; that surfaces as an error here and callers treat it as no
// data.
func (c *Client) WeeklyCommits(ctx context.Context, owner, name string) ([]int, error) {
	var weeks []struct {
		Total int `json:"total"`
	}
	if err := c.http.GetJSON(ctx, c.repoPath(owner, name, "/stats/commit_activity"), nil, c.headers(), &weeks); err != nil {
		return nil, fmt.Errorf("github commit activity %s/%s: %w", owner, name, err)
	}
	totals := make([]int, len(weeks))
	for i, w := range weeks {
		totals[i] = w.Total
	}
	return totals, nil
}

// LatestReleaseAt returns the publish time of the latest release, or the
// zero time when the repository has none.
func (c *Client) LatestReleaseAt(ctx context.Context, owner, name string) (time.Time, error) {
	var release struct {
		PublishedAt time.Time `json:"published_at"`
	}
	err := c.http.GetJSON(ctx, c.repoPath(owner, name, "/releases/latest"), nil, c.headers(), &release)
	if err != nil {
		var statusErr *httpx.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("github latest release %s/%s: %w", owner, name, err)
	}
	return release.PublishedAt, nil
}

// HasContributors reports whether the repository lists at least one
// contributor.
func (c *Client) HasContributors(ctx context.Context, owner, name string) bool {
	params := url.Values{"per_page": {"1"}, "anon": {"true"}}
	var contributors []struct {
		Contributions int `json:"contributions"`
	}
	if err := c.http.GetJSON(ctx, c.repoPath(owner, name, "/contributors"), params, c.headers(), &contributors); err != nil {
		return false
	}
	return len(contributors) > 0
}

// ReadmeSize returns the byte size of the repository README, or 0 when
// it has none.
func (c *Client) ReadmeSize(ctx context.Context, owner, name string) int {
	var readme struct {
		Size int `json:"size"`
	}
	if err := c.http.GetJSON(ctx, c.repoPath(owner, name, "/readme"), nil, c.headers(), &readme); err != nil {
		return 0
	}
	return readme.Size
}

// HasContent reports whether a path exists in the repository tree.
func (c *Client) HasContent(ctx context.Context, owner, name, path string) bool {
	var probe json.RawMessage
	err := c.http.GetJSON(ctx, c.repoPath(owner, name, "/contents/"+path), nil, c.headers(), &probe)
	return err == nil
}

// WorkflowCount returns the number of GitHub Actions workflows.
func (c *Client) WorkflowCount(ctx context.Context, owner, name string) int {
	var workflows struct {
		TotalCount int `json:"total_count"`
	}
	if err := c.http.GetJSON(ctx, c.repoPath(owner, name, "/actions/workflows"), nil, c.headers(), &workflows); err != nil {
		return 0
	}
	return workflows.TotalCount
}

var repoURLRe = regexp.MustCompile(`github\.com/([^/]+)(?:/([^/?#]+))?`)

// ParseRepoURL splits a GitHub link into owner and repository name. The
// repo part is empty for owner-level links.
func ParseRepoURL(link string) (owner, repo string, err error) {
	m := repoURLRe.FindStringSubmatch(link)
	if m == nil {
		return "", "", fmt.Errorf("not a github url: %s", link)
	}
	owner = m[1]
	repo = strings.TrimSuffix(m[2], ".git")
	return owner, repo, nil
}
