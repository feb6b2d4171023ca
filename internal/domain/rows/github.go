package rows

import "time"

// GitHubScore is a repository activity assessment appended to the
// github_scores table.
type GitHubScore struct {
	ProjectID          string    `bigquery:"project_id"`
	Repository         string    `bigquery:"repository"`
	RepoType           string    `bigquery:"repo_type"`
	ActivityScore      float64   `bigquery:"activity_score"`
	CommunityScore     float64   `bigquery:"community_score"`
	BestPracticesScore float64   `bigquery:"best_practices_score"`
	RelevanceScore     float64   `bigquery:"relevance_score"`
	TotalScore         float64   `bigquery:"total_score"`
	AnalyzedAt         time.Time `bigquery:"analyzed_at"`
}
