package rows

import "time"

// SocialPost is a raw social network post appended to the raw_social_posts
// table.
type SocialPost struct {
	PostID             string    `bigquery:"post_id"`
	Platform           string    `bigquery:"platform"`
	Author             string    `bigquery:"author"`
	Text               string    `bigquery:"text"`
	PostedAt           time.Time `bigquery:"posted_at"`
	Subreddit          string    `bigquery:"subreddit"`
	Score              int64     `bigquery:"score"`
	IngestionTimestamp time.Time `bigquery:"ingestion_timestamp"`
}

// Sentiment is a per-asset sentiment observation appended to the
// social_sentiment table.
type Sentiment struct {
	AssetID            string    `bigquery:"asset_id"`
	PostID             string    `bigquery:"post_id"`
	Platform           string    `bigquery:"platform"`
	Label              string    `bigquery:"label"`
	SentimentScore     float64   `bigquery:"sentiment_score"`
	ObservedAt         time.Time `bigquery:"observed_at"`
	IngestionTimestamp time.Time `bigquery:"ingestion_timestamp"`
}
