package rows

import "time"

// Article is an extracted news article appended to the raw_articles table.
// Keyed loosely by URL; dedup across runs is best-effort.
type Article struct {
	URL                string    `bigquery:"url"`
	Title              string    `bigquery:"title"`
	Text               string    `bigquery:"text"`
	Summary            string    `bigquery:"summary"`
	Source             string    `bigquery:"source"`
	PublishedAt        time.Time `bigquery:"published_at"`
	IngestionTimestamp time.Time `bigquery:"ingestion_timestamp"`
}
