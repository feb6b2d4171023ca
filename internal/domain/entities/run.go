package entities

import "time"

// Run statuses recorded in the ledger.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// Run records a single worker invocation in the local run ledger.
type Run struct {
	ID          string     `db:"id"`
	Worker      string     `db:"worker"`
	Status      string     `db:"status"`
	RowsWritten int64      `db:"rows_written"`
	ItemsFailed int64      `db:"items_failed"`
	Message     string     `db:"message"`
	StartedAt   time.Time  `db:"started_at"`
	FinishedAt  *time.Time `db:"finished_at"`
}
