package repositories

import "context"

// DedupCache tracks items already processed in earlier runs. Best-effort:
// a cache outage downgrades dedup, it never fails a run.
type DedupCache interface {
	// Seen reports whether key was marked in the given namespace.
	Seen(ctx context.Context, namespace, key string) (bool, error)

	// MarkSeen marks key in the given namespace.
	MarkSeen(ctx context.Context, namespace, key string) error
}
