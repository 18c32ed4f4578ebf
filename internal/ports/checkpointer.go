package ports

import "context"

// Checkpointer folds the writer's pending-write log into the database file
// so that the file-to-be-copied is self-consistent.
//
// It models an optional capability of the foreground writer: when the writer
// exposes no such call, the no-op implementation is selected at startup and
// the resulting copy may be inconsistent. That is an accepted risk, not
// corrected elsewhere.
type Checkpointer interface {
	// Checkpoint performs one checkpoint pass. Best-effort; a failure
	// degrades to an uncheckpointed copy.
	Checkpoint(ctx context.Context) error
}
