package domain

import "time"

// SyncReport summarizes one Checkpoint-and-Sync pass.
// Every step is best-effort, so a report can carry both uploaded bytes and
// step errors at the same time.
type SyncReport struct {
	// Checkpointed is true when the writer's pending-write log was folded
	// into the database file before the copy.
	Checkpointed bool

	// Atomic is true when the canonical snapshot was replaced through the
	// store's atomic replace primitive, false when the direct-overwrite
	// fallback was taken.
	Atomic bool

	// SnapshotBytes is the size of the database file that was uploaded.
	SnapshotBytes int64

	// AuxUploaded counts auxiliary workspace files copied to the store.
	AuxUploaded int

	// AuxFailed counts auxiliary files whose copy failed. Failures are
	// logged and retried on the next tick, never escalated.
	AuxFailed int

	// Duration is the wall time of the whole pass.
	Duration time.Duration
}

// RestoreReport summarizes the restore-on-start pass.
type RestoreReport struct {
	// Fresh is true when no remote snapshot was found (or the store could
	// not be listed) and the workspace starts empty.
	Fresh bool

	// Restored counts objects downloaded into the workspace.
	Restored int

	// Failed counts objects whose download failed and was skipped.
	Failed int
}
