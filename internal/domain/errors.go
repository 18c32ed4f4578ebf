package domain

import "errors"

// Common lifecycle and sync errors.
var (
	// ErrNotRunning is returned when Stop is called on an agent that is not running.
	ErrNotRunning = errors.New("not running")

	// ErrAlreadyRunning is returned when Start is called on an agent that is already running.
	ErrAlreadyRunning = errors.New("already running")

	// ErrNotExist is returned by object stores when the named object is absent.
	ErrNotExist = errors.New("object does not exist")

	// ErrReplaceUnsupported is returned by object stores that cannot replace
	// the canonical object atomically. Callers fall back to a direct overwrite,
	// accepting a brief torn-write window.
	ErrReplaceUnsupported = errors.New("atomic replace unsupported")
)
