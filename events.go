package snapsync

import (
	"github.com/bft-labs/snapsync/internal/app"
	"github.com/bft-labs/snapsync/internal/domain"
)

// State represents the lifecycle state of the agent.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateFinalSync
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateFinalSync:
		return "FinalSync"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// SyncReport summarizes one sync pass.
type SyncReport = domain.SyncReport

// RestoreReport summarizes the restore-on-start pass.
type RestoreReport = domain.RestoreReport

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// EventHandler receives agent events. Handlers are called synchronously from
// the agent's goroutines and must not block.
type EventHandler interface {
	// OnStateChange is called on every lifecycle transition.
	OnStateChange(event StateChangeEvent)

	// OnRestore is called once after restore-on-start completes.
	OnRestore(report RestoreReport)

	// OnSyncSuccess is called after each sync pass that published a snapshot.
	OnSyncSuccess(report SyncReport)

	// OnSyncError is called after each sync pass that failed to publish.
	// The error is informational; the next tick is the retry mechanism.
	OnSyncError(err error)
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnSyncSuccess(report domain.SyncReport) {
	if e.handler == nil {
		return
	}
	e.handler.OnSyncSuccess(report)
}

func (e *eventEmitterWrapper) OnSyncError(err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnSyncError(err)
}

func (e *eventEmitterWrapper) onRestore(report domain.RestoreReport) {
	if e.handler == nil {
		return
	}
	e.handler.OnRestore(report)
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateFinalSync:
		return StateFinalSync
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
