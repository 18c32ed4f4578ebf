package checkpoint

import (
	"context"

	"github.com/bft-labs/snapsync/internal/ports"
)

// NoopCheckpointer is selected when the writer exposes no checkpoint
// capability. The copy taken by the sync step may then be inconsistent;
// that risk is accepted rather than corrected by other means.
type NoopCheckpointer struct{}

// NewNoopCheckpointer creates a no-op checkpointer.
func NewNoopCheckpointer() *NoopCheckpointer {
	return &NoopCheckpointer{}
}

// Checkpoint does nothing.
func (NoopCheckpointer) Checkpoint(ctx context.Context) error {
	return nil
}

var _ ports.Checkpointer = (*NoopCheckpointer)(nil)
