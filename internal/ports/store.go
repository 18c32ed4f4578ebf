package ports

import (
	"context"
	"io"

	"github.com/bft-labs/snapsync/internal/domain"
)

// ObjectStore is the remote durable store holding snapshots.
//
// The store offers no locking and no transactions. Atomicity of snapshot
// replacement is approximated by writing to a temporary name and then calling
// Replace; backends without an atomic replace primitive return
// ErrReplaceUnsupported and the caller degrades to a direct overwrite.
type ObjectStore interface {
	// Get returns a reader for the named object.
	// Returns ErrNotExist when the object is absent.
	Get(ctx context.Context, name string) (io.ReadCloser, error)

	// Put durably writes the object, overwriting any prior content.
	Put(ctx context.Context, name string, r io.Reader) error

	// List enumerates object names under the given prefix, relative to the
	// store root, in lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Replace atomically replaces the object at name with the object at
	// tempName, consuming tempName. Returns ErrReplaceUnsupported when the
	// backend has no atomic primitive.
	Replace(ctx context.Context, tempName, name string) error

	// Remove deletes the named object. Removing an absent object is not an error.
	Remove(ctx context.Context, name string) error
}

// Store error sentinels, re-exported for adapter implementations.
var (
	ErrNotExist           = domain.ErrNotExist
	ErrReplaceUnsupported = domain.ErrReplaceUnsupported
)
