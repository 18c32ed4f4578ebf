// Package store provides ObjectStore backends for the remote durable store.
//
// Backends are selected by the scheme of the remote URL:
//
//	gs://bucket/prefix     Google Cloud Storage
//	s3://bucket/prefix     Amazon S3 (or any S3-compatible endpoint)
//	file:///path, /path    local or mounted filesystem
//
// A bare filesystem path selects the filesystem backend, matching how the
// original deployment accepted both bucket URLs and plain mount paths.
package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bft-labs/snapsync/internal/ports"
)

// NewStore constructs an ObjectStore for the given remote URL.
func NewStore(ctx context.Context, raw string) (ports.ObjectStore, error) {
	if raw == "" {
		return nil, fmt.Errorf("remote store URL is empty")
	}

	// A bare path is a filesystem root.
	if !strings.Contains(raw, "://") {
		return NewFileSystemStore(raw), nil
	}

	ep, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse store URL %q: %w", raw, err)
	}

	switch ep.Scheme {
	case "file":
		return NewFileSystemStore(ep.Path), nil
	case "gs":
		return NewGCSStore(ctx, ep.Host, strings.TrimPrefix(ep.Path, "/"))
	case "s3":
		return NewS3Store(ep.Host, strings.TrimPrefix(ep.Path, "/"), ep.Query())
	default:
		return nil, fmt.Errorf("unsupported store scheme %q", ep.Scheme)
	}
}
