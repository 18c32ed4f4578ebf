package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/bft-labs/snapsync/internal/ports"
)

// GCSStore implements ObjectStore over a Google Cloud Storage bucket.
//
// Object writes in GCS are atomic, so Replace is realized as a server-side
// copy of the temp object onto the canonical name followed by a best-effort
// delete of the temp object.
type GCSStore struct {
	bucket *storage.BucketHandle
	prefix string
}

// NewGCSStore creates a store over gs://bucket/prefix using application
// default credentials.
func NewGCSStore(ctx context.Context, bucket, prefix string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return NewGCSStoreWithClient(client, bucket, prefix), nil
}

// NewGCSStoreWithClient creates a store over an existing client. Tests use
// this with a client pointed at a fake GCS server.
func NewGCSStoreWithClient(client *storage.Client, bucket, prefix string) *GCSStore {
	return &GCSStore{bucket: client.Bucket(bucket), prefix: prefix}
}

func (s *GCSStore) object(name string) *storage.ObjectHandle {
	return s.bucket.Object(join(s.prefix, name))
}

// Get returns a reader for the named object.
func (s *GCSStore) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	r, err := s.object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ports.ErrNotExist
	}
	return r, err
}

// Put writes the object. GCS uploads are all-or-nothing: the object becomes
// visible only when the writer is closed without error.
func (s *GCSStore) Put(ctx context.Context, name string, r io.Reader) error {
	w := s.object(name).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs put %s: %w", name, err)
	}
	return w.Close()
}

// List returns names under prefix relative to the store root, sorted.
func (s *GCSStore) List(ctx context.Context, prefix string) ([]string, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: join(s.prefix, prefix)})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs list: %w", err)
		}
		// Skip directory placeholders.
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}
		name := attrs.Name
		if s.prefix != "" {
			name = strings.TrimPrefix(strings.TrimPrefix(name, s.prefix), "/")
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Replace copies tempName onto name server-side, then deletes tempName.
func (s *GCSStore) Replace(ctx context.Context, tempName, name string) error {
	src := s.object(tempName)
	if _, err := s.object(name).CopierFrom(src).Run(ctx); err != nil {
		return fmt.Errorf("gcs replace %s: %w", name, err)
	}
	// The canonical object is already in place; a leaked temp object is
	// harmless, so the delete is best-effort.
	_ = src.Delete(ctx)
	return nil
}

// Remove deletes the named object.
func (s *GCSStore) Remove(ctx context.Context, name string) error {
	err := s.object(name).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

var _ ports.ObjectStore = (*GCSStore)(nil)
