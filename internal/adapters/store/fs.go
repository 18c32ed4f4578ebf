package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/bft-labs/snapsync/internal/ports"
)

// FileSystemStore implements ObjectStore over a directory, typically a
// mounted network filesystem serving as the durable store. Replace uses
// rename, which is atomic on POSIX filesystems.
type FileSystemStore struct {
	fs   afero.Fs
	root string
}

// NewFileSystemStore creates a store rooted at the given directory on the
// host filesystem.
func NewFileSystemStore(root string) *FileSystemStore {
	return NewFileSystemStoreWithFs(afero.NewOsFs(), root)
}

// NewFileSystemStoreWithFs creates a store over an arbitrary afero filesystem.
// Tests use afero.NewMemMapFs().
func NewFileSystemStoreWithFs(fs afero.Fs, root string) *FileSystemStore {
	return &FileSystemStore{fs: fs, root: root}
}

func (s *FileSystemStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Get returns a reader for the named object.
func (s *FileSystemStore) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := s.fs.Open(s.path(name))
	if os.IsNotExist(err) {
		return nil, ports.ErrNotExist
	}
	return f, err
}

// Put writes the object through a temporary file in the target directory,
// then renames it into place.
func (s *FileSystemStore) Put(ctx context.Context, name string, r io.Reader) error {
	fsPath := s.path(name)
	if err := s.fs.MkdirAll(filepath.Dir(fsPath), 0o750); err != nil {
		return err
	}

	f, err := afero.TempFile(s.fs, filepath.Dir(fsPath), ".partial-"+filepath.Base(fsPath))
	if err != nil {
		return err
	}

	_, err = io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(f.Name())
		return fmt.Errorf("write %s: %w", fsPath, err)
	}
	return s.fs.Rename(f.Name(), fsPath)
}

// List walks the root and returns slash-separated names under prefix, sorted.
func (s *FileSystemStore) List(ctx context.Context, prefix string) ([]string, error) {
	if ok, err := afero.DirExists(s.fs, s.root); err != nil {
		return nil, err
	} else if !ok {
		return nil, nil
	}

	var names []string
	err := afero.Walk(s.fs, s.root, func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, name)
		if err != nil {
			return err
		}
		// Temp files from in-flight Puts are not part of the store contents.
		if strings.HasPrefix(filepath.Base(rel), ".partial-") {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Replace renames tempName over name.
func (s *FileSystemStore) Replace(ctx context.Context, tempName, name string) error {
	return s.fs.Rename(s.path(tempName), s.path(name))
}

// Remove deletes the named object.
func (s *FileSystemStore) Remove(ctx context.Context, name string) error {
	err := s.fs.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

var _ ports.ObjectStore = (*FileSystemStore)(nil)

// join is a helper for building slash-separated object names.
func join(elem ...string) string {
	return path.Join(elem...)
}
