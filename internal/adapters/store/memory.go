package store

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/bft-labs/snapsync/internal/ports"
)

// MemoryStore is an in-memory ObjectStore for tests.
//
// With DisableReplace set it reports ErrReplaceUnsupported, exercising the
// non-atomic direct-overwrite fallback in the sync path.
type MemoryStore struct {
	mu      sync.RWMutex
	content map[string][]byte

	// DisableReplace makes Replace return ErrReplaceUnsupported.
	DisableReplace bool

	// Errs, when non-nil, is consulted by every operation; a non-nil entry
	// for an object name makes the operation fail with that error.
	Errs map[string]error

	puts     int
	replaces int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{content: make(map[string][]byte)}
}

func (m *MemoryStore) fail(name string) error {
	if m.Errs == nil {
		return nil
	}
	return m.Errs[name]
}

// Get returns a reader for the named object.
func (m *MemoryStore) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.fail(name); err != nil {
		return nil, err
	}
	content, ok := m.content[name]
	if !ok {
		return nil, ports.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// Put stores the object contents.
func (m *MemoryStore) Put(ctx context.Context, name string, r io.Reader) error {
	buf, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail(name); err != nil {
		return err
	}
	m.content[name] = buf
	m.puts++
	return nil
}

// List returns names under prefix, sorted.
func (m *MemoryStore) List(ctx context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name := range m.content {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Replace moves tempName over name, or reports ErrReplaceUnsupported.
func (m *MemoryStore) Replace(ctx context.Context, tempName, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DisableReplace {
		return ports.ErrReplaceUnsupported
	}
	if err := m.fail(name); err != nil {
		return err
	}
	content, ok := m.content[tempName]
	if !ok {
		return ports.ErrNotExist
	}
	m.content[name] = content
	delete(m.content, tempName)
	m.replaces++
	return nil
}

// Remove deletes the named object.
func (m *MemoryStore) Remove(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.content, name)
	return nil
}

// Bytes returns a copy of the named object's contents, or nil when absent.
func (m *MemoryStore) Bytes(name string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.content[name]
	if !ok {
		return nil
	}
	return append([]byte(nil), content...)
}

// Puts returns how many Put calls have completed.
func (m *MemoryStore) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

// Replaces returns how many Replace calls have completed.
func (m *MemoryStore) Replaces() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.replaces
}

var _ ports.ObjectStore = (*MemoryStore)(nil)
