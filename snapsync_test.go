package snapsync

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/snapsync/internal/adapters/store"
)

var errFinalSync = errors.New("injected store failure")

func newReader(s string) io.Reader {
	return bytes.NewReader([]byte(s))
}

// passCheckpointer is a no-op checkpoint capability for tests.
type passCheckpointer struct{}

func (passCheckpointer) Checkpoint(ctx context.Context) error { return nil }

// recordingHandler captures all agent events.
type recordingHandler struct {
	mu         sync.Mutex
	states     []StateChangeEvent
	restores   []RestoreReport
	syncs      []SyncReport
	syncErrors []error
}

func (h *recordingHandler) OnStateChange(event StateChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, event)
}

func (h *recordingHandler) OnRestore(report RestoreReport) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.restores = append(h.restores, report)
}

func (h *recordingHandler) OnSyncSuccess(report SyncReport) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.syncs = append(h.syncs, report)
}

func (h *recordingHandler) OnSyncError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.syncErrors = append(h.syncErrors, err)
}

func (h *recordingHandler) stateSequence() []State {
	h.mu.Lock()
	defer h.mu.Unlock()
	var seq []State
	for _, e := range h.states {
		seq = append(seq, e.Current)
	}
	return seq
}

func newTestAgent(t *testing.T, st Store, opts ...Option) (*Snapsync, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := Config{
		WorkspaceDir: dir,
		RemoteURL:    "mem://unused",
		SyncInterval: time.Hour, // no ticks fire during tests
	}
	opts = append([]Option{
		WithStore(st),
		WithCheckpointer(passCheckpointer{}),
	}, opts...)
	s, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, dir
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing workspace", Config{RemoteURL: "/remote"}},
		{"missing remote", Config{WorkspaceDir: "/work"}},
		{"negative interval", Config{WorkspaceDir: "/work", RemoteURL: "/remote", SyncInterval: -time.Second}},
		{"unknown checkpoint mode", Config{WorkspaceDir: "/work", RemoteURL: "/remote", Checkpoint: "mysql"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("New() error = nil, want validation error")
			}
		})
	}
}

func TestNew_UnsupportedStoreScheme(t *testing.T) {
	cfg := Config{WorkspaceDir: t.TempDir(), RemoteURL: "ftp://host/path"}
	if _, err := New(cfg); err == nil {
		t.Error("New() error = nil, want unsupported scheme error")
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	cfg := Config{WorkspaceDir: t.TempDir(), RemoteURL: t.TempDir()}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.config.DBName != DefaultDBName {
		t.Errorf("DBName = %q, want %q", s.config.DBName, DefaultDBName)
	}
	if s.config.SyncInterval != 30*time.Second {
		t.Errorf("SyncInterval = %v, want 30s", s.config.SyncInterval)
	}
	if s.Status() != StateStopped {
		t.Errorf("Status() = %v, want StateStopped", s.Status())
	}
}

func TestSnapsync_StartRestoresBeforeReturning(t *testing.T) {
	st := store.NewMemoryStore()
	if err := st.Put(context.Background(), "app.db", newReader("restored database")); err != nil {
		t.Fatal(err)
	}

	handler := &recordingHandler{}
	s, dir := newTestAgent(t, st, WithEventHandler(handler))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = s.Stop() }()

	// Restore is synchronous: the file must be in place once Start returns.
	got, err := os.ReadFile(filepath.Join(dir, "app.db"))
	if err != nil {
		t.Fatalf("read restored database: %v", err)
	}
	if string(got) != "restored database" {
		t.Errorf("restored database = %q, want %q", got, "restored database")
	}

	handler.mu.Lock()
	restores := len(handler.restores)
	handler.mu.Unlock()
	if restores != 1 {
		t.Errorf("OnRestore calls = %d, want 1", restores)
	}

	if s.Status() != StateRunning {
		t.Errorf("Status() = %v, want StateRunning", s.Status())
	}
}

func TestSnapsync_StopPerformsExactlyOneFinalSync(t *testing.T) {
	st := store.NewMemoryStore()
	handler := &recordingHandler{}
	s, dir := newTestAgent(t, st, WithEventHandler(handler))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// The writer produces the database after startup; no tick fires before
	// Stop, so the final sync is the only chance to publish it.
	if err := os.WriteFile(filepath.Join(dir, "app.db"), []byte("final state"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if got := string(st.Bytes("app.db")); got != "final state" {
		t.Errorf("stored snapshot = %q, want %q", got, "final state")
	}
	if st.Replaces() != 1 {
		t.Errorf("Replaces() = %d, want exactly 1 (the final sync)", st.Replaces())
	}

	want := []State{StateStarting, StateRunning, StateStopping, StateFinalSync, StateStopped}
	got := handler.stateSequence()
	if len(got) != len(want) {
		t.Fatalf("state sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("state sequence = %v, want %v", got, want)
		}
	}

	if s.Status() != StateStopped {
		t.Errorf("Status() = %v, want StateStopped", s.Status())
	}
}

func TestSnapsync_FinalSyncFailureDoesNotFailStop(t *testing.T) {
	st := store.NewMemoryStore()
	handler := &recordingHandler{}
	s, dir := newTestAgent(t, st, WithEventHandler(handler))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "app.db"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Break every store operation on the canonical object before Stop.
	st.Errs = map[string]error{"app.db": errFinalSync}

	if err := s.Stop(); err != nil {
		t.Errorf("Stop() = %v, want nil (final sync failures are swallowed)", err)
	}

	handler.mu.Lock()
	syncErrors := len(handler.syncErrors)
	handler.mu.Unlock()
	if syncErrors != 1 {
		t.Errorf("OnSyncError calls = %d, want 1", syncErrors)
	}
}

func TestSnapsync_DoubleStart(t *testing.T) {
	s, _ := newTestAgent(t, store.NewMemoryStore())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = s.Stop() }()

	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start() error = nil, want error")
	}
}

func TestSnapsync_StopWhenStopped(t *testing.T) {
	s, _ := newTestAgent(t, store.NewMemoryStore())

	if err := s.Stop(); err == nil {
		t.Error("Stop() on stopped agent error = nil, want error")
	}
}

func TestSnapsync_Restart(t *testing.T) {
	s, _ := newTestAgent(t, store.NewMemoryStore())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}
