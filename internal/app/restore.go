package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bft-labs/snapsync/internal/domain"
	"github.com/bft-labs/snapsync/internal/ports"
)

// Restorer pulls the latest remote snapshot into the local workspace before
// the foreground writer starts.
//
// Restore is strictly best-effort: an absent snapshot is a normal first run,
// and a partial download degrades to a fresh start rather than blocking
// startup. Restored bytes are not checksummed; a torn object left by a prior
// crash is loaded without detection.
type Restorer struct {
	store     ports.ObjectStore
	workspace string
	logger    ports.Logger
}

// NewRestorer creates a Restorer for the given workspace.
func NewRestorer(store ports.ObjectStore, workspace string, logger ports.Logger) *Restorer {
	return &Restorer{
		store:     store,
		workspace: workspace,
		logger:    logger,
	}
}

// Restore downloads every object from the store into the workspace. It runs
// to completion, success or not, so the writer never observes a download in
// progress; individual files land via temp-file-then-rename.
func (r *Restorer) Restore(ctx context.Context) domain.RestoreReport {
	var report domain.RestoreReport

	names, err := r.store.List(ctx, "")
	if err != nil {
		r.logger.Warn("restore skipped: cannot list remote store, starting fresh", ports.Err(err))
		report.Fresh = true
		return report
	}
	if len(names) == 0 {
		r.logger.Info("no remote snapshot found, starting fresh")
		report.Fresh = true
		return report
	}

	for _, name := range names {
		// Leftovers of interrupted snapshot uploads are not part of the
		// canonical state.
		if strings.Contains(name, TempSuffix) {
			continue
		}
		if err := r.restoreObject(ctx, name); err != nil {
			r.logger.Warn("restore of object failed, continuing",
				ports.String("name", name), ports.Err(err))
			restoreFailuresTotal.Inc()
			report.Failed++
			continue
		}
		restoredObjectsTotal.Inc()
		report.Restored++
	}

	r.logger.Info("restore complete",
		ports.Int("restored", report.Restored),
		ports.Int("failed", report.Failed))
	return report
}

// restoreObject downloads one object into the workspace.
func (r *Restorer) restoreObject(ctx context.Context, name string) error {
	rc, err := r.store.Get(ctx, name)
	if err != nil {
		return err
	}
	defer rc.Close()

	localPath := filepath.Join(r.workspace, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(localPath), 0o750); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(localPath), ".partial-"+filepath.Base(localPath))
	if err != nil {
		return err
	}

	_, err = io.Copy(f, rc)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), localPath)
}
