package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/snapsync/internal/domain"
	"github.com/bft-labs/snapsync/internal/ports"
)

// TempSuffix marks in-flight snapshot uploads in the store. Objects carrying
// it are skipped by restore.
const TempSuffix = ".tmp-"

// defaultAuxParallelism bounds concurrent auxiliary uploads.
const defaultAuxParallelism = 4

// SyncerConfig configures a Syncer.
type SyncerConfig struct {
	// WorkspaceDir is the local root holding the database and auxiliary files.
	WorkspaceDir string

	// DBName is the canonical database filename within the workspace. The
	// remote snapshot is stored under the same name: last sync wins, no
	// history is retained.
	DBName string

	// AuxParallelism bounds concurrent auxiliary uploads. Defaults to 4.
	AuxParallelism int
}

// Syncer performs one Checkpoint-and-Sync pass per call.
//
// Every step is best-effort and independently degraded: a failed checkpoint
// yields an uncheckpointed copy, a store without atomic replace yields a
// direct overwrite with a documented torn-write window, and failed auxiliary
// uploads are retried by the next tick. No failure here may ever reach the
// foreground writer.
type Syncer struct {
	config SyncerConfig
	store  ports.ObjectStore
	ckpt   ports.Checkpointer
	logger ports.Logger
}

// NewSyncer creates a Syncer with the given dependencies.
func NewSyncer(config SyncerConfig, store ports.ObjectStore, ckpt ports.Checkpointer, logger ports.Logger) *Syncer {
	if config.AuxParallelism <= 0 {
		config.AuxParallelism = defaultAuxParallelism
	}
	return &Syncer{
		config: config,
		store:  store,
		ckpt:   ckpt,
		logger: logger,
	}
}

// Sync runs one pass: checkpoint, snapshot upload, atomic replace (or
// fallback overwrite), auxiliary upload.
//
// The returned error reports only a failure to publish the database
// snapshot; callers log it and rely on the next tick (or the final shutdown
// sync) as the retry mechanism.
func (s *Syncer) Sync(ctx context.Context) (domain.SyncReport, error) {
	var report domain.SyncReport
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
		syncsTotal.Inc()
	}()

	// Step 1: fold the pending-write log so the copy is self-consistent.
	if err := s.ckpt.Checkpoint(ctx); err != nil {
		s.logger.Warn("checkpoint failed, copying without checkpoint", ports.Err(err))
	} else {
		report.Checkpointed = true
	}

	// Steps 2 and 3: snapshot the database file.
	err := s.syncSnapshot(ctx, &report)
	if err != nil {
		syncFailuresTotal.Inc()
	} else if report.SnapshotBytes > 0 {
		syncBytesTotal.Add(float64(report.SnapshotBytes))
		lastSyncTimestamp.SetToCurrentTime()
	}

	// Step 4: auxiliary files, regardless of the snapshot outcome.
	s.syncAuxiliary(ctx, &report)

	return report, err
}

// syncSnapshot copies the database file to a temporary object and swings the
// canonical name onto it.
func (s *Syncer) syncSnapshot(ctx context.Context, report *domain.SyncReport) error {
	dbPath := filepath.Join(s.config.WorkspaceDir, s.config.DBName)

	fi, err := os.Stat(dbPath)
	if os.IsNotExist(err) {
		// The writer has not created the database yet. Nothing to publish.
		s.logger.Debug("database file absent, skipping snapshot", ports.String("path", dbPath))
		return nil
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", dbPath, err)
	}

	f, err := os.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", dbPath, err)
	}

	tempName := s.config.DBName + TempSuffix + uuid.NewString()
	err = s.store.Put(ctx, tempName, f)
	f.Close()
	if err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}
	report.SnapshotBytes = fi.Size()

	err = s.store.Replace(ctx, tempName, s.config.DBName)
	switch {
	case err == nil:
		report.Atomic = true
		return nil
	case errors.Is(err, ports.ErrReplaceUnsupported):
		// Direct overwrite. This reintroduces a torn-write window on the
		// canonical object; the store simply offers nothing better.
		return s.overwriteSnapshot(ctx, dbPath, tempName)
	default:
		return fmt.Errorf("replace snapshot: %w", err)
	}
}

// overwriteSnapshot is the non-atomic fallback for stores without a replace
// primitive.
func (s *Syncer) overwriteSnapshot(ctx context.Context, dbPath, tempName string) error {
	defer func() {
		if err := s.store.Remove(ctx, tempName); err != nil {
			s.logger.Warn("failed to remove temp snapshot", ports.String("name", tempName), ports.Err(err))
		}
	}()

	f, err := os.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer f.Close()

	if err := s.store.Put(ctx, s.config.DBName, f); err != nil {
		return fmt.Errorf("overwrite snapshot: %w", err)
	}
	return nil
}

// syncAuxiliary uploads all other regular workspace files. Copies are not
// atomic and individually best-effort.
func (s *Syncer) syncAuxiliary(ctx context.Context, report *domain.SyncReport) {
	entries, err := os.ReadDir(s.config.WorkspaceDir)
	if err != nil {
		s.logger.Warn("failed to read workspace", ports.Err(err))
		return
	}

	var uploaded, failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.AuxParallelism)

	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || s.skipAuxiliary(name) {
			continue
		}
		g.Go(func() error {
			f, err := os.Open(filepath.Join(s.config.WorkspaceDir, name))
			if err == nil {
				err = s.store.Put(gctx, name, f)
				f.Close()
			}
			if err != nil {
				s.logger.Warn("auxiliary upload failed", ports.String("name", name), ports.Err(err))
				auxFailuresTotal.Inc()
				failed.Add(1)
				return nil // best-effort, keep going
			}
			uploaded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	report.AuxUploaded = int(uploaded.Load())
	report.AuxFailed = int(failed.Load())
}

// skipAuxiliary reports whether a workspace file is excluded from the
// auxiliary upload set: the database file itself (shipped by syncSnapshot),
// its -wal/-shm siblings (folded by the checkpoint, torn by construction
// otherwise), and dotfiles.
func (s *Syncer) skipAuxiliary(name string) bool {
	switch name {
	case s.config.DBName, s.config.DBName + "-wal", s.config.DBName + "-shm":
		return true
	}
	return strings.HasPrefix(name, ".")
}
