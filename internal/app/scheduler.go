package app

import (
	"context"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bft-labs/snapsync/internal/domain"
	"github.com/bft-labs/snapsync/internal/ports"
)

// DefaultSyncInterval is the default delay between sync ticks.
const DefaultSyncInterval = 30 * time.Second

// syncRunner is the slice of Syncer the scheduler depends on.
type syncRunner interface {
	Sync(ctx context.Context) (domain.SyncReport, error)
}

// SyncEventEmitter is called on sync success or failure.
type SyncEventEmitter interface {
	OnSyncSuccess(report domain.SyncReport)
	OnSyncError(err error)
}

// Scheduler fires Checkpoint-and-Sync on a fixed interval for the lifetime
// of its context.
//
// Ticks are strictly serialized: the next tick's timer is armed only after
// the previous sync call returns. A failing tick is logged and never
// terminates the loop. The scheduler is an owned object with no ambient
// state; cancellation comes solely from the context passed to Run.
type Scheduler struct {
	syncer  syncRunner
	logger  ports.Logger
	emitter SyncEventEmitter

	mu       sync.Mutex
	interval time.Duration
}

// NewScheduler creates a Scheduler ticking at the given interval.
func NewScheduler(interval time.Duration, syncer syncRunner, logger ports.Logger, emitter SyncEventEmitter) *Scheduler {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Scheduler{
		syncer:   syncer,
		logger:   logger,
		emitter:  emitter,
		interval: interval,
	}
}

// Interval returns the current tick interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval changes the tick interval. The new value takes effect when the
// timer is next armed.
func (s *Scheduler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
	s.logger.Info("sync interval updated", ports.Duration("interval", d))
}

// Run executes the tick loop until ctx is canceled, then returns ctx.Err().
// Cancellation stops the scheduling of further ticks; a tick already in
// flight always runs to completion.
func (s *Scheduler) Run(ctx context.Context) error {
	timer := time.NewTimer(s.Interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		s.runTick(ctx)
		timer.Reset(s.Interval())
	}
}

// runTick performs one sync pass. The pass is detached from the loop's
// cancellation so that shutdown waits for it instead of aborting a
// partially-copied snapshot.
func (s *Scheduler) runTick(ctx context.Context) {
	report, err := s.syncer.Sync(context.WithoutCancel(ctx))
	if err != nil {
		s.logger.Error("sync failed, retrying on next tick", ports.Err(err))
		if s.emitter != nil {
			s.emitter.OnSyncError(err)
		}
		return
	}

	s.logger.Info("sync complete",
		ports.Bool("checkpointed", report.Checkpointed),
		ports.Bool("atomic", report.Atomic),
		ports.String("snapshot", humanize.IBytes(uint64(report.SnapshotBytes))),
		ports.Int("aux_uploaded", report.AuxUploaded),
		ports.Int("aux_failed", report.AuxFailed),
		ports.Duration("duration", report.Duration),
	)
	if s.emitter != nil {
		s.emitter.OnSyncSuccess(report)
	}
}
