package snapsync

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bft-labs/snapsync/internal/adapters/checkpoint"
	storeAdapter "github.com/bft-labs/snapsync/internal/adapters/store"
	"github.com/bft-labs/snapsync/internal/app"
	"github.com/bft-labs/snapsync/internal/domain"
	"github.com/bft-labs/snapsync/internal/ports"
)

// Snapsync is a durability agent that can be embedded in other applications.
// Use New() to create an instance, then Start() to restore and begin syncing.
type Snapsync struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	scheduler *app.Scheduler
	syncer    *app.Syncer
	restorer  *app.Restorer
	store     ports.ObjectStore
	logger    ports.Logger
	emitter   eventEmitterWrapper

	plugins []Plugin

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new agent with the given configuration.
// The instance is created in StateStopped; call Start() to begin.
// Returns an error if the configuration is invalid or the store URL is
// unsupported.
func New(cfg Config, opts ...Option) (*Snapsync, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	emitter := eventEmitterWrapper{handler: o.eventHandler}
	lifecycle := app.NewLifecycle(logger, &emitter)

	objStore := o.store
	if objStore == nil {
		var err error
		objStore, err = storeAdapter.NewStore(context.Background(), cfg.RemoteURL)
		if err != nil {
			return nil, err
		}
	}

	ckpt := o.checkpointer
	if ckpt == nil {
		switch cfg.Checkpoint {
		case CheckpointSQLite:
			ckpt = checkpoint.NewSQLiteCheckpointer(filepath.Join(cfg.WorkspaceDir, cfg.DBName))
		default:
			ckpt = checkpoint.NewNoopCheckpointer()
		}
	}

	syncer := app.NewSyncer(app.SyncerConfig{
		WorkspaceDir: cfg.WorkspaceDir,
		DBName:       cfg.DBName,
	}, objStore, ckpt, logger)

	s := &Snapsync{
		config:    cfg,
		opts:      o,
		lifecycle: lifecycle,
		syncer:    syncer,
		restorer:  app.NewRestorer(objStore, cfg.WorkspaceDir, logger),
		scheduler: app.NewScheduler(cfg.SyncInterval, syncer, logger, &emitter),
		store:     objStore,
		logger:    logger,
		emitter:   emitter,
		plugins:   o.plugins,
	}
	return s, nil
}

// Start restores the latest remote snapshot into the workspace and then
// begins periodic syncing in the background.
//
// Restore runs synchronously: when Start returns, the restore has fully
// completed (success or degraded) and it is safe to launch the foreground
// writer. Returns an error if already running or if a plugin fails to
// initialize.
func (s *Snapsync) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}

	if err := s.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.ctx = runCtx
	s.cancel = cancel
	s.lifecycle.SetCancel(cancel)

	// Initialize plugins
	pluginCfg := PluginConfig{
		WorkspaceDir:    s.config.WorkspaceDir,
		DBName:          s.config.DBName,
		RemoteURL:       s.config.RemoteURL,
		ConfigPath:      s.config.ConfigPath,
		Logger:          s.logger,
		SetSyncInterval: s.scheduler.SetInterval,
	}
	for _, p := range s.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			cancel()
			_ = s.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		s.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	// Restore must fully complete before the writer is launched; it runs
	// here so callers can sequence the writer after Start returns.
	report := s.restorer.Restore(runCtx)
	s.emitter.onRestore(report)

	if err := s.lifecycle.TransitionTo(app.StateRunning, "restore complete"); err != nil {
		cancel()
		return err
	}

	s.lifecycle.AddWorker()
	go func() {
		defer s.lifecycle.WorkerDone()

		// Run returns ctx.Err() on cancellation; anything else is a bug.
		if err := s.scheduler.Run(runCtx); err != nil && err != context.Canceled {
			s.logger.Error("scheduler error", ports.Err(err))
		}
	}()

	return nil
}

// Stop gracefully shuts down the agent: it stops scheduling new ticks, waits
// for any in-flight tick to complete, and then performs one final
// synchronous sync to minimize the data-loss window.
//
// There is no timeout: an in-flight sync is never aborted mid-copy. The
// final sync outcome is logged and never returned; sync failures must not
// affect the caller's exit path.
func (s *Snapsync) Stop() error {
	s.mu.Lock()

	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}

	if err := s.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	// Wait for an in-flight tick; it is never aborted.
	s.lifecycle.Wait()

	_ = s.lifecycle.TransitionTo(app.StateFinalSync, "draining complete")

	// The final sync uses a fresh context: the run context is already
	// canceled, and this pass must not be.
	if _, err := s.syncer.Sync(context.Background()); err != nil {
		s.logger.Error("final sync failed", ports.Err(err))
		s.emitter.OnSyncError(err)
	}

	// Shutdown plugins (in reverse order)
	shutdownCtx := context.Background()
	for i := len(s.plugins) - 1; i >= 0; i-- {
		p := s.plugins[i]
		if err := p.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
		}
	}

	return s.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Snapsync) Status() State {
	return convertState(s.lifecycle.State())
}

// SetSyncInterval adjusts the scheduler's tick interval at runtime. The new
// value takes effect after the current tick's timer fires.
func (s *Snapsync) SetSyncInterval(d time.Duration) {
	s.scheduler.SetInterval(d)
}
