// Package configwatcher provides config file monitoring for snapsync.
// When enabled, it watches the agent's TOML config file and applies
// sync-interval changes to the running scheduler without a restart.
package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/snapsync"
	"github.com/bft-labs/snapsync/pkg/log"
)

// Plugin implements config watching functionality.
// It monitors the config file the agent was loaded from and pushes interval
// updates into the scheduler when it changes.
type Plugin struct {
	mu sync.RWMutex

	// Configuration
	debounceDelay time.Duration

	// Runtime state
	configPath  string
	logger      snapsync.Logger
	setInterval func(time.Duration)
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	debounce    *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before
	// reloading. Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize sets up the plugin and starts the config watcher.
func (p *Plugin) Initialize(ctx context.Context, cfg snapsync.PluginConfig) error {
	p.mu.Lock()
	p.configPath = cfg.ConfigPath
	p.logger = cfg.Logger
	p.setInterval = cfg.SetSyncInterval
	p.mu.Unlock()

	if p.configPath == "" || p.setInterval == nil {
		p.logger.Warn("config watcher disabled: no config file in use")
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher plugin initialized",
		log.String("path", p.configPath))

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// watchLoop watches for config file changes. The parent directory is
// watched, not the file itself, so editors that replace the file via rename
// are still observed.
func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("config watcher: failed to create watcher", log.Err(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(p.configPath)); err != nil {
		p.logger.Error("config watcher: failed to watch directory", log.Err(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(p.configPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(p.debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(delay, p.reload)
}

// fileConfig picks the one live-reloadable field out of the config file.
type fileConfig struct {
	SyncInterval string `toml:"sync_interval"`
}

// reload re-reads the config file and applies the sync interval.
func (p *Plugin) reload() {
	b, err := os.ReadFile(p.configPath)
	if err != nil {
		p.logger.Warn("config watcher: failed to read config", log.Err(err))
		return
	}

	var fc fileConfig
	if err := toml.Unmarshal(b, &fc); err != nil {
		p.logger.Warn("config watcher: failed to parse config", log.Err(err))
		return
	}
	if fc.SyncInterval == "" {
		return
	}

	d, err := time.ParseDuration(fc.SyncInterval)
	if err != nil {
		p.logger.Warn("config watcher: invalid sync_interval", log.Err(err))
		return
	}
	p.setInterval(d)
}

// Ensure Plugin implements snapsync.Plugin.
var _ snapsync.Plugin = (*Plugin)(nil)
