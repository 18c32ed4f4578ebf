package configwatcher

import "github.com/bft-labs/snapsync"

// WithConfigWatcher returns a snapsync Option that enables config file
// watching. When enabled, the plugin monitors the agent's config file and
// applies sync-interval changes live.
//
// Usage:
//
//	s, err := snapsync.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) snapsync.Option {
	plugin := New(cfg)
	return snapsync.WithPlugin(plugin)
}

// WithDefaultConfigWatcher returns a snapsync Option that enables config
// watching with default settings (debounce 100ms).
func WithDefaultConfigWatcher() snapsync.Option {
	return WithConfigWatcher(DefaultConfig())
}
