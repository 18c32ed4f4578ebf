package snapsync

import (
	"context"
	"time"

	"github.com/bft-labs/snapsync/pkg/log"
)

// Plugin extends the agent with optional behavior. Plugins are initialized
// in registration order when the agent starts and shut down in reverse order
// when it stops.
type Plugin interface {
	// Name returns the plugin identifier.
	Name() string

	// Initialize sets up the plugin. Returning an error aborts agent startup.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin and releases its resources.
	Shutdown(ctx context.Context) error
}

// PluginConfig carries agent configuration and hooks into plugins.
type PluginConfig struct {
	WorkspaceDir string
	DBName       string
	RemoteURL    string

	// ConfigPath is the configuration file the agent was loaded from, or
	// empty when configured programmatically.
	ConfigPath string

	// Logger is the agent's logger.
	Logger log.Logger

	// SetSyncInterval adjusts the scheduler's tick interval at runtime.
	SetSyncInterval func(d time.Duration)
}
