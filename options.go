package snapsync

import (
	"github.com/bft-labs/snapsync/internal/ports"
	"github.com/bft-labs/snapsync/pkg/log"
)

// Logger is the structured logging interface accepted by WithLogger.
type Logger = log.Logger

// Store is the remote durable store abstraction. The default implementation
// is selected from Config.RemoteURL; WithStore overrides it.
type Store = ports.ObjectStore

// Checkpointer is the optional checkpoint capability of the foreground
// writer. The default implementation is selected from Config.Checkpoint;
// WithCheckpointer overrides it.
type Checkpointer = ports.Checkpointer

// Option configures optional behavior of the agent.
type Option func(*options)

// options holds the optional configuration for an agent instance.
type options struct {
	logger       Logger
	store        Store
	checkpointer Checkpointer
	eventHandler EventHandler
	plugins      []Plugin
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore sets a custom remote store, bypassing Config.RemoteURL.
// Tests use this with an in-memory store.
func WithStore(store Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithCheckpointer sets a custom checkpoint capability, bypassing
// Config.Checkpoint.
func WithCheckpointer(ckpt Checkpointer) Option {
	return func(o *options) {
		o.checkpointer = ckpt
	}
}

// WithEventHandler sets a handler for agent events.
// Events are called synchronously from the agent's goroutines.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the agent starts.
// Plugins are initialized in registration order and shut down in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
