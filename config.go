package snapsync

import (
	"fmt"
	"time"

	"github.com/bft-labs/snapsync/internal/app"
)

// Checkpoint modes recognized by Config.Checkpoint.
const (
	// CheckpointSQLite folds the SQLite WAL into the database file before
	// each copy via PRAGMA wal_checkpoint(TRUNCATE).
	CheckpointSQLite = "sqlite"

	// CheckpointOff skips the checkpoint step. The copied file may then be
	// inconsistent; this is an accepted risk.
	CheckpointOff = "off"
)

// DefaultDBName is the canonical database filename within the workspace.
const DefaultDBName = "app.db"

// Config holds the configuration for the sync agent.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config struct {
	// WorkspaceDir is the local root directory holding the database file and
	// its auxiliary files. Required.
	WorkspaceDir string

	// RemoteURL locates the remote durable store: gs://bucket/prefix,
	// s3://bucket/prefix, file:///path, or a bare mount path. Required.
	RemoteURL string

	// DBName is the canonical database filename. Defaults to "app.db".
	DBName string

	// SyncInterval is the delay between sync ticks. Defaults to 30s.
	SyncInterval time.Duration

	// Checkpoint selects the checkpoint capability: "sqlite" or "off".
	// Defaults to "sqlite".
	Checkpoint string

	// ConfigPath is the configuration file the agent was loaded from, if
	// any. Plugins such as the config watcher use it; the library itself
	// never reads it.
	ConfigPath string
}

// DefaultConfig returns a Config with default values.
// At minimum, WorkspaceDir and RemoteURL must be set before calling New.
func DefaultConfig() Config {
	return Config{
		DBName:       DefaultDBName,
		SyncInterval: app.DefaultSyncInterval,
		Checkpoint:   CheckpointSQLite,
	}
}

// SetDefaults fills unset fields with their default values.
func (c *Config) SetDefaults() {
	if c.DBName == "" {
		c.DBName = DefaultDBName
	}
	if c.SyncInterval == 0 {
		c.SyncInterval = app.DefaultSyncInterval
	}
	if c.Checkpoint == "" {
		c.Checkpoint = CheckpointSQLite
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.WorkspaceDir == "" {
		return fmt.Errorf("workspace is required")
	}
	if c.RemoteURL == "" {
		return fmt.Errorf("remote is required")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync interval must be positive")
	}
	switch c.Checkpoint {
	case CheckpointSQLite, CheckpointOff:
	default:
		return fmt.Errorf("unknown checkpoint mode %q", c.Checkpoint)
	}
	return nil
}
