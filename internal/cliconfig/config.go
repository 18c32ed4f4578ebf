// Package cliconfig loads the snapsync CLI configuration from defaults, a
// TOML file, SNAPSYNC_* environment variables, and command-line flags, in
// ascending order of precedence.
package cliconfig

import (
	"fmt"
	"time"

	"github.com/bft-labs/snapsync"
)

// Config holds the configuration for the snapsync command.
type Config struct {
	// WorkspaceDir is the local root directory holding the database file.
	WorkspaceDir string

	// RemoteURL locates the remote durable store.
	RemoteURL string

	// DBName is the canonical database filename within the workspace.
	DBName string

	// SyncInterval is the delay between sync ticks.
	SyncInterval time.Duration

	// Checkpoint selects the checkpoint capability: "sqlite" or "off".
	Checkpoint string

	// Exec is the foreground writer command line. When empty, snapsync runs
	// in sync-only mode until signaled.
	Exec string

	// MetricsAddr, when set, serves Prometheus metrics on this address.
	MetricsAddr string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		DBName:       snapsync.DefaultDBName,
		SyncInterval: 30 * time.Second,
		Checkpoint:   snapsync.CheckpointSQLite,
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
	case snapsync.CheckpointSQLite, snapsync.CheckpointOff:
	default:
		return fmt.Errorf("unknown checkpoint mode %q", c.Checkpoint)
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}
