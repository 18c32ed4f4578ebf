package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	WorkspaceDir string `toml:"workspace"`
	RemoteURL    string `toml:"remote"`
	DBName       string `toml:"db_name"`
	SyncInterval string `toml:"sync_interval"`
	Checkpoint   string `toml:"checkpoint"`
	Exec         string `toml:"exec"`
	MetricsAddr  string `toml:"metrics_addr"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.snapsync/config.toml if the user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".snapsync", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("workspace", fc.WorkspaceDir, &cfg.WorkspaceDir)
	s.setString("remote", fc.RemoteURL, &cfg.RemoteURL)
	s.setString("db-name", fc.DBName, &cfg.DBName)
	s.setString("checkpoint", fc.Checkpoint, &cfg.Checkpoint)
	s.setString("exec", fc.Exec, &cfg.Exec)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)

	return s.setDuration("interval", fc.SyncInterval, &cfg.SyncInterval)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
