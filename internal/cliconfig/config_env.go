package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (SNAPSYNC_*).
// It respects flags that have been explicitly set (changed map).
// Returns an error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("workspace", os.Getenv("SNAPSYNC_WORKSPACE"), &cfg.WorkspaceDir)
	s.setString("remote", os.Getenv("SNAPSYNC_REMOTE"), &cfg.RemoteURL)
	s.setString("db-name", os.Getenv("SNAPSYNC_DB_NAME"), &cfg.DBName)
	s.setString("checkpoint", os.Getenv("SNAPSYNC_CHECKPOINT"), &cfg.Checkpoint)
	s.setString("exec", os.Getenv("SNAPSYNC_EXEC"), &cfg.Exec)
	s.setString("metrics-addr", os.Getenv("SNAPSYNC_METRICS_ADDR"), &cfg.MetricsAddr)

	return s.setDuration("interval", os.Getenv("SNAPSYNC_SYNC_INTERVAL"), &cfg.SyncInterval)
}
