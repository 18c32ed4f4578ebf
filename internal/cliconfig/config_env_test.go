package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all env vars",
			envVars: map[string]string{
				"SNAPSYNC_WORKSPACE":     "/env/data",
				"SNAPSYNC_REMOTE":        "gs://env-bucket/prefix",
				"SNAPSYNC_DB_NAME":       "env.db",
				"SNAPSYNC_CHECKPOINT":    "off",
				"SNAPSYNC_EXEC":          "myapp serve",
				"SNAPSYNC_METRICS_ADDR":  ":9090",
				"SNAPSYNC_SYNC_INTERVAL": "10s",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				WorkspaceDir: "/env/data",
				RemoteURL:    "gs://env-bucket/prefix",
				DBName:       "env.db",
				Checkpoint:   "off",
				Exec:         "myapp serve",
				MetricsAddr:  ":9090",
				SyncInterval: 10 * time.Second,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"SNAPSYNC_WORKSPACE": "/env/data",
				"SNAPSYNC_REMOTE":    "gs://env-bucket/prefix",
			},
			changed: map[string]bool{"workspace": true},
			initial: Config{WorkspaceDir: "/flag/data"},
			expected: Config{
				WorkspaceDir: "/flag/data",
				RemoteURL:    "gs://env-bucket/prefix",
			},
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"SNAPSYNC_SYNC_INTERVAL": "not-a-duration",
			},
			changed: map[string]bool{},
			initial: Config{},
			wantErr: true,
		},
		{
			name:     "empty environment leaves config untouched",
			envVars:  map[string]string{},
			changed:  map[string]bool{},
			initial:  Config{WorkspaceDir: "/data", SyncInterval: time.Minute},
			expected: Config{WorkspaceDir: "/data", SyncInterval: time.Minute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}

			if cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

// Integration test: precedence order (CLI > Env > File)
func TestConfigPrecedence(t *testing.T) {
	fileConf := FileConfig{
		WorkspaceDir: "/file/data",
		RemoteURL:    "file:///file/remote",
		DBName:       "file.db",
	}

	t.Setenv("SNAPSYNC_WORKSPACE", "/env/data")
	t.Setenv("SNAPSYNC_REMOTE", "gs://env-bucket/prefix")

	// Simulate a CLI flag set for workspace
	changed := map[string]bool{"workspace": true}

	cfg := Config{
		WorkspaceDir: "/cli/data",
	}

	if err := ApplyFileConfig(&cfg, fileConf, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.WorkspaceDir != "/cli/data" {
		t.Errorf("WorkspaceDir = %v, want /cli/data (CLI should win)", cfg.WorkspaceDir)
	}
	if cfg.RemoteURL != "gs://env-bucket/prefix" {
		t.Errorf("RemoteURL = %v, want gs://env-bucket/prefix (env should override file)", cfg.RemoteURL)
	}
	if cfg.DBName != "file.db" {
		t.Errorf("DBName = %v, want file.db (file should set)", cfg.DBName)
	}
}
