package cliconfig

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DBName != "app.db" {
		t.Errorf("DBName = %q, want app.db", cfg.DBName)
	}
	if cfg.SyncInterval != 30*time.Second {
		t.Errorf("SyncInterval = %v, want 30s", cfg.SyncInterval)
	}
	if cfg.Checkpoint != "sqlite" {
		t.Errorf("Checkpoint = %q, want sqlite", cfg.Checkpoint)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			WorkspaceDir: "/data",
			RemoteURL:    "gs://bucket/prefix",
			DBName:       "app.db",
			SyncInterval: 30 * time.Second,
			Checkpoint:   "sqlite",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"checkpoint off", func(c *Config) { c.Checkpoint = "off" }, false},
		{"missing workspace", func(c *Config) { c.WorkspaceDir = "" }, true},
		{"missing remote", func(c *Config) { c.RemoteURL = "" }, true},
		{"zero interval", func(c *Config) { c.SyncInterval = 0 }, true},
		{"negative interval", func(c *Config) { c.SyncInterval = -time.Second }, true},
		{"unknown checkpoint mode", func(c *Config) { c.Checkpoint = "postgres" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
