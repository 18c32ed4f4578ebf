package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `workspace = "/data"
remote = "gs://bucket/prefix"
db_name = "ledger.db"
sync_interval = "45s"
checkpoint = "off"
exec = "myapp serve"
metrics_addr = ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	if fc.WorkspaceDir != "/data" {
		t.Errorf("WorkspaceDir = %q, want /data", fc.WorkspaceDir)
	}
	if fc.RemoteURL != "gs://bucket/prefix" {
		t.Errorf("RemoteURL = %q, want gs://bucket/prefix", fc.RemoteURL)
	}
	if fc.DBName != "ledger.db" {
		t.Errorf("DBName = %q, want ledger.db", fc.DBName)
	}
	if fc.SyncInterval != "45s" {
		t.Errorf("SyncInterval = %q, want 45s", fc.SyncInterval)
	}
	if fc.Checkpoint != "off" {
		t.Errorf("Checkpoint = %q, want off", fc.Checkpoint)
	}
	if fc.Exec != "myapp serve" {
		t.Errorf("Exec = %q, want myapp serve", fc.Exec)
	}
	if fc.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr = %q, want :9090", fc.MetricsAddr)
	}
}

func TestLoadFileConfig_Missing(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("LoadFileConfig() error = nil, want error for missing file")
	}
}

func TestLoadFileConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("workspace = [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFileConfig(path); err == nil {
		t.Error("LoadFileConfig() error = nil, want parse error")
	}
}

func TestApplyFileConfig(t *testing.T) {
	fc := FileConfig{
		WorkspaceDir: "/file/data",
		RemoteURL:    "s3://bucket/prefix",
		SyncInterval: "2m",
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	if cfg.WorkspaceDir != "/file/data" {
		t.Errorf("WorkspaceDir = %q, want /file/data", cfg.WorkspaceDir)
	}
	if cfg.RemoteURL != "s3://bucket/prefix" {
		t.Errorf("RemoteURL = %q, want s3://bucket/prefix", cfg.RemoteURL)
	}
	if cfg.SyncInterval != 2*time.Minute {
		t.Errorf("SyncInterval = %v, want 2m", cfg.SyncInterval)
	}
	// Fields absent from the file keep their defaults.
	if cfg.DBName != "app.db" {
		t.Errorf("DBName = %q, want app.db", cfg.DBName)
	}
}

func TestApplyFileConfig_RespectsChangedFlags(t *testing.T) {
	fc := FileConfig{
		WorkspaceDir: "/file/data",
		SyncInterval: "2m",
	}

	cfg := DefaultConfig()
	cfg.WorkspaceDir = "/flag/data"
	changed := map[string]bool{"workspace": true}

	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	if cfg.WorkspaceDir != "/flag/data" {
		t.Errorf("WorkspaceDir = %q, want /flag/data (flag wins)", cfg.WorkspaceDir)
	}
	if cfg.SyncInterval != 2*time.Minute {
		t.Errorf("SyncInterval = %v, want 2m (file applies)", cfg.SyncInterval)
	}
}

func TestApplyFileConfig_InvalidDuration(t *testing.T) {
	fc := FileConfig{SyncInterval: "not-a-duration"}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err == nil {
		t.Error("ApplyFileConfig() error = nil, want parse error")
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if FileExists(path) {
		t.Error("FileExists() = true for absent file")
	}
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Error("FileExists() = false for existing file")
	}
}
