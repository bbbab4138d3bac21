package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deutron/deutron/internal/schema"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "deutron.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/deutron.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	def := DefaultConfig()
	if cfg.IPC.RequestTimeout != def.IPC.RequestTimeout {
		t.Errorf("expected default timeout %v, got %v", def.IPC.RequestTimeout, cfg.IPC.RequestTimeout)
	}
	if cfg.WindowOptions() != schema.DefaultWindowOptions() {
		t.Errorf("expected default window options, got %+v", cfg.WindowOptions())
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
log:
  level: debug
  format: json
ipc:
  request_timeout: 3s
window:
  title: Go Example
  width: 1024
heartbeat:
  enabled: true
  schedule: "@every 1m"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.IPC.RequestTimeout != 3*time.Second {
		t.Errorf("expected request timeout 3s, got %v", cfg.IPC.RequestTimeout)
	}
	if !cfg.Heartbeat.Enabled || cfg.Heartbeat.Schedule != "@every 1m" {
		t.Errorf("unexpected heartbeat config: %+v", cfg.Heartbeat)
	}

	opts := cfg.WindowOptions()
	want := schema.DefaultWindowOptions()
	want.Title = "Go Example"
	want.Width = 1024
	if opts != want {
		t.Errorf("window options: got %+v, want %+v", opts, want)
	}
}

func TestLoad_PartialConfig_UsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "echo:\n  prefix: \"> \"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := DefaultConfig()
	if cfg.Echo.Prefix != "> " {
		t.Errorf("expected prefix %q, got %q", "> ", cfg.Echo.Prefix)
	}
	if cfg.IPC.MaxLineBytes != def.IPC.MaxLineBytes {
		t.Errorf("expected default max line bytes %d, got %d", def.IPC.MaxLineBytes, cfg.IPC.MaxLineBytes)
	}
	if cfg.Heartbeat.Schedule != def.Heartbeat.Schedule {
		t.Errorf("expected default schedule %q, got %q", def.Heartbeat.Schedule, cfg.Heartbeat.Schedule)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default level, got %q", cfg.Log.Level)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "log: [unterminated")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "windw:\n  title: typo\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "window:\n  width: 0\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for zero width")
	}
}

func TestConfigPath_Env(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.yaml")
	if got := ConfigPath(); got != "/tmp/custom.yaml" {
		t.Errorf("expected env override, got %q", got)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deutron.yaml")

	original := DefaultConfig()
	original.Window.Title = schema.String("Saved")
	original.IPC.RequestTimeout = 1500 * time.Millisecond

	if err := Save(&original, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.WindowOptions().Title != "Saved" {
		t.Errorf("title mismatch: got %q", loaded.WindowOptions().Title)
	}
	if loaded.IPC.RequestTimeout != original.IPC.RequestTimeout {
		t.Errorf("timeout mismatch: got %v, want %v", loaded.IPC.RequestTimeout, original.IPC.RequestTimeout)
	}
}

func TestSave_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deutron.yaml")

	cfg := DefaultConfig()
	if err := Save(&cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected permissions 0600, got %04o", perm)
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "deutron.yaml")

	cfg := DefaultConfig()
	if err := Save(&cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}
