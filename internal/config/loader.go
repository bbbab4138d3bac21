package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the default configuration path.
const EnvConfigPath = "DEUTRON_CONFIG"

// ConfigPath returns $DEUTRON_CONFIG, or deutron.yaml in the working directory.
// The host starts the backend inside its own directory, so a relative default
// keeps the config next to the application.
func ConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return "deutron.yaml"
}

// Load reads and parses the config file at path.
// If path is empty, ConfigPath() is used. A missing file yields DefaultConfig().
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to path as YAML.
// If path is empty, ConfigPath() is used.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Validate rejects values the runtime cannot work with.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "", "auto", "text", "json":
	default:
		return fmt.Errorf("log.format: unsupported value %q", c.Log.Format)
	}
	if c.IPC.MaxLineBytes < 0 {
		return fmt.Errorf("ipc.max_line_bytes must not be negative")
	}
	if c.IPC.RequestTimeout < 0 {
		return fmt.Errorf("ipc.request_timeout must not be negative")
	}
	if c.Heartbeat.Enabled && c.Heartbeat.Schedule == "" {
		return fmt.Errorf("heartbeat.schedule is required when heartbeat is enabled")
	}
	if w := c.Window.Width; w != nil && *w <= 0 {
		return fmt.Errorf("window.width must be positive")
	}
	if h := c.Window.Height; h != nil && *h <= 0 {
		return fmt.Errorf("window.height must be positive")
	}
	return nil
}
