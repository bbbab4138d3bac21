// Package config defines the configuration schema for a deutron backend.
//
// The file is YAML; every section is optional and missing keys keep the
// values from DefaultConfig.
package config

import (
	"time"

	"github.com/deutron/deutron/internal/schema"
)

// Config is the root configuration document.
type Config struct {
	Log       LogConfig          `yaml:"log"`
	IPC       IPCConfig          `yaml:"ipc"`
	Window    schema.WindowPatch `yaml:"window"`
	Heartbeat HeartbeatConfig    `yaml:"heartbeat"`
	Echo      EchoConfig         `yaml:"echo"`
}

// LogConfig controls diagnostic output. Logs never go to stdout, which carries
// the protocol.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug | info | warn | error
	Format     string `yaml:"format"` // text | json | auto
	File       string `yaml:"file"`   // optional rotating log file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// IPCConfig tunes the host channel.
type IPCConfig struct {
	MaxLineBytes   int           `yaml:"max_line_bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// HeartbeatConfig schedules the host liveness probe.
type HeartbeatConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Schedule string        `yaml:"schedule"` // robfig/cron spec, e.g. "@every 30s"
	Timeout  time.Duration `yaml:"timeout"`
}

// EchoConfig configures the bundled echo application.
type EchoConfig struct {
	Prefix string `yaml:"prefix"`
}

func defaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		Format:     "auto",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

func defaultIPCConfig() IPCConfig {
	return IPCConfig{
		MaxLineBytes:   4 << 20,
		RequestTimeout: 10 * time.Second,
	}
}

func defaultHeartbeatConfig() HeartbeatConfig {
	return HeartbeatConfig{
		Enabled:  false,
		Schedule: "@every 30s",
		Timeout:  5 * time.Second,
	}
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Log:       defaultLogConfig(),
		IPC:       defaultIPCConfig(),
		Heartbeat: defaultHeartbeatConfig(),
		Echo:      EchoConfig{Prefix: "Processed message: "},
	}
}

// WindowOptions resolves the configured window against the protocol defaults.
func (c *Config) WindowOptions() schema.WindowOptions {
	return schema.DefaultWindowOptions().Apply(c.Window)
}
