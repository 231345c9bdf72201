package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	SessionSeconds    int           `mapstructure:"session_seconds" yaml:"session_seconds"`
	MergeSeconds      int           `mapstructure:"merge_seconds" yaml:"merge_seconds"`
	CanvasWidth       float64       `mapstructure:"canvas_width" yaml:"canvas_width"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "unsent.db",
		LogLevel:          "info",
		SessionSeconds:    263,
		MergeSeconds:      2,
		CanvasWidth:       800,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.SessionSeconds != 0 {
		c.SessionSeconds = other.SessionSeconds
	}
	if other.MergeSeconds != 0 {
		c.MergeSeconds = other.MergeSeconds
	}
	if other.CanvasWidth != 0 {
		c.CanvasWidth = other.CanvasWidth
	}
}
