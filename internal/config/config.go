// internal/config/config.go
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the full application configuration. The scan root is not
// part of it: it arrives as the positional CLI argument and is one-shot.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// ServerConfig configures the viewer gateway.
type ServerConfig struct {
	// ListenAddr is the HTTP/WebSocket bind address. Defaults to
	// loopback; the viewer is a local development surface.
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	// AssetsDir holds the static viewer page. Served only when present.
	AssetsDir string `mapstructure:"assets_dir" yaml:"assets_dir"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "brainsgraph")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	v.SetDefault("server.listen_addr", "127.0.0.1:8000")
	v.SetDefault("server.assets_dir", "viewer")
}

// NewConfigFromViper creates a validated configuration from a viper
// instance that already has defaults, file, and env sources applied.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	if c.Logger.LogFile != "" && c.Logger.MaxSize <= 0 {
		return fmt.Errorf("logger.max_size must be positive when logger.log_file is set")
	}
	return nil
}
