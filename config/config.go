package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Source backends
const (
	BackendRemote      = "remote"
	BackendQBittorrent = "qbittorrent"
)

// EnvPrefix prefixes environment overrides, e.g. TRANSMISSION_REST_SERVER_PORT.
const EnvPrefix = "TRANSMISSION_REST"

// New returns a viper instance with defaults, search paths and environment
// overrides set up. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load loads the configuration from file. When configPath is empty the
// standard locations are searched and a missing file means defaults.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if v == nil {
		v = New()
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".transmission-rest"))
		}

		// Check /etc
		v.AddConfigPath("/etc/transmission-rest/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults, all interfaces on port 8000
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.path", "/api/v1/transmission-rest")
	v.SetDefault("server.read_header_timeout", "10s")

	v.SetDefault("source.backend", BackendRemote)

	// transmission-remote defaults
	v.SetDefault("remote.command", []string{"transmission-remote", "--list"})
	v.SetDefault("remote.timeout", "10s")
	v.SetDefault("remote.settings_file", "/etc/transmission-daemon/settings.json")

	// qBittorrent defaults
	v.SetDefault("qbittorrent.url", "http://localhost:8080")
	v.SetDefault("qbittorrent.timeout", "30s")

	// Daemon defaults
	v.SetDefault("daemon.pid_file", "/tmp/transmission-rest.pid")
	v.SetDefault("daemon.log_file", "/tmp/transmission-rest.log")
	v.SetDefault("daemon.stop_timeout", "10s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if !strings.HasPrefix(cfg.Server.Path, "/") {
		return fmt.Errorf("server.path must start with '/': %q", cfg.Server.Path)
	}

	switch cfg.Source.Backend {
	case BackendRemote:
		if len(cfg.Remote.Command) == 0 || strings.TrimSpace(cfg.Remote.Command[0]) == "" {
			return fmt.Errorf("remote.command is required")
		}
		if cfg.Remote.Timeout < 0 {
			return fmt.Errorf("remote.timeout must not be negative")
		}
	case BackendQBittorrent:
		if cfg.QBittorrent.URL == "" {
			return fmt.Errorf("qbittorrent.url is required")
		}
	default:
		return fmt.Errorf("invalid source.backend: %s (must be '%s' or '%s')", cfg.Source.Backend, BackendRemote, BackendQBittorrent)
	}

	if cfg.Daemon.PIDFile == "" {
		return fmt.Errorf("daemon.pid_file is required")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
