package config

import (
	"net"
	"strconv"
	"time"
)

// Config represents the complete configuration structure
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Source      SourceConfig      `mapstructure:"source"`
	Remote      RemoteConfig      `mapstructure:"remote"`
	QBittorrent QBittorrentConfig `mapstructure:"qbittorrent"`
	Daemon      DaemonConfig      `mapstructure:"daemon"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	Path              string        `mapstructure:"path"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
}

// Address returns the listen address
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SourceConfig selects where slot listings come from
type SourceConfig struct {
	Backend string `mapstructure:"backend"`
}

// RemoteConfig configures the transmission-remote source
type RemoteConfig struct {
	Command      []string      `mapstructure:"command"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SettingsFile string        `mapstructure:"settings_file"`
}

// QBittorrentConfig holds qBittorrent Web UI connection details
type QBittorrentConfig struct {
	URL           string        `mapstructure:"url"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	Timeout       time.Duration `mapstructure:"timeout"`
	TLSSkipVerify bool          `mapstructure:"tls_skip_verify"`
	BasicUser     string        `mapstructure:"basic_user"`
	BasicPass     string        `mapstructure:"basic_pass"`
}

// DaemonConfig contains process control settings
type DaemonConfig struct {
	PIDFile     string        `mapstructure:"pid_file"`
	LogFile     string        `mapstructure:"log_file"`
	StopTimeout time.Duration `mapstructure:"stop_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
