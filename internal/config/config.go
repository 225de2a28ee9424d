// Package config handles chatdesk configuration loading and
// validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for chatdesk.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Backend settings for the REST surface
	Backend BackendConfig `yaml:"backend" mapstructure:"backend"`

	// Push settings for the event channel
	Push PushConfig `yaml:"push" mapstructure:"push"`

	// Sync settings for the reconciliation engine
	Sync SyncConfig `yaml:"sync" mapstructure:"sync"`

	// Archive settings for the local message archive
	Archive ArchiveConfig `yaml:"archive" mapstructure:"archive"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// GlobalConfig contains global chatdesk settings.
type GlobalConfig struct {
	// DataDir is where chatdesk stores its data (default: ~/.local/share/chatdesk).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/chatdesk).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// BackendConfig contains settings for the REST surface.
type BackendConfig struct {
	// BaseURL is the root of the chat backend, e.g. http://localhost:8000.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// AuthToken is sent as the access_token cookie when set.
	AuthToken string `yaml:"auth_token" mapstructure:"auth_token"`

	// Timeout bounds each REST request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PushConfig contains settings for the event channel.
type PushConfig struct {
	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration `yaml:"handshake_timeout" mapstructure:"handshake_timeout"`

	// ReconnectMin and ReconnectMax bound the reconnect backoff.
	ReconnectMin time.Duration `yaml:"reconnect_min" mapstructure:"reconnect_min"`
	ReconnectMax time.Duration `yaml:"reconnect_max" mapstructure:"reconnect_max"`
}

// SyncConfig contains reconciliation tunables.
type SyncConfig struct {
	// PageSize is the history page length.
	PageSize int `yaml:"page_size" mapstructure:"page_size"`

	// DedupWindow is the timestamp tolerance of the duplicate rule.
	DedupWindow time.Duration `yaml:"dedup_window" mapstructure:"dedup_window"`

	// DedupLookback is how many recent messages the duplicate rule compares.
	DedupLookback int `yaml:"dedup_lookback" mapstructure:"dedup_lookback"`

	// SenderName is attached to messages sent from this console.
	SenderName string `yaml:"sender_name" mapstructure:"sender_name"`
}

// ArchiveConfig contains settings for the local message archive.
type ArchiveConfig struct {
	// Enabled turns the sqlite archive on.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Path is the archive database file path (default: DataDir/archive.db).
	Path string `yaml:"path" mapstructure:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "chatdesk"),
			ConfigDir: filepath.Join(homeDir, ".config", "chatdesk"),
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 15 * time.Second,
		},
		Push: PushConfig{
			HandshakeTimeout: 10 * time.Second,
			ReconnectMin:     time.Second,
			ReconnectMax:     30 * time.Second,
		},
		Sync: SyncConfig{
			PageSize:      10,
			DedupWindow:   2 * time.Second,
			DedupLookback: 3,
		},
		Archive: ArchiveConfig{
			Enabled: true,
			Path:    "", // Will be set to DataDir/archive.db
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL")
	}
	switch u.Scheme {
	case "http", "https":
		// ok
	default:
		return fmt.Errorf("backend.base_url scheme must be http or https")
	}

	if c.Backend.Timeout < time.Second {
		return fmt.Errorf("backend.timeout must be at least 1s")
	}
	if c.Sync.PageSize < 1 {
		return fmt.Errorf("sync.page_size must be at least 1")
	}
	if c.Sync.DedupLookback < 1 {
		return fmt.Errorf("sync.dedup_lookback must be at least 1")
	}
	if c.Sync.DedupWindow < 0 {
		return fmt.Errorf("sync.dedup_window must not be negative")
	}
	if c.Push.ReconnectMin > c.Push.ReconnectMax {
		return fmt.Errorf("push.reconnect_min must not exceed push.reconnect_max")
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.Global.ConfigDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// ArchivePath returns the full archive database path.
func (c *Config) ArchivePath() string {
	if c.Archive.Path != "" {
		return c.Archive.Path
	}
	return filepath.Join(c.Global.DataDir, "archive.db")
}
