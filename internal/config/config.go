// Package config manages claude-accounts configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the claude-accounts configuration.
// This is stored in YAML format at ~/.config/claude-accounts/config.yaml
type Config struct {
	Version int           `yaml:"version"`
	Claude  ClaudeConfig  `yaml:"claude"`
	Safety  SafetyConfig  `yaml:"safety"`
	History HistoryConfig `yaml:"history"`
	Watch   WatchConfig   `yaml:"watch"`
	Log     LogConfig     `yaml:"log"`
}

// ClaudeConfig describes how to reach Claude Code.
type ClaudeConfig struct {
	// ConfigPath overrides the location of ~/.claude.json.
	ConfigPath string `yaml:"config_path"`

	// LoginCommand is the external login flow, program first.
	LoginCommand []string `yaml:"login_command"`
}

// SafetyConfig contains data safety settings.
type SafetyConfig struct {
	// AutoBackupBeforeSwitch controls snapshots of ~/.claude.json before a switch.
	// "always": snapshot before every switch
	// "smart": snapshot unless the newest snapshot already has the same content (default)
	// "never": no snapshots
	AutoBackupBeforeSwitch string `yaml:"auto_backup_before_switch"`

	// MaxAutoBackups limits how many snapshots are kept. 0 keeps all of them.
	MaxAutoBackups int `yaml:"max_auto_backups"`

	// DetectConcurrentWrites refuses to save when ~/.claude.json changed
	// between the reload and the write of a switch.
	DetectConcurrentWrites bool `yaml:"detect_concurrent_writes"`
}

// HistoryConfig controls the activity log.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // Empty uses the default data directory

	// Retention drops events older than this when the history is opened.
	// 0 keeps events regardless of age.
	Retention Duration `yaml:"retention"`

	// MaxEvents caps the number of stored events, oldest dropped first.
	// 0 means no cap.
	MaxEvents int `yaml:"max_events"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Duration is a time.Duration that supports YAML marshaling/unmarshaling
// with human-readable formats like "500ms", "2s".
type Duration time.Duration

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if dur < 0 {
		return fmt.Errorf("duration cannot be negative: %s", s)
	}

	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Claude: ClaudeConfig{
			LoginCommand: []string{"claude", "/login"},
		},
		Safety: SafetyConfig{
			AutoBackupBeforeSwitch: "smart",
			MaxAutoBackups:         10,
		},
		History: HistoryConfig{
			Enabled:   true,
			Retention: Duration(90 * 24 * time.Hour),
			MaxEvents: 5000,
		},
		Watch: WatchConfig{
			Debounce: Duration(500 * time.Millisecond),
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Home returns the claude-accounts config directory.
func Home() string {
	if home := os.Getenv("CLAUDE_ACCOUNTS_HOME"); home != "" {
		return home
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "claude-accounts")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "claude-accounts")
	}
	return filepath.Join(homeDir, ".config", "claude-accounts")
}

// DataDir returns where backups and history live.
func DataDir() string {
	if home := os.Getenv("CLAUDE_ACCOUNTS_HOME"); home != "" {
		return filepath.Join(home, "data")
	}
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "claude-accounts")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".local", "share", "claude-accounts")
	}
	return filepath.Join(homeDir, ".local", "share", "claude-accounts")
}

// Path returns the path to the config file.
func Path() string {
	return filepath.Join(Home(), "config.yaml")
}

// BackupDir returns the snapshot directory.
func BackupDir() string {
	return filepath.Join(DataDir(), "backups")
}

// HistoryPath returns the activity database path.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(DataDir(), "history.db")
}

// Load reads the configuration from Path.
// Returns defaults if the file doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the configuration from configPath. A missing file yields
// the defaults. Environment overrides apply and are validated either way.
func LoadFrom(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to Path.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the configuration to configPath.
func (c *Config) SaveTo(configPath string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append([]byte("# claude-accounts configuration\n\n"), data...)

	// Atomic write: write to temp file, fsync, then rename
	tmpPath := configPath + ".tmp"
	tmpFile, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}

	if len(c.Claude.LoginCommand) == 0 || strings.TrimSpace(c.Claude.LoginCommand[0]) == "" {
		return fmt.Errorf("claude.login_command cannot be empty")
	}

	validBackupModes := map[string]bool{"always": true, "smart": true, "never": true}
	if c.Safety.AutoBackupBeforeSwitch != "" && !validBackupModes[c.Safety.AutoBackupBeforeSwitch] {
		return fmt.Errorf("safety.auto_backup_before_switch must be one of: always, smart, never")
	}
	if c.Safety.MaxAutoBackups < 0 {
		return fmt.Errorf("safety.max_auto_backups cannot be negative")
	}

	if c.History.Retention.Duration() < 0 {
		return fmt.Errorf("history.retention cannot be negative")
	}
	if c.History.MaxEvents < 0 {
		return fmt.Errorf("history.max_events cannot be negative")
	}

	if c.Watch.Debounce.Duration() < 0 {
		return fmt.Errorf("watch.debounce cannot be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	return nil
}

// ApplyEnvOverrides updates the config with environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CLAUDE_ACCOUNTS_HISTORY"); v != "" {
		if b, err := parseBool(v); err == nil {
			c.History.Enabled = b
		}
	}
	if v := os.Getenv("CLAUDE_ACCOUNTS_MAX_BACKUPS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			c.Safety.MaxAutoBackups = i
		}
	}
	if v := os.Getenv("CLAUDE_ACCOUNTS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// parseBool parses various boolean representations.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "1", "on":
		return true, nil
	case "false", "no", "0", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean: %s (use true/false, yes/no, 1/0)", s)
	}
}
