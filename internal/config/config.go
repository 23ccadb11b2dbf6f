package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/shhac/prinbox/internal/inbox"
)

// Config holds application configuration.
type Config struct {
	Token string `json:"token,omitempty"`

	// Visibility filters. An item is kept when it matches any configured
	// dimension; everything passes when all are empty.
	FilterRepo   string   `json:"filterRepo,omitempty"`
	FilterAuthor string   `json:"filterAuthor,omitempty"`
	FilterLabels []string `json:"filterLabels,omitempty"`
	FilterRoles  []string `json:"filterRoles,omitempty"`

	Theme           string `json:"theme,omitempty"` // dark, light, auto
	PerPage         int    `json:"perPage"`
	PollIntervalMin int    `json:"pollIntervalMin"`
	RefreshSec      int    `json:"autoRefreshSec"` // 0 disables in-app auto refresh
	LogLevel        string `json:"logLevel,omitempty"`
}

// Defaults
const (
	DefaultPerPage         = 30
	DefaultPollIntervalMin = 5
	DefaultTheme           = "dark"
)

// DefaultConfigDir returns the platform-appropriate config directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "prinbox")
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, ".config", "prinbox")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "prinbox")
		}
		return filepath.Join(home, ".config", "prinbox")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "prinbox")
		}
		return filepath.Join(home, ".config", "prinbox")
	}
}

// DatabasePath returns the path of the local triage database.
func DatabasePath() string {
	return filepath.Join(DefaultConfigDir(), "prinbox.db")
}

// LogPath returns the path of the application log file.
func LogPath() string {
	return filepath.Join(DefaultConfigDir(), "prinbox.log")
}

// Load reads the config file, returning defaults for missing fields.
func Load() (*Config, error) {
	configPath := filepath.Join(DefaultConfigDir(), "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	dir := DefaultConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(dir, "config.json")
	tmpPath := configPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename config: %w", err)
	}

	return nil
}

// ResolveToken returns the credential to use: the GITHUB_TOKEN environment
// variable wins over the stored config value.
func (c *Config) ResolveToken() string {
	if tok := os.Getenv("GITHUB_TOKEN"); tok != "" {
		return tok
	}
	return c.Token
}

// Filters converts the configured filter fields into the reconciler's form.
func (c *Config) Filters() inbox.Filters {
	return inbox.Filters{
		Repo:   c.FilterRepo,
		Author: c.FilterAuthor,
		Labels: c.FilterLabels,
		Roles:  c.FilterRoles,
	}
}

// PollInterval returns the background poll cadence as a time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMin) * time.Minute
}

// RefreshInterval returns the in-app auto refresh cadence; zero disables it.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshSec) * time.Second
}

func defaults() *Config {
	return &Config{
		Theme:           DefaultTheme,
		PerPage:         DefaultPerPage,
		PollIntervalMin: DefaultPollIntervalMin,
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Theme == "" {
		cfg.Theme = DefaultTheme
	}
	if cfg.PerPage == 0 {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.PollIntervalMin == 0 {
		cfg.PollIntervalMin = DefaultPollIntervalMin
	}
}
