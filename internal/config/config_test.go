package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()
	if cfg.PerPage != DefaultPerPage {
		t.Errorf("PerPage = %d, want %d", cfg.PerPage, DefaultPerPage)
	}
	if cfg.PollIntervalMin != DefaultPollIntervalMin {
		t.Errorf("PollIntervalMin = %d, want %d", cfg.PollIntervalMin, DefaultPollIntervalMin)
	}
	if cfg.Theme != DefaultTheme {
		t.Errorf("Theme = %q, want %q", cfg.Theme, DefaultTheme)
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Run("fills zero values", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		if cfg.PerPage != DefaultPerPage {
			t.Errorf("PerPage = %d, want %d", cfg.PerPage, DefaultPerPage)
		}
		if cfg.PollIntervalMin != DefaultPollIntervalMin {
			t.Errorf("PollIntervalMin = %d, want %d", cfg.PollIntervalMin, DefaultPollIntervalMin)
		}
	})

	t.Run("preserves non-zero values", func(t *testing.T) {
		cfg := &Config{
			PerPage:         50,
			PollIntervalMin: 10,
			Theme:           "light",
		}
		applyDefaults(cfg)
		if cfg.PerPage != 50 {
			t.Errorf("PerPage = %d, want 50", cfg.PerPage)
		}
		if cfg.PollIntervalMin != 10 {
			t.Errorf("PollIntervalMin = %d, want 10", cfg.PollIntervalMin)
		}
		if cfg.Theme != "light" {
			t.Errorf("Theme = %q, want light", cfg.Theme)
		}
	})
}

func TestIntervals(t *testing.T) {
	cfg := &Config{PollIntervalMin: 5, RefreshSec: 30}
	if got := cfg.PollInterval(); got != 5*time.Minute {
		t.Errorf("PollInterval() = %v, want 5m", got)
	}
	if got := cfg.RefreshInterval(); got != 30*time.Second {
		t.Errorf("RefreshInterval() = %v, want 30s", got)
	}
	cfg.RefreshSec = 0
	if got := cfg.RefreshInterval(); got != 0 {
		t.Errorf("RefreshInterval() = %v, want 0 (disabled)", got)
	}
}

func TestResolveToken(t *testing.T) {
	cfg := &Config{Token: "stored"}

	t.Setenv("GITHUB_TOKEN", "")
	if got := cfg.ResolveToken(); got != "stored" {
		t.Errorf("ResolveToken() = %q, want stored", got)
	}

	t.Setenv("GITHUB_TOKEN", "from-env")
	if got := cfg.ResolveToken(); got != "from-env" {
		t.Errorf("ResolveToken() = %q, want from-env", got)
	}
}

func TestFilters(t *testing.T) {
	cfg := &Config{
		FilterRepo:   "widget",
		FilterAuthor: "bob",
		FilterLabels: []string{"urgent"},
		FilterRoles:  []string{"review_requested"},
	}
	f := cfg.Filters()
	if f.Repo != "widget" || f.Author != "bob" {
		t.Errorf("Filters() = %+v", f)
	}
	if len(f.Labels) != 1 || len(f.Roles) != 1 {
		t.Errorf("Filters() = %+v", f)
	}
	if f.Empty() {
		t.Error("configured filters should not be empty")
	}
	if !(&Config{}).Filters().Empty() {
		t.Error("zero config should produce empty filters")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	// Override DefaultConfigDir by writing directly to temp path
	configPath := filepath.Join(tmpDir, "config.json")

	cfg := &Config{
		Token:           "tok",
		FilterRepo:      "widget",
		PerPage:         50,
		PollIntervalMin: 10,
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	readData, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var loaded Config
	if err := json.Unmarshal(readData, &loaded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if loaded.Token != cfg.Token {
		t.Errorf("Token = %q, want %q", loaded.Token, cfg.Token)
	}
	if loaded.FilterRepo != cfg.FilterRepo {
		t.Errorf("FilterRepo = %q, want %q", loaded.FilterRepo, cfg.FilterRepo)
	}
	if loaded.PerPage != cfg.PerPage {
		t.Errorf("PerPage = %d, want %d", loaded.PerPage, cfg.PerPage)
	}
}
