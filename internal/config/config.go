// Package config loads n3dash settings from ~/.n3dash/config.yaml and
// N3DASH_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the full n3dash configuration.
type Config struct {
	API       APIConfig       `yaml:"api" mapstructure:"api"`
	Toast     ToastConfig     `yaml:"toast" mapstructure:"toast"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
}

// APIConfig points the client at the N3 service.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ToastConfig controls notifications.
type ToastConfig struct {
	Duration time.Duration `yaml:"duration" mapstructure:"duration"`
}

// StorageConfig locates the local database holding the login and caches.
type StorageConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig controls structured logging. An empty Path logs to stderr.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	Path  string `yaml:"path" mapstructure:"path"`
}

// DashboardConfig tunes the derived panels.
type DashboardConfig struct {
	// PrefetchProjects is how many projects get their tasks loaded on refresh.
	PrefetchProjects int `yaml:"prefetch_projects" mapstructure:"prefetch_projects"`
	TodayLimit       int `yaml:"today_limit" mapstructure:"today_limit"`
	FallbackLimit    int `yaml:"fallback_limit" mapstructure:"fallback_limit"`
}

// Dir returns ~/.n3dash, or .n3dash when the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".n3dash"
	}
	return filepath.Join(home, ".n3dash")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 10 * time.Second,
		},
		Toast: ToastConfig{
			Duration: 3 * time.Second,
		},
		Storage: StorageConfig{
			Path: filepath.Join(Dir(), "n3dash.db"),
		},
		Log: LogConfig{
			Level: "info",
			Path:  filepath.Join(Dir(), "n3dash.log"),
		},
		Dashboard: DashboardConfig{
			PrefetchProjects: 4,
			TodayLimit:       10,
			FallbackLimit:    5,
		},
	}
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q must be an absolute URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Toast.Duration <= 0 {
		return fmt.Errorf("toast.duration must be positive")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path must be set")
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q, must be: debug, info, warn, or error", c.Log.Level)
	}
	if c.Dashboard.PrefetchProjects < 0 {
		return fmt.Errorf("dashboard.prefetch_projects cannot be negative")
	}
	if c.Dashboard.TodayLimit < 1 || c.Dashboard.FallbackLimit < 1 {
		return fmt.Errorf("dashboard limits must be at least 1")
	}
	return nil
}
