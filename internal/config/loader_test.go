package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("Expected default base URL, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("Expected 10s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.Toast.Duration != 3*time.Second {
		t.Errorf("Expected 3s toast duration, got %v", cfg.Toast.Duration)
	}
	if cfg.Dashboard.PrefetchProjects != 4 || cfg.Dashboard.TodayLimit != 10 || cfg.Dashboard.FallbackLimit != 5 {
		t.Errorf("Unexpected dashboard defaults: %+v", cfg.Dashboard)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != DefaultConfig().API.BaseURL {
		t.Errorf("Expected default base URL, got %q", cfg.API.BaseURL)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `api:
  base_url: https://n3.example.com
  timeout: 3s
dashboard:
  today_limit: 7
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://n3.example.com" || cfg.API.Timeout != 3*time.Second {
		t.Errorf("Unexpected api config: %+v", cfg.API)
	}
	if cfg.Dashboard.TodayLimit != 7 || cfg.Dashboard.FallbackLimit != 5 {
		t.Errorf("Expected partial override, got %+v", cfg.Dashboard)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("api:\n  base_url: https://file.example.com\n"), 0o600)

	t.Setenv("N3DASH_API_BASE_URL", "https://env.example.com")
	t.Setenv("N3DASH_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("Expected env override, got %q", cfg.API.BaseURL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected env log level, got %q", cfg.Log.Level)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("api:\n  base_url: not a url\n"), 0o600)

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "api.base_url") {
		t.Errorf("Expected base URL validation error, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://saved.example.com"
	cfg.Toast.Duration = 1500 * time.Millisecond

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.API.BaseURL != cfg.API.BaseURL || got.Toast.Duration != cfg.Toast.Duration {
		t.Errorf("Expected saved values, got %+v", got)
	}
}

func TestSave_RejectsNil(t *testing.T) {
	if err := Save(filepath.Join(t.TempDir(), "c.yaml"), nil); err == nil {
		t.Error("Expected error for nil config")
	}
}
