package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. N3DASH_API_BASE_URL.
const EnvPrefix = "N3DASH"

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error. An empty path uses DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides apply even when
// the file omits them.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("toast.duration", cfg.Toast.Duration)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.path", cfg.Log.Path)
	v.SetDefault("dashboard.prefetch_projects", cfg.Dashboard.PrefetchProjects)
	v.SetDefault("dashboard.today_limit", cfg.Dashboard.TodayLimit)
	v.SetDefault("dashboard.fallback_limit", cfg.Dashboard.FallbackLimit)
}

// Save writes cfg to path as YAML, creating parent directories if needed.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}
