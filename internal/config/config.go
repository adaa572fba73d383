// Package config loads devquest settings from defaults, an optional YAML
// file, DEVQUEST_* environment variables and command-line flags, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/devquest/internal/api"
)

// Config holds all devquest settings.
type Config struct {
	API  APIConfig  `yaml:"api"`
	Log  LogConfig  `yaml:"log"`
	Mock MockConfig `yaml:"mock"`

	// DBPath overrides the local database location. Empty means the
	// default XDG data path.
	DBPath string `yaml:"db_path"`
}

// APIConfig configures the grading and content service client.
type APIConfig struct {
	BaseURL          string        `yaml:"base_url" validate:"required,url"`
	Timeout          time.Duration `yaml:"timeout" validate:"gt=0"`
	RateLimit        float64       `yaml:"rate_limit" validate:"gt=0"`
	Burst            int           `yaml:"burst" validate:"min=1"`
	MinServerVersion string        `yaml:"min_server_version"`
	RetryAttempts    int           `yaml:"retry_attempts" validate:"min=1,max=10"`
}

// LogConfig configures the diagnostics log. An empty Path disables it.
type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// MockConfig configures `devquest serve-mock`.
type MockConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
}

var validate = validator.New()

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	apiDefaults := api.DefaultConfig()
	return Config{
		API: APIConfig{
			BaseURL:          apiDefaults.BaseURL,
			Timeout:          apiDefaults.Timeout,
			RateLimit:        apiDefaults.RateLimit,
			Burst:            apiDefaults.Burst,
			MinServerVersion: apiDefaults.MinServerVersion,
			RetryAttempts:    apiDefaults.Retry.MaxAttempts,
		},
		Log:  LogConfig{Level: "info"},
		Mock: MockConfig{Addr: "127.0.0.1:8000"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/devquest/config.yaml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locate home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "devquest", "config.yaml"), nil
}

// Load builds the configuration from defaults, the YAML file at path and
// the environment. When path is empty the default path is used and a
// missing file is not an error.
func Load(path string) (Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("DEVQUEST_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := getenv("DEVQUEST_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DEVQUEST_API_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = d
	}
	if v := getenv("DEVQUEST_API_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DEVQUEST_API_RETRIES: %w", err)
		}
		cfg.API.RetryAttempts = n
	}
	if v := getenv("DEVQUEST_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv("DEVQUEST_LOG_FILE"); v != "" {
		cfg.Log.Path = v
	}
	if v := getenv("DEVQUEST_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv("DEVQUEST_MOCK_ADDR"); v != "" {
		cfg.Mock.Addr = v
	}
	return nil
}

// Validate checks field constraints and the derived client configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Client().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Client returns the service client configuration.
func (c Config) Client() api.Config {
	cfg := api.DefaultConfig()
	cfg.BaseURL = c.API.BaseURL
	cfg.Timeout = c.API.Timeout
	cfg.RateLimit = c.API.RateLimit
	cfg.Burst = c.API.Burst
	cfg.MinServerVersion = c.API.MinServerVersion
	cfg.Retry.MaxAttempts = c.API.RetryAttempts
	return cfg
}
