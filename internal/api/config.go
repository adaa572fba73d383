package api

import (
	"fmt"
	"net/url"
	"time"

	"golang.org/x/mod/semver"
)

// Config holds the service client configuration.
type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:8000/api".
	BaseURL string

	// Timeout bounds a single HTTP round trip. Default: 15s.
	Timeout time.Duration

	// RateLimit is the sustained request rate per second; Burst is the
	// bucket size.
	RateLimit float64
	Burst     int

	// MinServerVersion is the oldest X-API-Version this client supports.
	MinServerVersion string

	Retry RetryConfig
}

// RetryConfig configures retries of idempotent reads.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:          "http://localhost:8000/api",
		Timeout:          15 * time.Second,
		RateLimit:        10,
		Burst:            5,
		MinServerVersion: "v1.0.0",
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 250 * time.Millisecond,
			MaxWait:     2 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api base URL %q is not an absolute URL", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}
	if c.RateLimit <= 0 || c.Burst < 1 {
		return fmt.Errorf("api rate limit must be positive with burst >= 1")
	}
	if c.MinServerVersion != "" && !semver.IsValid(c.MinServerVersion) {
		return fmt.Errorf("min server version %q is not a semantic version", c.MinServerVersion)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be >= 1")
	}
	return nil
}
