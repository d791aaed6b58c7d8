package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultBaseURL is the public Replicate API endpoint
	DefaultBaseURL = "https://api.replicate.com/v1"

	// DefaultPollingIntervalMS is the delay between status checks of a running prediction
	DefaultPollingIntervalMS = 5000
)

// Environment variables read by LoadEnv
const (
	EnvToken           = "REPLICATE_API_TOKEN"
	EnvBaseURL         = "REPLICATE_BASE_URL"
	EnvProxyURL        = "REPLICATE_PROXY_URL"
	EnvPollingInterval = "REPLICATE_POLL_INTERVAL_MS"
)

// ErrMissingCredentials is returned when neither a token nor a proxy URL is configured
var ErrMissingCredentials = errors.New("missing Replicate token: set a token or a proxy URL")

// Config holds the configuration for a Replicate client.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	BaseURL           string            `json:"base_url" yaml:"base_url" toml:"base_url"`
	ProxyURL          string            `json:"proxy_url" yaml:"proxy_url" toml:"proxy_url"`
	Token             string            `json:"token" yaml:"token" toml:"token"`
	PollingIntervalMS int               `json:"polling_interval_ms" yaml:"polling_interval_ms" toml:"polling_interval_ms"`
	Headers           map[string]string `json:"headers" yaml:"headers" toml:"headers"`
}

// Default returns a configuration with every default applied and no credentials
func Default() Config {
	return Config{}.WithDefaults()
}

// WithDefaults returns a copy of c with empty fields set to their defaults
func (c Config) WithDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.PollingIntervalMS == 0 {
		c.PollingIntervalMS = DefaultPollingIntervalMS
	}
	return c
}

// PollInterval returns the polling interval as a duration
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollingIntervalMS) * time.Millisecond
}

// LoadEnv loads configuration from environment variables, with defaults
// for anything unset. It does not validate; credentials may still be
// supplied by the caller afterwards.
func LoadEnv() (Config, error) {
	cfg := Config{
		Token:    os.Getenv(EnvToken),
		BaseURL:  os.Getenv(EnvBaseURL),
		ProxyURL: os.Getenv(EnvProxyURL),
	}

	if interval := os.Getenv(EnvPollingInterval); interval != "" {
		val, err := strconv.Atoi(interval)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", EnvPollingInterval, err)
		}
		cfg.PollingIntervalMS = val
	}

	return cfg.WithDefaults(), nil
}

// Validate checks if the configuration is usable for constructing a client
func (c Config) Validate() error {
	if c.Token == "" && c.ProxyURL == "" {
		return ErrMissingCredentials
	}
	if c.PollingIntervalMS <= 0 {
		return fmt.Errorf("polling interval must be positive, got %dms", c.PollingIntervalMS)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if c.ProxyURL != "" {
		if _, err := url.Parse(c.ProxyURL); err != nil {
			return fmt.Errorf("invalid proxy URL: %w", err)
		}
	}
	return nil
}
