package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds process-wide configuration read from the environment.
type Config struct {
	Logging LogConfig
	Check   CheckConfig
	Probe   ProbeConfig
	Browser BrowserConfig
	Status  StatusConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
	File        string `envconfig:"LOG_FILE"`
}

// CheckConfig holds connectivity check configuration.
type CheckConfig struct {
	URL     string        `envconfig:"CHECK_URL" default:"https://www.google.com"`
	Timeout time.Duration `envconfig:"CHECK_TIMEOUT" default:"5s"`
}

// ProbeConfig holds portal probe configuration.
type ProbeConfig struct {
	Timeout   time.Duration `envconfig:"PROBE_TIMEOUT" default:"5s"`
	Rate      float64       `envconfig:"PROBE_RATE" default:"0"`
	UserAgent string        `envconfig:"USER_AGENT" default:"wifi-login/1.0"`
}

// BrowserConfig holds browser collaborator configuration.
type BrowserConfig struct {
	PageLoadTimeout time.Duration `envconfig:"BROWSER_PAGE_TIMEOUT" default:"30s"`
	Opener          string        `envconfig:"BROWSER_OPENER"`
	// InsecureTLS lets headless sessions load portals with self-signed
	// certificates.
	InsecureTLS bool `envconfig:"BROWSER_INSECURE_TLS" default:"true"`
}

// StatusConfig holds the optional status server configuration.
// An empty Addr disables the server.
type StatusConfig struct {
	Addr              string   `envconfig:"STATUS_ADDR"`
	RequestsPerSecond int      `envconfig:"STATUS_RPS" default:"10"`
	Burst             int      `envconfig:"STATUS_BURST" default:"20"`
	AllowOrigins      []string `envconfig:"STATUS_ORIGINS" default:"*"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Check: CheckConfig{
			URL:     "https://www.google.com",
			Timeout: 5 * time.Second,
		},
		Probe: ProbeConfig{
			Timeout:   5 * time.Second,
			UserAgent: "wifi-login/1.0",
		},
		Browser: BrowserConfig{
			PageLoadTimeout: 30 * time.Second,
			InsecureTLS:     true,
		},
		Status: StatusConfig{
			RequestsPerSecond: 10,
			Burst:             20,
			AllowOrigins:      []string{"*"},
		},
	}
}
