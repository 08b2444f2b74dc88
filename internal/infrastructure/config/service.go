package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/logging"
)

// Service defaults, taken from the headless service's observed behavior.
const (
	DefaultCheckInterval = 30
	DefaultMaxAttempts   = 3
	DefaultWaitAttempts  = 10
)

// ErrUnsupportedFormat is returned for config files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// ServiceConfig is the persisted configuration of the headless login service.
// It is loaded once at startup and treated as read-only afterwards.
type ServiceConfig struct {
	// CheckInterval is the pause between service iterations, in seconds.
	CheckInterval int `json:"check_interval" yaml:"check_interval" toml:"check_interval"`
	// MaxAttempts bounds the detect→open→wait passes per iteration.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" toml:"max_attempts"`
	// WaitAttempts bounds the connectivity polls after opening a portal.
	WaitAttempts int             `json:"wait_attempts" yaml:"wait_attempts" toml:"wait_attempts"`
	PortalURLs   []string        `json:"portal_urls" yaml:"portal_urls" toml:"portal_urls"`
	AutoLogin    AutoLoginConfig `json:"auto_login" yaml:"auto_login" toml:"auto_login"`
}

// AutoLoginConfig describes how to fill a portal login form.
type AutoLoginConfig struct {
	Enabled     bool              `json:"enabled" yaml:"enabled" toml:"enabled"`
	Selectors   SelectorConfig    `json:"selectors" yaml:"selectors" toml:"selectors"`
	Credentials CredentialsConfig `json:"credentials" yaml:"credentials" toml:"credentials"`
	// AutoSubmit clicks a common submit control when no submit selector is set.
	AutoSubmit bool `json:"auto_submit" yaml:"auto_submit" toml:"auto_submit"`
}

// SelectorConfig holds CSS (or xpath:-prefixed) selectors for form fields.
type SelectorConfig struct {
	Username string `json:"username" yaml:"username" toml:"username"`
	Password string `json:"password" yaml:"password" toml:"password"`
	Submit   string `json:"submit" yaml:"submit" toml:"submit"`
}

// CredentialsConfig holds the values typed into the form.
type CredentialsConfig struct {
	Username string `json:"username" yaml:"username" toml:"username"`
	Password string `json:"password" yaml:"password" toml:"password"`
}

// DefaultServiceConfig returns the built-in service configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		CheckInterval: DefaultCheckInterval,
		MaxAttempts:   DefaultMaxAttempts,
		WaitAttempts:  DefaultWaitAttempts,
		PortalURLs:    []string{},
	}
}

// ReadServiceConfig reads path and merges it over the defaults. Keys absent
// from the file keep their default values.
func ReadServiceConfig(path string) (ServiceConfig, error) {
	cfg := DefaultServiceConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", "":
		err = sonic.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return DefaultServiceConfig(), fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return DefaultServiceConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadServiceConfig never fails: a missing path yields defaults and a
// malformed file is logged and replaced by defaults.
func LoadServiceConfig(path string, logger *logging.Logger) ServiceConfig {
	if logger == nil {
		logger = logging.NewNop()
	}
	if path == "" {
		return DefaultServiceConfig()
	}

	cfg, err := ReadServiceConfig(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("Config file not found, using defaults", zap.String("path", path))
		} else {
			logger.Error("Failed to load config, using defaults", zap.String("path", path), zap.Error(err))
		}
		return DefaultServiceConfig()
	}

	return cfg.normalize(logger)
}

// normalize replaces out-of-range numbers with their defaults.
func (c ServiceConfig) normalize(logger *logging.Logger) ServiceConfig {
	if c.CheckInterval < 1 {
		logger.Warn("check_interval must be >= 1, using default", zap.Int("value", c.CheckInterval))
		c.CheckInterval = DefaultCheckInterval
	}
	if c.MaxAttempts < 1 {
		logger.Warn("max_attempts must be >= 1, using default", zap.Int("value", c.MaxAttempts))
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.WaitAttempts < 1 {
		logger.Warn("wait_attempts must be >= 1, using default", zap.Int("value", c.WaitAttempts))
		c.WaitAttempts = DefaultWaitAttempts
	}
	if c.PortalURLs == nil {
		c.PortalURLs = []string{}
	}
	return c
}
