package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.Empty(t, cfg.Logging.File)

	// Check config
	assert.Equal(t, "https://www.google.com", cfg.Check.URL)
	assert.Equal(t, 5*time.Second, cfg.Check.Timeout)

	// Probe config
	assert.Equal(t, 5*time.Second, cfg.Probe.Timeout)
	assert.Zero(t, cfg.Probe.Rate)
	assert.Equal(t, "wifi-login/1.0", cfg.Probe.UserAgent)

	// Browser config
	assert.Equal(t, 30*time.Second, cfg.Browser.PageLoadTimeout)
	assert.True(t, cfg.Browser.InsecureTLS)

	// Status config
	assert.Empty(t, cfg.Status.Addr)
	assert.Equal(t, 10, cfg.Status.RequestsPerSecond)
	assert.Equal(t, 20, cfg.Status.Burst)
	assert.Equal(t, []string{"*"}, cfg.Status.AllowOrigins)
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"LOG_LEVEL":            "debug",
		"LOG_DEV":              "true",
		"LOG_FILE":             "/tmp/wifi_login.log",
		"CHECK_URL":            "http://check.example/ok",
		"CHECK_TIMEOUT":        "2s",
		"PROBE_TIMEOUT":        "1500ms",
		"PROBE_RATE":           "2.5",
		"USER_AGENT":           "probe-test",
		"BROWSER_PAGE_TIMEOUT": "10s",
		"BROWSER_OPENER":       "firefox",
		"BROWSER_INSECURE_TLS": "false",
		"STATUS_ADDR":          "127.0.0.1:9100",
		"STATUS_RPS":           "50",
		"STATUS_BURST":         "100",
		"STATUS_ORIGINS":       "http://a.example,http://b.example",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "/tmp/wifi_login.log", cfg.Logging.File)
	assert.Equal(t, "http://check.example/ok", cfg.Check.URL)
	assert.Equal(t, 2*time.Second, cfg.Check.Timeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Probe.Timeout)
	assert.Equal(t, 2.5, cfg.Probe.Rate)
	assert.Equal(t, "probe-test", cfg.Probe.UserAgent)
	assert.Equal(t, 10*time.Second, cfg.Browser.PageLoadTimeout)
	assert.Equal(t, "firefox", cfg.Browser.Opener)
	assert.False(t, cfg.Browser.InsecureTLS)
	assert.Equal(t, "127.0.0.1:9100", cfg.Status.Addr)
	assert.Equal(t, 50, cfg.Status.RequestsPerSecond)
	assert.Equal(t, 100, cfg.Status.Burst)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Status.AllowOrigins)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("CHECK_TIMEOUT", "1s")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, time.Second, cfg.Check.Timeout)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Defaults still apply
	assert.Equal(t, "https://www.google.com", cfg.Check.URL)
	assert.Equal(t, 5*time.Second, cfg.Probe.Timeout)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("CHECK_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 5*time.Second, cfg.Check.Timeout)
}
