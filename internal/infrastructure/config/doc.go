// Package config provides configuration for wifi-login.
//
// Two sources exist:
//   - Process configuration (Config) comes from environment variables with
//     defaults, 12-factor style. CLI flags override it.
//   - The headless service's persisted configuration (ServiceConfig) comes
//     from a JSON, YAML or TOML file merged over built-in defaults.
//
// Loading the service file never aborts startup: a missing file yields the
// defaults and a malformed one is logged and replaced by the defaults.
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	svc := config.LoadServiceConfig("/etc/wifi-login.yaml", logger)
//
// Environment Variables:
//   - LOG_LEVEL, LOG_DEV, LOG_FILE
//   - CHECK_URL, CHECK_TIMEOUT
//   - PROBE_TIMEOUT, PROBE_RATE, USER_AGENT
//   - BROWSER_PAGE_TIMEOUT, BROWSER_OPENER
//   - STATUS_ADDR, STATUS_RPS, STATUS_BURST, STATUS_ORIGINS
package config
