// Command wifi-login-service keeps a headless machine logged in to a captive
// portal.
//
// Every check interval it verifies connectivity and, when offline, tries the
// configured portal URLs and then portal detection, submitting the login
// form with the configured selectors and credentials.
//
// Usage:
//
//	wifi-login-service -config /etc/wifi-login/config.yaml -status-addr 127.0.0.1:8089
//
// Environment variables (LOG_LEVEL, CHECK_URL, PROBE_TIMEOUT, STATUS_ADDR, ...)
// configure the process; the config file configures the login behavior.
// SIGINT or SIGTERM stops the service after the current attempt; a second
// signal exits immediately.
package main
