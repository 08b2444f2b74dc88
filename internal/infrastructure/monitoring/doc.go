// Package monitoring provides Prometheus metrics for wifi-login.
//
// Metrics live on a private registry rather than the global default, so
// tests and the CLI can build as many collectors as they like. The service
// exposes the registry on /metrics through the status server.
//
// Collected series:
//   - connectivity checks by status and their latency
//   - portal probes by outcome (redirect, no_redirect, error)
//   - detection passes by result (override, found, invalid_override, none)
//   - orchestration outcomes and polls spent waiting
//   - service loop iterations and browser breaker state
//   - status server requests
package monitoring
