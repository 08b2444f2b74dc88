// Package http provides the status API handlers.
//
// Routes:
//   - GET /healthz: liveness, version and uptime
//   - GET /status: last connectivity result and last login outcome
package http
