// Package server hosts the status API of the login service: health, the
// last connectivity result and login outcome, Prometheus metrics and a
// WebSocket stream of login events.
package server
