// Package middleware provides the HTTP middleware of the status server.
//
// Middleware stack includes:
//   - CORS: cross-origin access for dashboards polling /status
//   - RateLimit: per-IP token bucket rate limiting with idle eviction
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
