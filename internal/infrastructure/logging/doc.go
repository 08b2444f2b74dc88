// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// The headless service adds a file sink through Config.WithFile so a
// long-running daemon leaves a trail next to its configuration.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Probe redirected", zap.String("final_url", final))
//	logger.Error("Browser unavailable", zap.Error(err))
package logging
