// Package service runs the login flow unattended.
//
// A Service wakes every check interval, checks connectivity and, when the
// machine is offline, runs up to MaxAttempts login passes. Each pass tries
// the configured portal URLs first and falls back to detection. The last
// connectivity result and the last pass outcome are kept for the status
// server.
//
// Example Usage:
//
//	cfg := config.LoadServiceConfig(path, logger)
//	svc := service.New(cfg, checker, runner).WithLogger(logger)
//	go svc.Run(ctx)
//	defer svc.Stop()
package service
