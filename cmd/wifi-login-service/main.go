package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/wifi-login/internal/connectivity"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/config"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/logging"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/server"
	"github.com/GriffinCanCode/wifi-login/internal/login"
	"github.com/GriffinCanCode/wifi-login/internal/portal"
	"github.com/GriffinCanCode/wifi-login/internal/providers/browser"
	"github.com/GriffinCanCode/wifi-login/internal/providers/http/client"
	"github.com/GriffinCanCode/wifi-login/internal/service"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// defaultLogFile keeps the service log next to the working directory.
const defaultLogFile = "wifi_login.log"

func main() {
	configPath := flag.String("config", "", "Service config file (.json, .yaml, .toml)")
	dev := flag.Bool("dev", false, "Development logging")
	statusAddr := flag.String("status-addr", "", "Status server address, e.g. 127.0.0.1:8089 (overrides STATUS_ADDR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		cfg = config.Default()
	}
	if *dev {
		cfg.Logging.Development = true
	}
	if *statusAddr != "" {
		cfg.Status.Addr = *statusAddr
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, *configPath, logger); err != nil {
		logger.Error("Service failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string, logger *logging.Logger) error {
	svcCfg := config.LoadServiceConfig(configPath, logger)
	metrics := monitoring.NewMetrics()

	probeClient := client.NewClient(client.Options{
		Timeout:   cfg.Probe.Timeout,
		UserAgent: cfg.Probe.UserAgent,
		Rate:      cfg.Probe.Rate,
	})
	checker := connectivity.NewHTTPChecker(connectivity.Config{
		URL:     cfg.Check.URL,
		Timeout: cfg.Check.Timeout,
	}, cfg.Probe.UserAgent).WithLogger(logger).WithMetrics(metrics)
	detector := portal.NewDetector(probeClient, portal.Config{Timeout: cfg.Probe.Timeout}).
		WithLogger(logger).
		WithMetrics(metrics)

	factory := browser.NewGuarded(
		browser.NewFactory(client.Options{
			Timeout:     cfg.Browser.PageLoadTimeout,
			UserAgent:   cfg.Probe.UserAgent,
			InsecureTLS: cfg.Browser.InsecureTLS,
		}, browser.CommandOpener(cfg.Browser.Opener), logger),
		browser.DefaultGuardSettings(),
		logger,
		metrics,
	)

	runner := login.NewRunner(checker, detector, factory, login.Config{
		MaxAttempts:     svcCfg.WaitAttempts,
		PageLoadTimeout: cfg.Browser.PageLoadTimeout,
		Headless:        true,
		AutoLogin:       login.AutoLoginFromConfig(svcCfg.AutoLogin),
	}).WithLogger(logger).WithMetrics(metrics)

	svc := service.New(svcCfg, checker, runner).WithLogger(logger).WithMetrics(metrics)

	var srv *server.Server
	if cfg.Status.Addr != "" {
		srv = server.New(server.Options{
			Status:      cfg.Status,
			Version:     version,
			Development: cfg.Logging.Development,
		}, svc, metrics, logger)
		runner.WithReporter(srv.Hub())
		if err := srv.Start(); err != nil {
			return err
		}
	}

	// The first signal lets the current attempt finish; a second one
	// terminates the process.
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCtx.Done()
		stop()
		svc.Stop()
	}()
	defer stop()

	if err := svc.Run(context.Background()); err != nil {
		return err
	}

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Status server shutdown failed", zap.Error(err))
		}
	}
	return nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	} else {
		logCfg.Level = cfg.Logging.Level
	}
	file := cfg.Logging.File
	if file == "" {
		file = defaultLogFile
	}
	logCfg = logCfg.WithFile(file)

	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, logging to stdout only\n", err)
		return logging.NewDefault()
	}
	return logger
}
