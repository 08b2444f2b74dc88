package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/wifi-login/internal/connectivity"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/config"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/logging"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/wifi-login/internal/login"
)

// Runner performs one login pass.
type Runner interface {
	Run(ctx context.Context, override string) login.Outcome
}

// Status is a snapshot of the service for the status endpoint.
type Status struct {
	Running     bool
	StartedAt   time.Time
	Iterations  int
	LastCheck   *connectivity.Result
	LastOutcome *login.Outcome
	PortalURLs  []string
}

// Service keeps a machine online by re-running the login flow whenever
// connectivity drops.
type Service struct {
	cfg      config.ServiceConfig
	interval time.Duration
	checker  login.Checker
	runner   Runner
	logger   *logging.Logger
	metrics  *monitoring.Metrics

	stopOnce sync.Once
	stopCh   chan struct{}

	mu          sync.RWMutex
	running     bool
	startedAt   time.Time
	iterations  int
	lastCheck   *connectivity.Result
	lastOutcome *login.Outcome
}

// New creates a service. cfg is expected to be normalized by
// config.LoadServiceConfig.
func New(cfg config.ServiceConfig, checker login.Checker, runner Runner) *Service {
	return &Service{
		cfg:      cfg,
		interval: time.Duration(cfg.CheckInterval) * time.Second,
		checker:  checker,
		runner:   runner,
		logger:   logging.NewNop(),
		stopCh:   make(chan struct{}),
	}
}

// WithLogger sets the logger
func (s *Service) WithLogger(logger *logging.Logger) *Service {
	s.logger = logger.Named("service")
	return s
}

// WithMetrics sets the metrics collector
func (s *Service) WithMetrics(metrics *monitoring.Metrics) *Service {
	s.metrics = metrics
	return s
}

// Run loops until ctx is cancelled or Stop is called. Each iteration checks
// connectivity, logs in if needed, then sleeps the check interval. Stop
// takes effect between iterations; an attempt already under way finishes.
func (s *Service) Run(ctx context.Context) error {
	s.mu.Lock()
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.logger.Info("Starting WiFi login service",
		zap.Duration("check_interval", s.interval),
		zap.Int("max_attempts", s.cfg.MaxAttempts),
		zap.Int("portal_urls", len(s.cfg.PortalURLs)),
		zap.Bool("auto_login", s.cfg.AutoLogin.Enabled),
	)

	for {
		if s.stopped() || ctx.Err() != nil {
			break
		}

		if !s.CheckAndLogin(ctx) {
			s.logger.Warn("Login attempt failed")
		}

		s.mu.Lock()
		s.iterations++
		s.mu.Unlock()
		s.metrics.IncIterations()

		if !s.wait(ctx, s.interval) {
			break
		}
	}

	s.logger.Info("Service stopped")
	return nil
}

// Stop asks Run to return after the current iteration. It is safe to call
// more than once and from any goroutine.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Received shutdown signal")
		close(s.stopCh)
	})
}

// CheckAndLogin reports whether the machine is online after at most
// MaxAttempts passes. A pass tries every known portal URL in order, then
// auto-detection.
func (s *Service) CheckAndLogin(ctx context.Context) bool {
	result := s.checker.Check(ctx)
	s.setCheck(result)
	if result.Connected() {
		s.logger.Debug("Connectivity OK", zap.Duration("latency", result.Latency))
		return true
	}

	s.logger.Info("Connection check failed, attempting login...",
		zap.Stringer("status", result.Status),
		zap.String("reason", result.Reason),
	)

	for pass := 1; pass <= s.cfg.MaxAttempts; pass++ {
		for _, portalURL := range s.cfg.PortalURLs {
			if ctx.Err() != nil {
				return false
			}
			out, stop := s.attempt(ctx, pass, portalURL)
			if out.Connected() {
				return true
			}
			if stop {
				return false
			}
		}

		if ctx.Err() != nil {
			return false
		}
		out, stop := s.attempt(ctx, pass, "")
		if out.Connected() {
			return true
		}
		if stop {
			return false
		}
	}
	return false
}

// attempt runs one pass and reports whether the iteration should give up.
func (s *Service) attempt(ctx context.Context, pass int, portalURL string) (login.Outcome, bool) {
	if portalURL != "" {
		s.logger.Info("Attempting login at known portal", zap.Int("pass", pass), zap.String("url", portalURL))
	} else {
		s.logger.Info("Attempting login with portal detection", zap.Int("pass", pass))
	}

	out := s.runner.Run(ctx, portalURL)
	s.setOutcome(out)

	if errors.Is(out.Err, resilience.ErrCircuitOpen) {
		s.logger.Warn("Browser backend is unavailable, skipping remaining attempts")
		return out, true
	}
	return out, out.Result == login.ResultCancelled
}

// Status returns a snapshot of the service state.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Running:    s.running,
		StartedAt:  s.startedAt,
		Iterations: s.iterations,
		PortalURLs: append([]string(nil), s.cfg.PortalURLs...),
	}
	if s.lastCheck != nil {
		check := *s.lastCheck
		st.LastCheck = &check
	}
	if s.lastOutcome != nil {
		out := *s.lastOutcome
		st.LastOutcome = &out
	}
	return st
}

func (s *Service) setCheck(result connectivity.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCheck = &result
}

func (s *Service) setOutcome(out login.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastOutcome = &out
	if out.Connectivity.CheckedAt.After(timeOf(s.lastCheck)) {
		check := out.Connectivity
		s.lastCheck = &check
	}
}

func timeOf(r *connectivity.Result) time.Time {
	if r == nil {
		return time.Time{}
	}
	return r.CheckedAt
}

func (s *Service) stopped() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// wait sleeps d and reports whether the loop should continue.
func (s *Service) wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-s.stopCh:
		return false
	case <-t.C:
		return true
	}
}
