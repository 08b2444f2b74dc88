package login

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/wifi-login/internal/connectivity"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/logging"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/wifi-login/internal/portal"
	"github.com/GriffinCanCode/wifi-login/internal/providers/browser"
	"github.com/GriffinCanCode/wifi-login/internal/shared/id"
)

// Interactive and service wait budgets.
const (
	DefaultPollInterval    = time.Second
	InteractiveMaxAttempts = 30
	ServiceMaxAttempts     = 10
	DefaultPageLoadTimeout = 30 * time.Second
)

// ErrBrowserUnavailable is wrapped when no browser session can be created.
var ErrBrowserUnavailable = errors.New("browser unavailable")

// Checker classifies connectivity.
type Checker interface {
	Check(ctx context.Context) connectivity.Result
}

// Detector finds the portal URL.
type Detector interface {
	Detect(ctx context.Context, override string) (portal.Candidate, bool)
}

// Config configures a Runner.
type Config struct {
	PollInterval    time.Duration
	MaxAttempts     int
	PageLoadTimeout time.Duration
	Headless        bool
	AutoLogin       *AutoLogin
}

// Outcome is the result of one Run.
type Outcome struct {
	Attempt   id.AttemptID
	Result    Result
	State     State
	PortalURL string
	// Attempts is the number of waiting polls performed.
	Attempts     int
	Connectivity connectivity.Result
	Err          error
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Connected reports whether the run ended with internet access.
func (o Outcome) Connected() bool {
	return o.Result == ResultAlreadyConnected || o.Result == ResultRestored
}

// Runner drives one check → detect → open → wait cycle.
type Runner struct {
	checker  Checker
	detector Detector
	factory  browser.Factory
	cfg      Config
	reporter Reporter
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a runner. Zero config fields take the interactive
// defaults.
func NewRunner(checker Checker, detector Detector, factory browser.Factory, cfg Config) *Runner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = InteractiveMaxAttempts
	}
	if cfg.PageLoadTimeout <= 0 {
		cfg.PageLoadTimeout = DefaultPageLoadTimeout
	}
	return &Runner{
		checker:  checker,
		detector: detector,
		factory:  factory,
		cfg:      cfg,
		reporter: nopReporter{},
		logger:   logging.NewNop(),
		sleep:    sleepContext,
	}
}

// WithReporter sets the progress reporter
func (r *Runner) WithReporter(reporter Reporter) *Runner {
	if reporter == nil {
		reporter = nopReporter{}
	}
	r.reporter = reporter
	return r
}

// WithLogger sets the logger
func (r *Runner) WithLogger(logger *logging.Logger) *Runner {
	r.logger = logger.Named("login")
	return r
}

// WithMetrics sets the metrics collector
func (r *Runner) WithMetrics(metrics *monitoring.Metrics) *Runner {
	r.metrics = metrics
	return r
}

// Check runs a single connectivity check and reports it.
func (r *Runner) Check(ctx context.Context) connectivity.Result {
	attempt := id.NewAttemptID()
	r.emit(Event{Attempt: attempt, State: Checking, Message: "Checking connectivity..."})
	result := r.checker.Check(ctx)
	state := Failed
	if result.Connected() {
		state = Connected
	}
	r.emit(Event{Attempt: attempt, State: state, Message: result.Reason})
	return result
}

// Run performs one pass. override, when set, replaces portal detection.
// The browser session, once opened, is closed exactly once before Run
// returns.
func (r *Runner) Run(ctx context.Context, override string) (out Outcome) {
	out = Outcome{Attempt: id.NewAttemptID(), State: Idle, StartedAt: time.Now()}
	log := r.logger.With(zap.String("attempt_id", out.Attempt.String()))

	defer func() {
		out.FinishedAt = time.Now()
		r.metrics.RecordLogin(out.Result.String(), out.Attempts)
		log.Info("Login pass finished",
			zap.Stringer("result", out.Result),
			zap.Stringer("state", out.State),
			zap.String("portal_url", out.PortalURL),
			zap.Int("attempts", out.Attempts),
			zap.Duration("duration", out.FinishedAt.Sub(out.StartedAt)),
			zap.Error(out.Err),
		)
	}()

	r.transition(&out, Checking, "Checking connectivity...")
	out.Connectivity = r.checker.Check(ctx)
	if out.Connectivity.Connected() {
		out.Result = ResultAlreadyConnected
		r.transition(&out, Connected, "Already connected to internet")
		return out
	}
	r.emit(Event{Attempt: out.Attempt, State: Checking, Message: out.Connectivity.Reason})
	if r.cancelled(ctx, &out) {
		return out
	}

	r.transition(&out, Detecting, "Detecting portal...")
	candidate, ok := r.detector.Detect(ctx, override)
	if !ok {
		if r.cancelled(ctx, &out) {
			return out
		}
		out.Result = ResultNoPortal
		r.transition(&out, Failed, "No captive portal detected")
		return out
	}
	out.PortalURL = candidate.URL

	r.transitionURL(&out, Opening, "Opening portal page", candidate.URL)
	session, err := r.factory.NewSession(ctx, browser.Options{Headless: r.cfg.Headless})
	if err != nil {
		out.Result = ResultBrowserUnavailable
		out.Err = fmt.Errorf("%w: %w", ErrBrowserUnavailable, err)
		r.transition(&out, Failed, "Could not start a browser session")
		return out
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("Failed to close browser session", zap.Error(err))
		}
	}()

	navCtx, cancel := context.WithTimeout(ctx, r.cfg.PageLoadTimeout)
	err = session.Navigate(navCtx, candidate.URL)
	cancel()
	if err != nil {
		if r.cancelled(ctx, &out) {
			return out
		}
		out.Result = ResultNavigationFailed
		out.Err = fmt.Errorf("open portal: %w", err)
		r.transition(&out, Failed, "Could not load the portal page")
		return out
	}

	if r.cfg.AutoLogin != nil {
		if err := r.cfg.AutoLogin.Apply(ctx, session); err != nil {
			log.Warn("Auto-login failed", zap.Error(err))
		} else {
			log.Info("Auto-login attempted", zap.String("url", session.CurrentURL()))
		}
	}

	msg := "Please complete login in browser window"
	if r.cfg.Headless {
		msg = "Running in headless mode - waiting for auto-login"
	}
	r.transitionURL(&out, Waiting, msg, candidate.URL)

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		out.Attempts = attempt
		out.Connectivity = r.checker.Check(ctx)
		if out.Connectivity.Connected() {
			out.Result = ResultRestored
			r.transition(&out, Connected, "Successfully connected!")
			return out
		}

		r.emit(Event{
			Attempt:  out.Attempt,
			State:    Waiting,
			Message:  fmt.Sprintf("Waiting for connection... (%d/%d)", attempt, r.cfg.MaxAttempts),
			Poll:     attempt,
			MaxPolls: r.cfg.MaxAttempts,
		})
		if attempt == r.cfg.MaxAttempts {
			break
		}
		if err := r.sleep(ctx, r.cfg.PollInterval); err != nil {
			r.cancelled(ctx, &out)
			return out
		}
	}

	out.Result = ResultTimedOut
	r.transition(&out, TimedOut, "Login timeout - please try again")
	return out
}

// cancelled ends the run as cancelled when ctx is done.
func (r *Runner) cancelled(ctx context.Context, out *Outcome) bool {
	if ctx.Err() == nil {
		return false
	}
	out.Result = ResultCancelled
	out.Err = ctx.Err()
	r.transition(out, Failed, "Cancelled")
	return true
}

func (r *Runner) transition(out *Outcome, to State, msg string) {
	r.transitionURL(out, to, msg, "")
}

func (r *Runner) transitionURL(out *Outcome, to State, msg, url string) {
	r.logger.Debug("State transition",
		zap.String("attempt_id", out.Attempt.String()),
		zap.Stringer("from", out.State),
		zap.Stringer("to", to),
	)
	out.State = to
	r.emit(Event{Attempt: out.Attempt, State: to, Message: msg, URL: url})
}

func (r *Runner) emit(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	r.reporter.Report(e)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
