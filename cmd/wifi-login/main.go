package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/wifi-login/internal/connectivity"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/config"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/logging"
	"github.com/GriffinCanCode/wifi-login/internal/login"
	"github.com/GriffinCanCode/wifi-login/internal/portal"
	"github.com/GriffinCanCode/wifi-login/internal/providers/browser"
	"github.com/GriffinCanCode/wifi-login/internal/providers/http/client"
)

type options struct {
	url        string
	headless   bool
	test       bool
	verbose    bool
	configPath string
	dev        bool
	wait       int
	printOnly  bool
}

func main() {
	var opts options
	flag.StringVar(&opts.url, "url", "", "Portal URL to open instead of auto-detection")
	flag.BoolVar(&opts.headless, "headless", false, "Drive the portal without a browser window")
	flag.BoolVar(&opts.test, "test", false, "Only check connectivity and exit")
	flag.BoolVar(&opts.verbose, "verbose", false, "Print every probe and debug logs")
	flag.StringVar(&opts.configPath, "config", "", "Service config file with auto-login settings (.json, .yaml, .toml)")
	flag.BoolVar(&opts.dev, "dev", false, "Development logging")
	flag.IntVar(&opts.wait, "wait", login.InteractiveMaxAttempts, "Connectivity polls after opening the portal")
	flag.BoolVar(&opts.printOnly, "print-only", false, "Print the portal URL instead of opening a browser")
	flag.BoolVar(&opts.printOnly, "p", false, "Shorthand for -print-only")
	flag.Parse()

	os.Exit(run(opts, os.Stdout))
}

func run(opts options, out io.Writer) int {
	cfg := config.LoadOrDefault()
	logger := newLogger(cfg, opts)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	probeClient := client.NewClient(client.Options{
		Timeout:   cfg.Probe.Timeout,
		UserAgent: cfg.Probe.UserAgent,
		Rate:      cfg.Probe.Rate,
	})
	checker := connectivity.NewHTTPChecker(connectivity.Config{
		URL:     cfg.Check.URL,
		Timeout: cfg.Check.Timeout,
	}, cfg.Probe.UserAgent).WithLogger(logger)

	// Every line printed while a pass runs goes through events so drain is
	// the only writer.
	events := make(chan login.Event, 64)

	detector := portal.NewDetector(probeClient, portal.Config{Timeout: cfg.Probe.Timeout}).WithLogger(logger)
	if opts.verbose {
		detector.WithProbeHook(func(p portal.ProbeResult) {
			events <- probeEvent(p)
		})
	}

	opener := browser.CommandOpener(cfg.Browser.Opener)
	if opts.printOnly {
		opener = printOpener(events)
	}
	factory := browser.NewFactory(client.Options{
		Timeout:     cfg.Browser.PageLoadTimeout,
		UserAgent:   cfg.Probe.UserAgent,
		InsecureTLS: cfg.Browser.InsecureTLS,
	}, opener, logger)

	runner := login.NewRunner(checker, detector, factory, login.Config{
		MaxAttempts:     opts.wait,
		PageLoadTimeout: cfg.Browser.PageLoadTimeout,
		Headless:        opts.headless,
		AutoLogin:       autoLogin(opts, logger),
	}).WithReporter(login.ReporterFunc(func(e login.Event) {
		events <- e
	})).WithLogger(logger)

	if opts.test {
		return drain(out, events, func() int {
			result := runner.Check(ctx)
			if result.Connected() {
				return 0
			}
			return 1
		})
	}

	var outcome login.Outcome
	code := drain(out, events, func() int {
		outcome = runner.Run(ctx, opts.url)
		if outcome.Connected() {
			return 0
		}
		return 1
	})
	if outcome.Result == login.ResultNoPortal {
		printGuidance(out, opts.url, outcome.Connectivity)
	}
	if outcome.Err != nil && opts.verbose {
		fmt.Fprintf(out, "Error: %v\n", outcome.Err)
	}
	return code
}

// drain runs fn on its own goroutine and prints events until it returns.
func drain(out io.Writer, events chan login.Event, fn func() int) int {
	done := make(chan int, 1)
	go func() {
		code := fn()
		close(events)
		done <- code
	}()

	for e := range events {
		fmt.Fprintf(out, "[%s] %s\n", e.Time.Format("15:04:05"), e.Message)
	}
	return <-done
}

func probeEvent(p portal.ProbeResult) login.Event {
	e := login.Event{State: login.Detecting, URL: p.Endpoint, Time: time.Now()}
	switch {
	case p.Err != nil:
		e.Message = fmt.Sprintf("  probe %s: %v", p.Endpoint, p.Err)
	case p.Redirected():
		e.Message = fmt.Sprintf("  probe %s -> %s (portal)", p.Endpoint, p.FinalURL)
	default:
		e.Message = fmt.Sprintf("  probe %s: HTTP %d, no redirect", p.Endpoint, p.StatusCode)
	}
	return e
}

// printOpener reports the portal URL instead of launching a browser.
func printOpener(events chan<- login.Event) browser.Opener {
	return func(ctx context.Context, rawURL string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		events <- login.Event{
			State:   login.Opening,
			Message: "Portal URL: " + rawURL,
			URL:     rawURL,
			Time:    time.Now(),
		}
		return nil
	}
}

func printGuidance(out io.Writer, override string, last connectivity.Result) {
	switch {
	case override != "" && !portal.ValidURL(override):
		fmt.Fprintf(out, "%q is not a valid portal URL. Use a full http:// or https:// address.\n", override)
	case last.Status == connectivity.Limited:
		fmt.Fprintln(out, "The network answers but no login page was found.")
		fmt.Fprintln(out, "Open any plain http:// site in a browser, or pass the portal address with -url.")
	default:
		fmt.Fprintln(out, "The network did not answer at all.")
		fmt.Fprintln(out, "Check the Wi-Fi signal, that you are joined to the right network, and your DNS settings.")
	}
}

func autoLogin(opts options, logger *logging.Logger) *login.AutoLogin {
	if opts.configPath != "" {
		svc := config.LoadServiceConfig(opts.configPath, logger)
		if auto := login.AutoLoginFromConfig(svc.AutoLogin); auto != nil {
			return auto
		}
	}
	if opts.headless {
		return &login.AutoLogin{AutoSubmit: true}
	}
	return nil
}

func newLogger(cfg *config.Config, opts options) *logging.Logger {
	logCfg := logging.Config{
		Level:       "warn",
		Development: true,
		OutputPaths: []string{"stderr"},
	}
	if opts.verbose {
		logCfg.Level = "debug"
	}
	if opts.dev {
		logCfg = logging.DevelopmentConfig()
		logCfg.OutputPaths = []string{"stderr"}
	}
	logCfg = logCfg.WithFile(cfg.Logging.File)

	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		return logging.NewDevelopment()
	}
	logger.Debug("Configuration loaded",
		zap.String("check_url", cfg.Check.URL),
		zap.Duration("probe_timeout", cfg.Probe.Timeout),
		zap.Int("wait", opts.wait),
		zap.Bool("headless", opts.headless),
	)
	return logger
}
