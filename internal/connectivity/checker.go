package connectivity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/logging"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/wifi-login/internal/providers/http/client"
)

const (
	DefaultURL     = "https://www.google.com"
	DefaultTimeout = 5 * time.Second
)

// Status classifies internet reachability.
type Status int

const (
	Disconnected Status = iota
	Limited
	Connected
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Connected:
		return "connected"
	case Limited:
		return "limited"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "connected":
		*s = Connected
	case "limited":
		*s = Limited
	case "disconnected":
		*s = Disconnected
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// Result is one connectivity observation. It is computed fresh on every
// check and never cached.
type Result struct {
	Status     Status        `json:"status"`
	Reason     string        `json:"reason"`
	StatusCode int           `json:"status_code,omitempty"`
	Latency    time.Duration `json:"latency"`
	CheckedAt  time.Time     `json:"checked_at"`
}

// Connected reports whether the result is a full connection.
func (r Result) Connected() bool {
	return r.Status == Connected
}

// Getter is the HTTP capability a Checker needs.
type Getter interface {
	Get(ctx context.Context, rawURL string, follow bool) (*client.Response, error)
}

// Config configures a Checker.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Checker probes one well-known endpoint.
type Checker struct {
	url     string
	timeout time.Duration
	http    Getter
	logger  *logging.Logger
	metrics *monitoring.Metrics
	now     func() time.Time
}

// NewChecker creates a checker. Zero config fields take their defaults.
func NewChecker(getter Getter, cfg Config) *Checker {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Checker{
		url:     cfg.URL,
		timeout: cfg.Timeout,
		http:    getter,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
}

// NewHTTPChecker creates a checker with its own client whose timeout is
// cfg.Timeout, so the check is never cut short by a shorter probe timeout.
func NewHTTPChecker(cfg Config, userAgent string) *Checker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return NewChecker(client.NewClient(client.Options{
		Timeout:   cfg.Timeout,
		UserAgent: userAgent,
	}), cfg)
}

// WithLogger sets the logger
func (c *Checker) WithLogger(logger *logging.Logger) *Checker {
	c.logger = logger.Named("connectivity")
	return c
}

// WithMetrics sets the metrics collector
func (c *Checker) WithMetrics(metrics *monitoring.Metrics) *Checker {
	c.metrics = metrics
	return c
}

// URL returns the endpoint being checked.
func (c *Checker) URL() string {
	return c.url
}

// Check performs exactly one request and classifies it. It never returns an
// error: transport failures become Disconnected with the error as reason.
func (c *Checker) Check(ctx context.Context) (result Result) {
	start := c.now()
	defer func() {
		if r := recover(); r != nil {
			result = Result{Status: Disconnected, Reason: fmt.Sprintf("No internet access: %v", r)}
		}
		result.CheckedAt = start
		result.Latency = c.now().Sub(start)
		c.metrics.RecordCheck(result.Status.String(), result.Latency)
		c.logger.Debug("Connectivity checked",
			zap.String("url", c.url),
			zap.Stringer("status", result.Status),
			zap.String("reason", result.Reason),
			zap.Duration("latency", result.Latency),
		)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.Get(ctx, c.url, true)
	if err != nil {
		return Result{Status: Disconnected, Reason: fmt.Sprintf("No internet access: %v", err)}
	}

	return classify(resp.StatusCode)
}

func classify(code int) Result {
	if code == http.StatusOK {
		return Result{Status: Connected, Reason: "Connected to internet", StatusCode: code}
	}
	return Result{
		Status:     Limited,
		Reason:     fmt.Sprintf("Limited connectivity (HTTP %d)", code),
		StatusCode: code,
	}
}
