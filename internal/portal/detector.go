package portal

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/logging"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/wifi-login/internal/providers/http/client"
)

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 5 * time.Second

// Source tells where a candidate came from.
type Source int

const (
	SourceOverride Source = iota
	SourceRedirect
)

func (s Source) String() string {
	if s == SourceOverride {
		return "override"
	}
	return "redirect"
}

// Candidate is the URL believed to be the portal login page.
type Candidate struct {
	URL    string
	Source Source
	// Probe is the endpoint whose redirect produced the candidate.
	Probe string
}

// ProbeResult is the observation from one probe endpoint.
type ProbeResult struct {
	Endpoint   string
	FinalURL   string
	StatusCode int
	Err        error
}

// Redirected reports whether the probe counts as portal evidence: it landed
// on a valid URL other than the one requested.
func (p ProbeResult) Redirected() bool {
	return p.Err == nil && p.FinalURL != p.Endpoint && ValidURL(p.FinalURL)
}

func (p ProbeResult) outcome() string {
	switch {
	case p.Err != nil:
		return "error"
	case p.Redirected():
		return "redirect"
	default:
		return "no_redirect"
	}
}

// Getter is the HTTP capability a Detector needs.
type Getter interface {
	Get(ctx context.Context, rawURL string, follow bool) (*client.Response, error)
}

// Config configures a Detector.
type Config struct {
	// Endpoints overrides the built-in probe list.
	Endpoints []string
	Timeout   time.Duration
}

// Detector discovers the portal URL by probing endpoints in order.
type Detector struct {
	endpoints []string
	timeout   time.Duration
	http      Getter
	logger    *logging.Logger
	metrics   *monitoring.Metrics
	onProbe   func(ProbeResult)
}

// NewDetector creates a detector. Zero config fields take their defaults.
func NewDetector(getter Getter, cfg Config) *Detector {
	endpoints := cfg.Endpoints
	if len(endpoints) == 0 {
		endpoints = DefaultProbeEndpoints()
	} else {
		endpoints = append([]string(nil), endpoints...)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Detector{
		endpoints: endpoints,
		timeout:   cfg.Timeout,
		http:      getter,
		logger:    logging.NewNop(),
	}
}

// WithLogger sets the logger
func (d *Detector) WithLogger(logger *logging.Logger) *Detector {
	d.logger = logger.Named("portal")
	return d
}

// WithMetrics sets the metrics collector
func (d *Detector) WithMetrics(metrics *monitoring.Metrics) *Detector {
	d.metrics = metrics
	return d
}

// WithProbeHook registers fn to observe every probe as it completes.
func (d *Detector) WithProbeHook(fn func(ProbeResult)) *Detector {
	d.onProbe = fn
	return d
}

// Endpoints returns a copy of the probe list in use.
func (d *Detector) Endpoints() []string {
	return append([]string(nil), d.endpoints...)
}

// Detect returns the portal candidate. A non-empty override is validated and
// returned unchanged without touching the network; an invalid override is
// not repaired. Without an override the first probe that redirects wins and
// the remaining endpoints are skipped. ok is false when nothing was found.
func (d *Detector) Detect(ctx context.Context, override string) (Candidate, bool) {
	if override != "" {
		if !ValidURL(override) {
			d.logger.Warn("Rejected portal URL override", zap.String("url", override))
			d.metrics.RecordDetection("invalid_override")
			return Candidate{}, false
		}
		d.metrics.RecordDetection("override")
		return Candidate{URL: override, Source: SourceOverride}, true
	}

	for _, endpoint := range d.endpoints {
		if ctx.Err() != nil {
			break
		}

		probe := d.Probe(ctx, endpoint)
		if probe.Redirected() {
			d.logger.Info("Detected portal",
				zap.String("probe", endpoint),
				zap.String("portal_url", probe.FinalURL),
			)
			d.metrics.RecordDetection("found")
			return Candidate{URL: probe.FinalURL, Source: SourceRedirect, Probe: endpoint}, true
		}
	}

	d.metrics.RecordDetection("none")
	return Candidate{}, false
}

// Probe issues one redirect-following GET to endpoint. Transport errors are
// captured in the result, never returned.
func (d *Detector) Probe(ctx context.Context, endpoint string) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result := ProbeResult{Endpoint: endpoint}
	resp, err := d.http.Get(ctx, endpoint, true)
	if err != nil {
		result.Err = err
	} else {
		result.FinalURL = resp.FinalURL
		result.StatusCode = resp.StatusCode
	}

	d.logger.Debug("Probed endpoint",
		zap.String("endpoint", endpoint),
		zap.String("final_url", result.FinalURL),
		zap.Int("status", result.StatusCode),
		zap.String("outcome", result.outcome()),
		zap.Error(result.Err),
	)
	d.metrics.RecordProbe(result.outcome())
	if d.onProbe != nil {
		d.onProbe(result)
	}
	return result
}
