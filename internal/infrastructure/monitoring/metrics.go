package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing, so components can take it as an optional dependency.
type Metrics struct {
	registry *prometheus.Registry

	// Connectivity metrics
	Checks        *prometheus.CounterVec
	CheckDuration prometheus.Histogram

	// Detection metrics
	Probes     *prometheus.CounterVec
	Detections *prometheus.CounterVec

	// Orchestration metrics
	Logins       *prometheus.CounterVec
	WaitAttempts prometheus.Histogram
	Iterations   prometheus.Counter
	BrowserState prometheus.Gauge

	// Status server metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a metrics collector on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wifilogin_connectivity_checks_total",
				Help: "Connectivity checks by resulting status",
			},
			[]string{"status"},
		),
		CheckDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wifilogin_connectivity_check_duration_seconds",
				Help:    "Connectivity check duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		Probes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wifilogin_portal_probes_total",
				Help: "Portal probe requests by outcome",
			},
			[]string{"outcome"},
		),
		Detections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wifilogin_portal_detections_total",
				Help: "Portal detection passes by result",
			},
			[]string{"result"},
		),
		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wifilogin_login_outcomes_total",
				Help: "Detect-open-wait cycles by outcome",
			},
			[]string{"outcome"},
		),
		WaitAttempts: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wifilogin_wait_attempts",
				Help:    "Connectivity polls spent waiting after opening a portal",
				Buckets: []float64{1, 2, 3, 5, 10, 20, 30},
			},
		),
		Iterations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wifilogin_service_iterations_total",
				Help: "Headless service loop iterations",
			},
		),
		BrowserState: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "wifilogin_browser_breaker_state",
				Help: "Browser breaker state (0 closed, 1 half-open, 2 open)",
			},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wifilogin_http_requests_total",
				Help: "Status server requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wifilogin_http_request_duration_seconds",
				Help:    "Status server request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordCheck records a connectivity check
func (m *Metrics) RecordCheck(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Checks.WithLabelValues(status).Inc()
	m.CheckDuration.Observe(duration.Seconds())
}

// RecordProbe records a single portal probe
func (m *Metrics) RecordProbe(outcome string) {
	if m == nil {
		return
	}
	m.Probes.WithLabelValues(outcome).Inc()
}

// RecordDetection records a detection pass
func (m *Metrics) RecordDetection(result string) {
	if m == nil {
		return
	}
	m.Detections.WithLabelValues(result).Inc()
}

// RecordLogin records the outcome of one orchestration pass
func (m *Metrics) RecordLogin(outcome string, waitAttempts int) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
	if waitAttempts > 0 {
		m.WaitAttempts.Observe(float64(waitAttempts))
	}
}

// IncIterations increments the service iteration counter
func (m *Metrics) IncIterations() {
	if m == nil {
		return
	}
	m.Iterations.Inc()
}

// SetBrowserState publishes the browser breaker state
func (m *Metrics) SetBrowserState(state int) {
	if m == nil {
		return
	}
	m.BrowserState.Set(float64(state))
}

// RecordHTTPRequest records a status server request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
