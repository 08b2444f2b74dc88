package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value reads the current value of a single-series counter or gauge.
func value(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	var m dto.Metric
	require.NoError(t, (<-ch).Write(&m))
	if m.Counter != nil {
		return m.Counter.GetValue()
	}
	return m.Gauge.GetValue()
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCheck("connected", time.Second)
		m.RecordProbe("redirect")
		m.RecordDetection("found")
		m.RecordLogin("restored", 3)
		m.IncIterations()
		m.SetBrowserState(2)
		m.RecordHTTPRequest("GET", "/status", "200", time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}

func TestRecorders(t *testing.T) {
	m := NewMetrics()

	m.RecordCheck("connected", 20*time.Millisecond)
	m.RecordCheck("disconnected", time.Second)
	m.RecordCheck("disconnected", time.Second)
	m.RecordProbe("error")
	m.RecordDetection("none")
	m.RecordLogin("timed_out", 10)
	m.IncIterations()
	m.SetBrowserState(2)

	assert.Equal(t, 1.0, value(t, m.Checks.WithLabelValues("connected")))
	assert.Equal(t, 2.0, value(t, m.Checks.WithLabelValues("disconnected")))
	assert.Equal(t, 1.0, value(t, m.Probes.WithLabelValues("error")))
	assert.Equal(t, 1.0, value(t, m.Detections.WithLabelValues("none")))
	assert.Equal(t, 1.0, value(t, m.Logins.WithLabelValues("timed_out")))
	assert.Equal(t, 1.0, value(t, m.Iterations))
	assert.Equal(t, 2.0, value(t, m.BrowserState))
}

func TestSeparateRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.IncIterations()

	assert.Equal(t, 1.0, value(t, a.Iterations))
	assert.Equal(t, 0.0, value(t, b.Iterations))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/healthz", "/nope"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 1.0, value(t, m.RequestsTotal.WithLabelValues("GET", "/healthz", "204")))
	assert.Equal(t, 1.0, value(t, m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
