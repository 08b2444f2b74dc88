package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/GriffinCanCode/wifi-login/internal/api/http"
	"github.com/GriffinCanCode/wifi-login/internal/connectivity"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/config"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/wifi-login/internal/login"
	"github.com/GriffinCanCode/wifi-login/internal/service"
)

type staticStatus struct {
	status service.Status
}

func (s staticStatus) Status() service.Status { return s.status }

func testOptions() Options {
	return Options{
		Status:  config.Default().Status,
		Version: "test",
	}
}

func newTestServer(t *testing.T, st service.Status, metrics *monitoring.Metrics) (*Server, *httptest.Server) {
	t.Helper()
	s := New(testOptions(), staticStatus{status: st}, metrics, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Hub().Close()
		ts.Close()
		s.tracer.Close()
	})
	return s, ts
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, service.Status{}, nil)

	code, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, code)

	var health map[string]any
	require.NoError(t, sonic.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "test", health["version"])
}

func TestTraceHeaders(t *testing.T) {
	_, ts := newTestServer(t, service.Status{}, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.True(t, strings.HasPrefix(resp.Header.Get("X-Trace-ID"), "trc_"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("X-Span-ID"), "spn_"))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/status", nil)
	require.NoError(t, err)
	req.Header.Set("X-Trace-ID", "trc_caller")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "trc_caller", resp.Header.Get("X-Trace-ID"))
}

func TestStatus(t *testing.T) {
	checkedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	st := service.Status{
		Running:    true,
		Iterations: 4,
		PortalURLs: []string{"http://10.0.0.1/login"},
		LastCheck: &connectivity.Result{
			Status:     connectivity.Limited,
			Reason:     "Limited connectivity (HTTP 302)",
			StatusCode: 302,
			Latency:    120 * time.Millisecond,
			CheckedAt:  checkedAt,
		},
		LastOutcome: &login.Outcome{
			Attempt:   "att_01TEST",
			Result:    login.ResultTimedOut,
			State:     login.TimedOut,
			PortalURL: "http://10.0.0.1/login",
			Attempts:  10,
			Err:       errors.New("gave up"),
		},
	}
	_, ts := newTestServer(t, st, nil)

	code, body := get(t, ts.URL+"/status")
	require.Equal(t, http.StatusOK, code)

	var view apihttp.StatusView
	require.NoError(t, sonic.Unmarshal(body, &view))
	assert.True(t, view.Running)
	assert.Equal(t, 4, view.Iterations)
	require.NotNil(t, view.LastCheck)
	assert.Equal(t, int64(120), view.LastCheck.LatencyMS)
	assert.Equal(t, 302, view.LastCheck.HTTPStatus)
	require.NotNil(t, view.LastOutcome)
	assert.Equal(t, "http://10.0.0.1/login", view.LastOutcome.PortalURL)
	assert.Equal(t, "gave up", view.LastOutcome.Error)

	raw := string(body)
	assert.Contains(t, raw, `"status":"limited"`)
	assert.Contains(t, raw, `"result":"timed_out"`)
	assert.Contains(t, raw, `"state":"timed_out"`)
}

func TestStatusEmpty(t *testing.T) {
	_, ts := newTestServer(t, service.Status{}, nil)

	code, body := get(t, ts.URL+"/status")
	require.Equal(t, http.StatusOK, code)
	raw := string(body)
	assert.Contains(t, raw, `"last_check":null`)
	assert.Contains(t, raw, `"portal_urls":[]`)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := monitoring.NewMetrics()
	metrics.RecordCheck("limited", 50*time.Millisecond)
	_, ts := newTestServer(t, service.Status{}, metrics)

	// one request so the HTTP metrics have a sample
	get(t, ts.URL+"/healthz")

	code, body := get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "wifilogin_connectivity_checks_total")
	assert.Contains(t, string(body), `path="/healthz"`)
}

func TestEventsStream(t *testing.T) {
	s, ts := newTestServer(t, service.Status{}, nil)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.Hub().Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

	s.Hub().Report(login.Event{
		Attempt:  "att_01TEST",
		State:    login.Waiting,
		Message:  "Waiting for connection... (3/10)",
		Poll:     3,
		MaxPolls: 10,
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, sonic.Unmarshal(data, &got))
	assert.Equal(t, "waiting", got["state"])
	assert.Equal(t, "att_01TEST", got["attempt"])
	assert.EqualValues(t, 3, got["poll"])
}

func TestStartAndShutdown(t *testing.T) {
	opts := testOptions()
	opts.Status.Addr = "127.0.0.1:0"
	s := New(opts, staticStatus{}, nil, nil)

	require.NoError(t, s.Start())
	code, _ := get(t, "http://"+s.Addr()+"/healthz")
	assert.Equal(t, http.StatusOK, code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	_, err := http.Get("http://" + s.Addr() + "/healthz")
	assert.Error(t, err)
}

func TestStartInvalidAddr(t *testing.T) {
	opts := testOptions()
	opts.Status.Addr = "not-an-address"
	s := New(opts, staticStatus{}, nil, nil)
	assert.Error(t, s.Start())
}
