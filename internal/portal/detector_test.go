package portal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/wifi-login/internal/providers/http/client"
)

type mockGetter struct {
	mock.Mock
}

func (m *mockGetter) Get(ctx context.Context, rawURL string, follow bool) (*client.Response, error) {
	args := m.Called(ctx, rawURL, follow)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Response), args.Error(1)
}

func landed(requested, final string) *client.Response {
	return &client.Response{RequestedURL: requested, FinalURL: final, StatusCode: http.StatusOK}
}

func TestDefaultProbeEndpoints(t *testing.T) {
	endpoints := DefaultProbeEndpoints()
	require.Len(t, endpoints, 9)
	assert.Equal(t, "http://captive.apple.com", endpoints[0])
	assert.Equal(t, "http://8.8.8.8", endpoints[8])

	endpoints[0] = "http://mutated.example"
	assert.Equal(t, "http://captive.apple.com", DefaultProbeEndpoints()[0])
}

func TestValidURL(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"http://10.0.0.1/login", true},
		{"https://portal.example.com", true},
		{"HTTPS://portal.example.com/path?q=1", true},
		{"", false},
		{"not a url", false},
		{"portal.example.com/login", false},
		{"ftp://portal.example.com", false},
		{"http://", false},
		{"http://:8080", false},
		{"javascript:alert(1)", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidURL(tt.raw))
		})
	}
}

func TestDetectOverridePassThrough(t *testing.T) {
	getter := new(mockGetter)
	detector := NewDetector(getter, Config{})

	candidate, ok := detector.Detect(context.Background(), "http://10.0.0.1/login")
	require.True(t, ok)
	assert.Equal(t, "http://10.0.0.1/login", candidate.URL)
	assert.Equal(t, SourceOverride, candidate.Source)
	getter.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestDetectMalformedOverride(t *testing.T) {
	getter := new(mockGetter)
	detector := NewDetector(getter, Config{})

	_, ok := detector.Detect(context.Background(), "not a url")
	assert.False(t, ok)
	getter.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestDetectThirdProbeWins(t *testing.T) {
	endpoints := []string{"http://a.example", "http://b.example", "http://c.example", "http://d.example"}

	getter := new(mockGetter)
	getter.On("Get", mock.Anything, "http://a.example", true).Return(nil, errors.New("connection refused")).Once()
	getter.On("Get", mock.Anything, "http://b.example", true).Return(landed("http://b.example", "http://b.example"), nil).Once()
	getter.On("Get", mock.Anything, "http://c.example", true).Return(landed("http://c.example", "http://10.0.0.1/login"), nil).Once()

	var seen []ProbeResult
	detector := NewDetector(getter, Config{Endpoints: endpoints}).
		WithProbeHook(func(p ProbeResult) { seen = append(seen, p) })

	candidate, ok := detector.Detect(context.Background(), "")
	require.True(t, ok)
	assert.Equal(t, "http://10.0.0.1/login", candidate.URL)
	assert.Equal(t, SourceRedirect, candidate.Source)
	assert.Equal(t, "http://c.example", candidate.Probe)

	getter.AssertExpectations(t)
	getter.AssertNotCalled(t, "Get", mock.Anything, "http://d.example", mock.Anything)

	require.Len(t, seen, 3)
	assert.Error(t, seen[0].Err)
	assert.False(t, seen[1].Redirected())
	assert.True(t, seen[2].Redirected())
}

func TestDetectNoRedirects(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	endpoints := []string{srv.URL + "/generate_204", srv.URL + "/ncsi.txt", srv.URL + "/success.html"}
	detector := NewDetector(client.NewClient(client.DefaultOptions()), Config{Endpoints: endpoints})

	_, ok := detector.Detect(context.Background(), "")
	assert.False(t, ok)
	assert.Equal(t, int32(3), hits.Load())
}

func TestDetectFollowsRealRedirect(t *testing.T) {
	portal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><title>Guest WiFi</title></html>"))
	}))
	defer portal.Close()

	intercept := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, portal.URL+"/login?orig="+r.URL.Path, http.StatusFound)
	}))
	defer intercept.Close()

	detector := NewDetector(client.NewClient(client.DefaultOptions()), Config{
		Endpoints: []string{intercept.URL + "/hotspot-detect.html"},
	})

	candidate, ok := detector.Detect(context.Background(), "")
	require.True(t, ok)
	assert.Equal(t, portal.URL+"/login?orig=/hotspot-detect.html", candidate.URL)
}

func TestDetectStopsOnCancelledContext(t *testing.T) {
	getter := new(mockGetter)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := NewDetector(getter, Config{}).Detect(ctx, "")
	assert.False(t, ok)
	getter.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewDetectorCopiesEndpoints(t *testing.T) {
	endpoints := []string{"http://a.example"}
	detector := NewDetector(new(mockGetter), Config{Endpoints: endpoints})
	endpoints[0] = "http://changed.example"

	assert.Equal(t, []string{"http://a.example"}, detector.Endpoints())
	assert.Equal(t, DefaultTimeout, detector.timeout)
	assert.Equal(t, DefaultProbeEndpoints(), NewDetector(new(mockGetter), Config{}).Endpoints())
}
