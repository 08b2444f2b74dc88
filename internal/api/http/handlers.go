package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/wifi-login/internal/connectivity"
	"github.com/GriffinCanCode/wifi-login/internal/login"
	"github.com/GriffinCanCode/wifi-login/internal/service"
)

// StatusProvider exposes the login service state.
type StatusProvider interface {
	Status() service.Status
}

// Handlers contains the status API handlers.
type Handlers struct {
	status  StatusProvider
	version string
	started time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(status StatusProvider, version string) *Handlers {
	return &Handlers{
		status:  status,
		version: version,
		started: time.Now(),
	}
}

// CheckView is the JSON form of a connectivity result.
type CheckView struct {
	Status     connectivity.Status `json:"status"`
	Reason     string              `json:"reason"`
	HTTPStatus int                 `json:"http_status,omitempty"`
	LatencyMS  int64               `json:"latency_ms"`
	CheckedAt  time.Time           `json:"checked_at"`
}

// OutcomeView is the JSON form of a login pass outcome.
type OutcomeView struct {
	Attempt    string       `json:"attempt"`
	Result     login.Result `json:"result"`
	State      login.State  `json:"state"`
	PortalURL  string       `json:"portal_url,omitempty"`
	Attempts   int          `json:"attempts"`
	Error      string       `json:"error,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// StatusView is the body of GET /status.
type StatusView struct {
	Running     bool         `json:"running"`
	StartedAt   time.Time    `json:"started_at,omitempty"`
	Iterations  int          `json:"iterations"`
	PortalURLs  []string     `json:"portal_urls"`
	LastCheck   *CheckView   `json:"last_check"`
	LastOutcome *OutcomeView `json:"last_outcome"`
}

// Health reports liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "wifi-login",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// Status reports the last connectivity check and login outcome.
func (h *Handlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, NewStatusView(h.status.Status()))
}

// NewStatusView converts a service snapshot to its JSON form.
func NewStatusView(st service.Status) StatusView {
	view := StatusView{
		Running:    st.Running,
		StartedAt:  st.StartedAt,
		Iterations: st.Iterations,
		PortalURLs: st.PortalURLs,
	}
	if view.PortalURLs == nil {
		view.PortalURLs = []string{}
	}
	if r := st.LastCheck; r != nil {
		view.LastCheck = &CheckView{
			Status:     r.Status,
			Reason:     r.Reason,
			HTTPStatus: r.StatusCode,
			LatencyMS:  r.Latency.Milliseconds(),
			CheckedAt:  r.CheckedAt,
		}
	}
	if o := st.LastOutcome; o != nil {
		view.LastOutcome = &OutcomeView{
			Attempt:    o.Attempt.String(),
			Result:     o.Result,
			State:      o.State,
			PortalURL:  o.PortalURL,
			Attempts:   o.Attempts,
			StartedAt:  o.StartedAt,
			FinishedAt: o.FinishedAt,
		}
		if o.Err != nil {
			view.LastOutcome.Error = o.Err.Error()
		}
	}
	return view
}
