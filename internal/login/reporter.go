package login

import (
	"time"

	"github.com/GriffinCanCode/wifi-login/internal/shared/id"
)

// Event is a progress notification emitted on every state transition and
// every waiting poll.
type Event struct {
	Attempt id.AttemptID `json:"attempt"`
	State   State        `json:"state"`
	Message string       `json:"message"`
	URL     string       `json:"url,omitempty"`
	// Poll is the 1-based waiting attempt, zero outside Waiting.
	Poll     int       `json:"poll,omitempty"`
	MaxPolls int       `json:"max_polls,omitempty"`
	Time     time.Time `json:"time"`
}

// Reporter receives progress events. Implementations must not block for long;
// the runner calls them inline.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

// Report calls f.
func (f ReporterFunc) Report(e Event) { f(e) }

// Reporters fans an event out to several reporters in order.
type Reporters []Reporter

// Report forwards e to every non-nil reporter.
func (rs Reporters) Report(e Event) {
	for _, r := range rs {
		if r != nil {
			r.Report(e)
		}
	}
}

type nopReporter struct{}

func (nopReporter) Report(Event) {}
