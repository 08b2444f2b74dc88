package login

import "fmt"

// State is a step of the login flow.
type State int

const (
	Idle State = iota
	Checking
	Connected
	Detecting
	Opening
	Waiting
	Failed
	TimedOut
)

var stateNames = [...]string{
	Idle:      "idle",
	Checking:  "checking",
	Connected: "connected",
	Detecting: "detecting",
	Opening:   "opening",
	Waiting:   "waiting",
	Failed:    "failed",
	TimedOut:  "timed_out",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// Terminal reports whether the flow ends in s.
func (s State) Terminal() bool {
	return s == Connected || s == Failed || s == TimedOut
}

// Result classifies how a run ended.
type Result int

const (
	// ResultAlreadyConnected means the first check found internet access.
	ResultAlreadyConnected Result = iota
	// ResultRestored means connectivity came back while waiting.
	ResultRestored
	// ResultNoPortal means detection produced no candidate.
	ResultNoPortal
	// ResultBrowserUnavailable means no browser session could be created.
	ResultBrowserUnavailable
	// ResultNavigationFailed means the session could not load the portal.
	ResultNavigationFailed
	// ResultTimedOut means waiting used every attempt without connectivity.
	ResultTimedOut
	// ResultCancelled means the context ended the run early.
	ResultCancelled
)

var resultNames = [...]string{
	ResultAlreadyConnected:   "already_connected",
	ResultRestored:           "restored",
	ResultNoPortal:           "no_portal",
	ResultBrowserUnavailable: "browser_unavailable",
	ResultNavigationFailed:   "navigation_failed",
	ResultTimedOut:           "timed_out",
	ResultCancelled:          "cancelled",
}

func (r Result) String() string {
	if r < 0 || int(r) >= len(resultNames) {
		return "unknown"
	}
	return resultNames[r]
}

// MarshalText encodes the result by name.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a result name.
func (r *Result) UnmarshalText(text []byte) error {
	for i, name := range resultNames {
		if name == string(text) {
			*r = Result(i)
			return nil
		}
	}
	return fmt.Errorf("unknown result %q", text)
}
