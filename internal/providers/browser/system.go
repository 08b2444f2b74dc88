package browser

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/logging"
	"github.com/GriffinCanCode/wifi-login/internal/shared/id"
)

// Opener hands a URL to something that can display it.
type Opener func(ctx context.Context, rawURL string) error

// CommandOpener returns an opener that runs command with the URL appended.
// command is split on whitespace; an empty command selects the platform
// default.
func CommandOpener(command string) Opener {
	args := strings.Fields(command)
	if len(args) == 0 {
		args = defaultOpenerArgs()
	}
	return func(ctx context.Context, rawURL string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Not tied to ctx: the browser must outlive the request that opened it.
		cmd := exec.Command(args[0], append(args[1:], rawURL)...)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("start %s: %w", args[0], err)
		}
		go func() { _ = cmd.Wait() }()
		return nil
	}
}

func defaultOpenerArgs() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	default:
		return []string{"xdg-open"}
	}
}

// SystemSession shows pages in the user's desktop browser. It cannot inspect
// or drive the page, so Find, SetText and Click return ErrUnsupported.
type SystemSession struct {
	id     id.SessionID
	open   Opener
	logger *logging.Logger

	mu      sync.Mutex
	current string
	closed  bool
}

// NewSystemSession creates a session that opens pages with open.
func NewSystemSession(open Opener, logger *logging.Logger) *SystemSession {
	if open == nil {
		open = CommandOpener("")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	sid := id.NewSessionID()
	return &SystemSession{
		id:     sid,
		open:   open,
		logger: logger.Named("browser").With(zap.String("session_id", sid.String())),
	}
}

// ID returns the session identifier.
func (s *SystemSession) ID() id.SessionID {
	return s.id
}

// Navigate opens rawURL in the desktop browser.
func (s *SystemSession) Navigate(ctx context.Context, rawURL string) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if err := s.open(ctx, rawURL); err != nil {
		return fmt.Errorf("open %s: %w", rawURL, err)
	}

	s.mu.Lock()
	s.current = rawURL
	s.mu.Unlock()
	s.logger.Info("Opened page in system browser", zap.String("url", rawURL))
	return nil
}

func (s *SystemSession) Find(string) (Element, error) {
	return Element{}, ErrUnsupported
}

func (s *SystemSession) SetText(Element, string) error {
	return ErrUnsupported
}

func (s *SystemSession) Click(context.Context, Element) error {
	return ErrUnsupported
}

// CurrentURL returns the last URL handed to the opener.
func (s *SystemSession) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close marks the session closed. The desktop browser window is left to the
// user.
func (s *SystemSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
