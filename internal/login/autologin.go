package login

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/config"
	"github.com/GriffinCanCode/wifi-login/internal/providers/browser"
)

// DefaultSubmitSelectors are tried in order when AutoSubmit is set and no
// submit selector is configured. They cover the accept-terms buttons of most
// click-through portals.
var DefaultSubmitSelectors = []string{
	"input[type='submit']",
	"button[type='submit']",
	"button:contains('Accept')",
	"button:contains('Continue')",
	"button:contains('Login')",
	"button:contains('Connect')",
	".accept-button",
	".continue-button",
}

// AutoLogin describes how to fill and submit a portal form.
type AutoLogin struct {
	UsernameSelector string
	PasswordSelector string
	SubmitSelector   string
	Username         string
	Password         string
	// AutoSubmit clicks the first DefaultSubmitSelectors match when
	// SubmitSelector is empty.
	AutoSubmit bool
}

// AutoLoginFromConfig builds an AutoLogin from the service configuration.
// It returns nil when auto-login is disabled.
func AutoLoginFromConfig(cfg config.AutoLoginConfig) *AutoLogin {
	if !cfg.Enabled {
		return nil
	}
	return &AutoLogin{
		UsernameSelector: cfg.Selectors.Username,
		PasswordSelector: cfg.Selectors.Password,
		SubmitSelector:   cfg.Selectors.Submit,
		Username:         cfg.Credentials.Username,
		Password:         cfg.Credentials.Password,
		AutoSubmit:       cfg.AutoSubmit,
	}
}

// Apply fills the configured fields and submits. A field is filled only when
// both its selector and value are set. It stops at the first error.
func (a *AutoLogin) Apply(ctx context.Context, s browser.Session) error {
	if a == nil {
		return nil
	}
	if a.UsernameSelector != "" && a.Username != "" {
		if err := fill(s, a.UsernameSelector, a.Username); err != nil {
			return fmt.Errorf("username: %w", err)
		}
	}
	if a.PasswordSelector != "" && a.Password != "" {
		if err := fill(s, a.PasswordSelector, a.Password); err != nil {
			return fmt.Errorf("password: %w", err)
		}
	}

	switch {
	case a.SubmitSelector != "":
		el, err := s.Find(a.SubmitSelector)
		if err != nil {
			return fmt.Errorf("submit: %w", err)
		}
		if err := s.Click(ctx, el); err != nil {
			return fmt.Errorf("submit: %w", err)
		}
	case a.AutoSubmit:
		return autoSubmit(ctx, s)
	}
	return nil
}

func fill(s browser.Session, selector, value string) error {
	el, err := s.Find(selector)
	if err != nil {
		return err
	}
	return s.SetText(el, value)
}

func autoSubmit(ctx context.Context, s browser.Session) error {
	for _, selector := range DefaultSubmitSelectors {
		el, err := s.Find(selector)
		if errors.Is(err, browser.ErrElementNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("auto-submit: %w", err)
		}
		if err := s.Click(ctx, el); err != nil {
			return fmt.Errorf("auto-submit %s: %w", selector, err)
		}
		return nil
	}
	return fmt.Errorf("auto-submit: %w", browser.ErrElementNotFound)
}
