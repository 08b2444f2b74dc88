package browser

import (
	"context"

	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/logging"
	"github.com/GriffinCanCode/wifi-login/internal/providers/http/client"
)

// DefaultFactory creates a FormSession for headless requests and a
// SystemSession otherwise.
type DefaultFactory struct {
	httpOptions client.Options
	opener      Opener
	logger      *logging.Logger
}

// NewFactory creates a factory. Each headless session gets its own client
// built from httpOptions, with cookies and keep-alive enabled.
func NewFactory(httpOptions client.Options, opener Opener, logger *logging.Logger) *DefaultFactory {
	if logger == nil {
		logger = logging.NewNop()
	}
	httpOptions.Cookies = true
	httpOptions.KeepAlive = true
	return &DefaultFactory{
		httpOptions: httpOptions,
		opener:      opener,
		logger:      logger,
	}
}

// NewSession creates a session for opts.
func (f *DefaultFactory) NewSession(ctx context.Context, opts Options) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Headless {
		return NewFormSession(client.NewClient(f.httpOptions), f.logger), nil
	}
	return NewSystemSession(f.opener, f.logger), nil
}
