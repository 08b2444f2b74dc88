package browser

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/logging"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/resilience"
)

// DefaultGuardSettings trips after three consecutive session failures and
// retries after five minutes.
func DefaultGuardSettings() resilience.Settings {
	return resilience.Settings{
		MaxRequests: 1,
		Interval:    10 * time.Minute,
		Timeout:     5 * time.Minute,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
}

// Guarded wraps a factory with a circuit breaker so a backend that keeps
// failing is skipped without another launch attempt.
type Guarded struct {
	next    Factory
	breaker *resilience.Breaker
}

// NewGuarded wraps next. State changes are logged and reported to metrics.
func NewGuarded(next Factory, settings resilience.Settings, logger *logging.Logger, metrics *monitoring.Metrics) *Guarded {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logger.Named("browser")
	onChange := settings.OnStateChange
	settings.OnStateChange = func(name string, from, to resilience.State) {
		log.Warn("Browser breaker state changed",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		metrics.SetBrowserState(int(to))
		if onChange != nil {
			onChange(name, from, to)
		}
	}

	metrics.SetBrowserState(int(resilience.StateClosed))
	return &Guarded{
		next:    next,
		breaker: resilience.New("browser", settings),
	}
}

// NewSession creates a session through the breaker. While the breaker is
// open it fails fast with resilience.ErrCircuitOpen.
func (g *Guarded) NewSession(ctx context.Context, opts Options) (Session, error) {
	return resilience.Do(g.breaker, func() (Session, error) {
		return g.next.NewSession(ctx, opts)
	})
}

// State returns the breaker state.
func (g *Guarded) State() resilience.State {
	return g.breaker.State()
}
