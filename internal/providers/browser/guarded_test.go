package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/wifi-login/internal/infrastructure/resilience"
)

func TestGuardedTripsAfterRepeatedFailures(t *testing.T) {
	calls := 0
	failing := FactoryFunc(func(context.Context, Options) (Session, error) {
		calls++
		return nil, errors.New("browser crashed")
	})

	g := NewGuarded(failing, DefaultGuardSettings(), nil, monitoring.NewMetrics())

	for i := 0; i < 3; i++ {
		_, err := g.NewSession(context.Background(), Options{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, resilience.ErrCircuitOpen)
	}
	assert.Equal(t, resilience.StateOpen, g.State())

	_, err := g.NewSession(context.Background(), Options{})
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 3, calls)
}

func TestGuardedPassesThroughSessions(t *testing.T) {
	want := NewSystemSession(func(context.Context, string) error { return nil }, nil)
	var changes []resilience.State
	settings := DefaultGuardSettings()
	settings.OnStateChange = func(_ string, _, to resilience.State) { changes = append(changes, to) }

	g := NewGuarded(FactoryFunc(func(context.Context, Options) (Session, error) {
		return want, nil
	}), settings, nil, nil)

	got, err := g.NewSession(context.Background(), Options{})
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, resilience.StateClosed, g.State())
	assert.Empty(t, changes)
}
