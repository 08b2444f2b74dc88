/*
Package resilience provides a circuit breaker.

The headless service wraps browser-session creation in a breaker: when the
automation backend cannot start (missing binary, broken display), repeated
attempts fail fast instead of paying the startup cost every iteration, and a
trial call is let through once the open timeout elapses.

# Usage

	breaker := resilience.New("browser", resilience.Settings{
		Timeout: 5 * time.Minute,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	session, err := resilience.Do(breaker, func() (browser.Session, error) {
		return factory.NewSession(ctx, opts)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                         Open
*/
package resilience
