/*
Package tracing traces status server requests.

Each request gets a span carrying a ULID trace ID (trc_...) and span ID
(spn_...). A caller that sends X-Trace-ID and X-Span-ID continues its own
trace; the IDs are always echoed back in the response headers so a log line
can be matched to the request that produced it.

Finished spans are queued and logged by a collector goroutine, so logging
never happens on the request path. A full queue drops spans with a warning.

# Usage

	tracer := tracing.New("status", logger)
	defer tracer.Close()

	router.Use(tracing.Middleware(tracer))

	// Inside a handler
	traceID := tracing.TraceIDFrom(c.Request.Context())
*/
package tracing
