// Package trace provides structured tracing for the picomap server.
//
// The editor talks to the server over stdout, so nothing may be printed
// there. Trace events go to stderr, a file, or an in-memory ring that is
// dumped when the server fails.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	picomap serve --trace=/tmp/picomap.ndjson --trace-level=detail
//
// # Architecture
//
//   - Nop: zero-overhead tracer used when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped on failure
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only failures
//   - LevelEvent: Server lifecycle and inbound editor events
//   - LevelDetail: Render stages
//   - LevelDebug: Everything including individual RPC messages
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeEvent, "sync", 0)
//	defer span.End("")
package trace
