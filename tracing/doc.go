// Package tracing integrates OpenTelemetry with task attempt contexts. Spans
// are recorded around failure reporting and memory allocation so that a
// coordinator-side trace can be correlated with worker-side events.
package tracing
