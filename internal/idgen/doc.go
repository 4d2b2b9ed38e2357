// Package idgen hands out identifiers. New wraps the UUID generator so that it
// can be stubbed in tests; Sequence is the process-wide monotonic counter used
// to make task attempt identifiers unique.
// It lives under `internal` because callers should treat identifiers as
// opaque strings.
package idgen
