// Package task defines the runtime task a context reports on behalf of, and a
// concrete implementation tracking the attempt state, error count, progress
// notifications and framework counters.
package task
