// Package executor provides the process-wide provider of framework worker
// pools. Task attempt contexts ask the provider for bounded, named pools
// instead of spawning unbounded goroutines; the provider, not the context,
// owns the pools and shuts them down when the process stops.
package executor
