// Package attempt implements the execution context handed to the processor,
// inputs and outputs of a task attempt.
//
// A context exposes the immutable identity of the attempt, forwards memory
// requests to the shared distributor, reports failures and self-kill requests
// over the umbilical, gives access to the shared object registry and to
// framework executor pools, and is closed exactly once after the runtime task
// finished. Every operation is a forward to an externally synchronised
// collaborator, so a context can be used from any number of goroutines
// belonging to the attempt.
package attempt
