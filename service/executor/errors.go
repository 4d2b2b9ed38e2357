package executor

import "errors"

var (
	// ErrShutdown is returned when submitting to, or creating from, a stopped executor.
	ErrShutdown = errors.New("executor: shut down")

	// ErrInvalidArgument indicates a bad parallelism, name format or nil function.
	ErrInvalidArgument = errors.New("executor: invalid argument")
)
