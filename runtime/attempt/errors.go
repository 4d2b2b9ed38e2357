package attempt

import "errors"

var (
	// ErrInvalidArgument reports a contract violation by the caller.
	ErrInvalidArgument = errors.New("attempt: invalid argument")

	// ErrTaskNotDone is returned by Close while the runtime task is still active.
	ErrTaskNotDone = errors.New("attempt: runtime task must be complete before closing the context")

	// ErrClosed is returned when the distributor or object registry is used after Close.
	ErrClosed = errors.New("attempt: context closed")
)
