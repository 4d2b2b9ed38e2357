package memory

import "errors"

var (
	// ErrInvalidRequest indicates a negative size or a missing callback or requester.
	ErrInvalidRequest = errors.New("memory: invalid request")

	// ErrAllocationDone is returned when requesting after, or repeating, the initial allocation.
	ErrAllocationDone = errors.New("memory: initial allocation already made")
)
