package attempt

import (
	"fmt"

	"github.com/viant/taskctx/service/memory"
)

// RequestInitialMemory asks the shared distributor for size bytes. The grant
// is delivered later through callback, possibly on another goroutine. A nil
// callback is accepted only for a zero sized request, in which case a no-op
// callback takes part in the negotiation instead.
func (c *Context) RequestInitialMemory(size int64, callback memory.Callback) error {
	if size < 0 {
		return fmt.Errorf("%w: negative memory request %d", ErrInvalidArgument, size)
	}
	if callback == nil {
		if size != 0 {
			return fmt.Errorf("%w: callback is required for a non zero memory request of %d bytes", ErrInvalidArgument, size)
		}
		callback = memory.NopCallback
	}
	h := c.handles.Load()
	if h == nil {
		return fmt.Errorf("%w: memory request from %s", ErrClosed, c.uniqueIdentifier)
	}
	return h.distributor.RequestMemory(size, callback, c, c.descriptor)
}

// TotalMemoryAvailableToTask returns the memory ceiling fixed at construction.
func (c *Context) TotalMemoryAvailableToTask() int64 {
	return c.memoryAvailable
}
