package attempt

import (
	"fmt"

	"github.com/viant/taskctx/service/executor"
	"github.com/viant/taskctx/service/registry"
)

// State is the lifecycle state of a context.
type State int32

const (
	StateOpen State = iota
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// ObjectRegistry returns the shared object registry while the context is open.
func (c *Context) ObjectRegistry() (registry.ObjectRegistry, error) {
	h := c.handles.Load()
	if h == nil {
		return nil, fmt.Errorf("%w: object registry of %s", ErrClosed, c.uniqueIdentifier)
	}
	return h.registry, nil
}

// CreateFrameworkExecutor returns a pool of parallelism workers named after
// nameFormat. The pool belongs to the executor provider; callers must not
// expect the context to shut it down.
func (c *Context) CreateFrameworkExecutor(parallelism int, nameFormat string) (*executor.Pool, error) {
	return c.executors.NewExecutor(parallelism, nameFormat)
}

// Close releases the distributor and registry references. It must be called
// after the runtime task is done; otherwise it fails and the context stays
// open. Closing twice returns ErrClosed.
func (c *Context) Close() error {
	h := c.handles.Load()
	if !c.runtimeTask.IsDone() {
		return fmt.Errorf("%w: %s", ErrTaskNotDone, c.uniqueIdentifier)
	}
	if h == nil || !c.handles.CompareAndSwap(h, nil) {
		return fmt.Errorf("%w: %s already closed", ErrClosed, c.uniqueIdentifier)
	}
	for _, listener := range c.closeListeners {
		listener(c)
	}
	log.Debugw("context closed", "uniqueIdentifier", c.uniqueIdentifier)
	return nil
}
