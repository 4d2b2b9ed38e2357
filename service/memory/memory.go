package memory

import (
	"github.com/viant/taskctx/model/descriptor"
)

// Callback receives the granted size. It may be invoked from any goroutine.
type Callback interface {
	MemoryAssigned(assignedSize int64)
}

// CallbackFunc adapts a function to Callback.
type CallbackFunc func(assignedSize int64)

func (f CallbackFunc) MemoryAssigned(assignedSize int64) { f(assignedSize) }

type nopCallback struct{}

func (nopCallback) MemoryAssigned(int64) {}

// NopCallback is used by requesters that need no memory but must still take
// part in the negotiation round.
var NopCallback Callback = nopCallback{}

// Requester identifies who asked for memory.
type Requester interface {
	UniqueIdentifier() string
	TaskVertexName() string
}

// Distributor accepts memory requests on behalf of a task attempt.
type Distributor interface {
	RequestMemory(size int64, callback Callback, requester Requester, entity *descriptor.Entity) error
}
