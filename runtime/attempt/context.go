package attempt

import (
	"fmt"
	"sync/atomic"

	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/taskctx/counters"
	"github.com/viant/taskctx/model/descriptor"
	"github.com/viant/taskctx/model/failure"
	"github.com/viant/taskctx/model/identity"
	"github.com/viant/taskctx/runtime/task"
	"github.com/viant/taskctx/service/auxiliary"
	"github.com/viant/taskctx/service/memory"
	"github.com/viant/taskctx/service/registry"
	"github.com/viant/taskctx/service/umbilical"
)

var log = logging.Logger("taskctx/attempt")

// handles are the references released by Close.
type handles struct {
	distributor memory.Distributor
	registry    registry.ObjectRegistry
}

// Context is the state shared by every task context variant.
type Context struct {
	attemptID         identity.TaskAttemptID
	dagName           string
	dagAttemptNumber  int
	vertexName        string
	vertexParallelism int
	uniqueIdentifier  string
	workDirs          []string
	counters          *counters.Counters
	runtimeTask       task.RuntimeTask
	umbilical         umbilical.Umbilical
	consumerMetadata  map[string][]byte
	auxServiceEnv     map[string]string
	descriptor        *descriptor.Entity
	executionContext  ExecutionContext
	memoryAvailable   int64
	executors         ExecutorProvider
	closeListeners    []func(*Context)

	producer       failure.ProducerType
	edgeVertexName string

	handles atomic.Pointer[handles]
}

func (c *Context) ApplicationID() identity.ApplicationID {
	return c.attemptID.ApplicationID()
}

func (c *Context) DAGName() string {
	return c.dagName
}

func (c *Context) DAGAttemptNumber() int {
	return c.dagAttemptNumber
}

func (c *Context) DAGIdentifier() int {
	return c.attemptID.Task.Vertex.DAG.ID
}

func (c *Context) TaskVertexName() string {
	return c.vertexName
}

func (c *Context) TaskVertexIndex() int {
	return c.attemptID.Task.Vertex.ID
}

func (c *Context) VertexParallelism() int {
	return c.vertexParallelism
}

func (c *Context) TaskIndex() int {
	return c.attemptID.Task.ID
}

func (c *Context) TaskAttemptNumber() int {
	return c.attemptID.ID
}

func (c *Context) TaskAttemptID() identity.TaskAttemptID {
	return c.attemptID
}

// UniqueIdentifier returns the attempt id suffixed with a process unique
// sequence number. It tells apart contexts of the same attempt.
func (c *Context) UniqueIdentifier() string {
	return c.uniqueIdentifier
}

// WorkDirs returns a copy of the local working directories.
func (c *Context) WorkDirs() []string {
	return append([]string(nil), c.workDirs...)
}

func (c *Context) Counters() *counters.Counters {
	return c.counters
}

func (c *Context) ExecutionContext() ExecutionContext {
	return c.executionContext
}

// UserPayload returns a copy of the payload the component was configured with.
func (c *Context) UserPayload() []byte {
	return c.descriptor.UserPayload()
}

// Descriptor returns the descriptor of the component owning the context.
func (c *Context) Descriptor() *descriptor.Entity {
	return c.descriptor
}

// NotifyProgress tells the runtime task that the component made progress.
func (c *Context) NotifyProgress() {
	c.runtimeTask.NotifyProgress()
}

// ServiceConsumerMetaData returns a copy of the payload published for the
// named auxiliary service.
func (c *Context) ServiceConsumerMetaData(serviceName string) ([]byte, bool) {
	data, ok := c.consumerMetadata[serviceName]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// ServiceProviderMetaData returns the data the named auxiliary service
// exported on this host, or nil when it exported none.
func (c *Context) ServiceProviderMetaData(serviceName string) ([]byte, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("%w: service name is required", ErrInvalidArgument)
	}
	return auxiliary.ServiceDataFromEnv(serviceName, c.auxServiceEnv)
}

// State reports whether the context is still open.
func (c *Context) State() State {
	if c.handles.Load() == nil {
		return StateClosed
	}
	return StateOpen
}

func (c *Context) source() *failure.EventMetaData {
	return &failure.EventMetaData{
		ProducerType:   c.producer,
		TaskVertexName: c.vertexName,
		EdgeVertexName: c.edgeVertexName,
		TaskAttemptID:  c.attemptID.String(),
	}
}

// New creates a context for the attempt. The sequence, runtime task,
// umbilical, distributor, object registry, executor provider and descriptor
// are required.
func New(attemptID identity.TaskAttemptID, opts ...Option) (*Context, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	switch {
	case o.dagName == "":
		return nil, fmt.Errorf("dag name is required")
	case o.vertexName == "":
		return nil, fmt.Errorf("vertex name is required")
	case o.sequence == nil:
		return nil, fmt.Errorf("sequence is required")
	case o.runtimeTask == nil:
		return nil, fmt.Errorf("runtime task is required")
	case o.umbilical == nil:
		return nil, fmt.Errorf("umbilical is required")
	case o.distributor == nil:
		return nil, fmt.Errorf("memory distributor is required")
	case o.registry == nil:
		return nil, fmt.Errorf("object registry is required")
	case o.executors == nil:
		return nil, fmt.Errorf("executor provider is required")
	case o.descriptor == nil:
		return nil, fmt.Errorf("descriptor is required")
	case o.memoryAvailable < 0:
		return nil, fmt.Errorf("%w: negative memory available %d", ErrInvalidArgument, o.memoryAvailable)
	}
	if o.counters == nil {
		o.counters = counters.New()
	}
	if o.consumerMetadata == nil {
		o.consumerMetadata = map[string][]byte{}
	}
	if o.auxServiceEnv == nil {
		o.auxServiceEnv = map[string]string{}
	}
	c := &Context{
		attemptID:         attemptID,
		dagName:           o.dagName,
		dagAttemptNumber:  o.dagAttemptNumber,
		vertexName:        o.vertexName,
		vertexParallelism: o.vertexParallelism,
		uniqueIdentifier:  fmt.Sprintf("%s_%05d", attemptID, o.sequence.Next()),
		workDirs:          o.workDirs,
		counters:          o.counters,
		runtimeTask:       o.runtimeTask,
		umbilical:         o.umbilical,
		consumerMetadata:  o.consumerMetadata,
		auxServiceEnv:     o.auxServiceEnv,
		descriptor:        o.descriptor,
		executionContext:  o.executionContext,
		memoryAvailable:   o.memoryAvailable,
		executors:         o.executors,
		closeListeners:    o.closeListeners,
		producer:          failure.ProducerSystem,
	}
	c.handles.Store(&handles{distributor: o.distributor, registry: o.registry})
	log.Debugw("context created", "uniqueIdentifier", c.uniqueIdentifier, "vertex", c.vertexName)
	return c, nil
}
