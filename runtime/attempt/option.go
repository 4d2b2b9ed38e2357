package attempt

import (
	"github.com/viant/taskctx/counters"
	"github.com/viant/taskctx/internal/idgen"
	"github.com/viant/taskctx/model/descriptor"
	"github.com/viant/taskctx/runtime/task"
	"github.com/viant/taskctx/service/memory"
	"github.com/viant/taskctx/service/registry"
	"github.com/viant/taskctx/service/umbilical"
)

// Option configures a Context under construction.
type Option func(*options)

type options struct {
	dagName           string
	dagAttemptNumber  int
	vertexName        string
	vertexParallelism int
	workDirs          []string
	counters          *counters.Counters
	runtimeTask       task.RuntimeTask
	umbilical         umbilical.Umbilical
	consumerMetadata  map[string][]byte
	auxServiceEnv     map[string]string
	distributor       memory.Distributor
	descriptor        *descriptor.Entity
	registry          registry.ObjectRegistry
	executionContext  ExecutionContext
	memoryAvailable   int64
	executors         ExecutorProvider
	sequence          *idgen.Sequence
	closeListeners    []func(*Context)
}

// WithDAGName sets the DAG name.
func WithDAGName(name string) Option {
	return func(o *options) {
		o.dagName = name
	}
}

// WithDAGAttemptNumber sets the DAG attempt number.
func WithDAGAttemptNumber(number int) Option {
	return func(o *options) {
		o.dagAttemptNumber = number
	}
}

// WithVertexName sets the name of the vertex the task belongs to.
func WithVertexName(name string) Option {
	return func(o *options) {
		o.vertexName = name
	}
}

// WithVertexParallelism sets the number of tasks in the vertex.
func WithVertexParallelism(parallelism int) Option {
	return func(o *options) {
		o.vertexParallelism = parallelism
	}
}

// WithWorkDirs sets the local working directories.
func WithWorkDirs(dirs ...string) Option {
	return func(o *options) {
		o.workDirs = append([]string(nil), dirs...)
	}
}

// WithCounters shares the task counters.
func WithCounters(c *counters.Counters) Option {
	return func(o *options) {
		o.counters = c
	}
}

// WithRuntimeTask sets the running task.
func WithRuntimeTask(t task.RuntimeTask) Option {
	return func(o *options) {
		o.runtimeTask = t
	}
}

// WithUmbilical sets the reporting channel.
func WithUmbilical(u umbilical.Umbilical) Option {
	return func(o *options) {
		o.umbilical = u
	}
}

// WithServiceConsumerMetaData sets the payloads of auxiliary services consumed by the task.
func WithServiceConsumerMetaData(metadata map[string][]byte) Option {
	return func(o *options) {
		o.consumerMetadata = metadata
	}
}

// WithAuxServiceEnv sets the environment auxiliary services publish provider data into.
func WithAuxServiceEnv(env map[string]string) Option {
	return func(o *options) {
		o.auxServiceEnv = env
	}
}

// WithDistributor sets the shared memory distributor.
func WithDistributor(d memory.Distributor) Option {
	return func(o *options) {
		o.distributor = d
	}
}

// WithDescriptor sets the descriptor of the component owning the context.
func WithDescriptor(entity *descriptor.Entity) Option {
	return func(o *options) {
		o.descriptor = entity
	}
}

// WithObjectRegistry sets the shared object registry.
func WithObjectRegistry(r registry.ObjectRegistry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithExecutionContext sets host information.
func WithExecutionContext(ec ExecutionContext) Option {
	return func(o *options) {
		o.executionContext = ec
	}
}

// WithMemoryAvailable sets the memory ceiling of the task in bytes.
func WithMemoryAvailable(size int64) Option {
	return func(o *options) {
		o.memoryAvailable = size
	}
}

// WithExecutorProvider sets the shared executor provider.
func WithExecutorProvider(p ExecutorProvider) Option {
	return func(o *options) {
		o.executors = p
	}
}

// WithSequence sets the process wide sequence unique identifiers are drawn from.
func WithSequence(seq *idgen.Sequence) Option {
	return func(o *options) {
		o.sequence = seq
	}
}

// WithCloseListener registers fn to run once the context closed.
func WithCloseListener(fn func(*Context)) Option {
	return func(o *options) {
		o.closeListeners = append(o.closeListeners, fn)
	}
}
