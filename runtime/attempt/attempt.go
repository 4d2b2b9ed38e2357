package attempt

import (
	"context"

	"github.com/viant/taskctx/counters"
	"github.com/viant/taskctx/model/failure"
	"github.com/viant/taskctx/model/identity"
	"github.com/viant/taskctx/service/executor"
	"github.com/viant/taskctx/service/memory"
	"github.com/viant/taskctx/service/registry"
)

// TaskContext is the capability set shared by processor, input and output contexts.
type TaskContext interface {
	ApplicationID() identity.ApplicationID
	DAGName() string
	DAGAttemptNumber() int
	DAGIdentifier() int
	TaskVertexName() string
	TaskVertexIndex() int
	VertexParallelism() int
	TaskIndex() int
	TaskAttemptNumber() int
	TaskAttemptID() identity.TaskAttemptID
	UniqueIdentifier() string
	WorkDirs() []string
	Counters() *counters.Counters
	ExecutionContext() ExecutionContext
	UserPayload() []byte
	ServiceConsumerMetaData(serviceName string) ([]byte, bool)
	ServiceProviderMetaData(serviceName string) ([]byte, error)
	NotifyProgress()

	RequestInitialMemory(size int64, callback memory.Callback) error
	TotalMemoryAvailableToTask() int64

	ReportFailure(ctx context.Context, kind failure.Kind, cause error, message string) error
	FatalError(ctx context.Context, cause error, message string) error

	ObjectRegistry() (registry.ObjectRegistry, error)
	CreateFrameworkExecutor(parallelism int, nameFormat string) (*executor.Pool, error)

	State() State
	Close() error
}

// ExecutorProvider hands out framework pools shared across the process.
type ExecutorProvider interface {
	NewExecutor(parallelism int, nameFormat string) (*executor.Pool, error)
}

// ExecutionContext describes where the attempt runs.
type ExecutionContext struct {
	HostName string `json:"hostName" yaml:"hostName"`
}

var (
	_ TaskContext = (*ProcessorContext)(nil)
	_ TaskContext = (*InputContext)(nil)
	_ TaskContext = (*OutputContext)(nil)
)
