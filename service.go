package taskctx

import (
	"context"
	"fmt"
	"sync"

	"github.com/elastic/go-sysinfo"
	"github.com/hashicorp/go-multierror"
	logging "github.com/ipfs/go-log/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/viant/afs"

	"github.com/viant/taskctx/counters"
	"github.com/viant/taskctx/internal/idgen"
	"github.com/viant/taskctx/metrics"
	"github.com/viant/taskctx/model/descriptor"
	"github.com/viant/taskctx/model/failure"
	"github.com/viant/taskctx/model/identity"
	"github.com/viant/taskctx/runtime/attempt"
	"github.com/viant/taskctx/runtime/task"
	"github.com/viant/taskctx/service/auxiliary"
	"github.com/viant/taskctx/service/event"
	"github.com/viant/taskctx/service/executor"
	"github.com/viant/taskctx/service/memory"
	mmemory "github.com/viant/taskctx/service/messaging/memory"
	"github.com/viant/taskctx/service/registry"
	"github.com/viant/taskctx/service/umbilical"
	"github.com/viant/taskctx/tracing"
)

var log = logging.Logger("taskctx")

// Attempt describes the task attempt contexts are created for.
type Attempt struct {
	ID                identity.TaskAttemptID
	DAGName           string
	DAGAttemptNumber  int
	VertexName        string
	VertexParallelism int
	WorkDirs          []string
	// ServiceConsumerMetaData holds the payloads of auxiliary services the task consumes.
	ServiceConsumerMetaData map[string][]byte
	Task                    task.RuntimeTask
	Counters                *counters.Counters
	Distributor             memory.Distributor
}

// Service owns the collaborators shared by every context of the worker
// process: the unique identifier sequence, executor pools, the object
// registry and the umbilical.
type Service struct {
	config          *Config
	registerer      prometheus.Registerer
	metrics         *metrics.Metrics
	fs              afs.Service
	hostName        string
	auxServiceEnv   map[string]string
	memoryAvailable int64
	sequence        *idgen.Sequence
	executors       *executor.Provider
	grantPool       *executor.Pool
	registry        *registry.Service
	umbilical       umbilical.Umbilical

	mux        sync.Mutex
	dagName    string
	vertexName string
}

// NewTask creates the runtime task of an attempt. Contexts built for it share its counters.
func (s *Service) NewTask(id identity.TaskAttemptID) *task.Task {
	return task.New(id)
}

// NewDistributor creates the memory distributor of one attempt. expected is
// the number of components that take part in the negotiation. Grants of every
// distributor are delivered on one shared pool.
func (s *Service) NewDistributor(expected int) (*memory.Service, error) {
	if expected < 0 {
		return nil, fmt.Errorf("expected requests must be >= 0, got %d", expected)
	}
	return memory.New(s.memoryAvailable, expected, memory.WithExecutor(s.grantPool), memory.WithMetrics(s.metrics)), nil
}

// NewProcessorContext creates the context handed to the processor of the attempt.
func (s *Service) NewProcessorContext(a *Attempt, entity *descriptor.Entity) (*attempt.ProcessorContext, error) {
	opts, err := s.contextOptions(a, entity)
	if err != nil {
		return nil, err
	}
	ret, err := attempt.NewProcessorContext(a.ID, opts...)
	if err != nil {
		return nil, err
	}
	s.enterVertex(a.DAGName, a.VertexName)
	s.metrics.ContextOpened()
	return ret, nil
}

// NewInputContext creates the context handed to the input at index reading from sourceVertex.
func (s *Service) NewInputContext(a *Attempt, entity *descriptor.Entity, sourceVertex string, index int) (*attempt.InputContext, error) {
	opts, err := s.contextOptions(a, entity)
	if err != nil {
		return nil, err
	}
	ret, err := attempt.NewInputContext(a.ID, sourceVertex, index, opts...)
	if err != nil {
		return nil, err
	}
	s.enterVertex(a.DAGName, a.VertexName)
	s.metrics.ContextOpened()
	return ret, nil
}

// NewOutputContext creates the context handed to the output at index writing to destinationVertex.
func (s *Service) NewOutputContext(a *Attempt, entity *descriptor.Entity, destinationVertex string, index int) (*attempt.OutputContext, error) {
	opts, err := s.contextOptions(a, entity)
	if err != nil {
		return nil, err
	}
	ret, err := attempt.NewOutputContext(a.ID, destinationVertex, index, opts...)
	if err != nil {
		return nil, err
	}
	s.enterVertex(a.DAGName, a.VertexName)
	s.metrics.ContextOpened()
	return ret, nil
}

func (s *Service) contextOptions(a *Attempt, entity *descriptor.Entity) ([]attempt.Option, error) {
	if a == nil {
		return nil, fmt.Errorf("attempt is required")
	}
	counterSet := a.Counters
	if counterSet == nil {
		if t, ok := a.Task.(*task.Task); ok {
			counterSet = t.Counters()
		}
	}
	return []attempt.Option{
		attempt.WithDAGName(a.DAGName),
		attempt.WithDAGAttemptNumber(a.DAGAttemptNumber),
		attempt.WithVertexName(a.VertexName),
		attempt.WithVertexParallelism(a.VertexParallelism),
		attempt.WithWorkDirs(a.WorkDirs...),
		attempt.WithCounters(counterSet),
		attempt.WithRuntimeTask(a.Task),
		attempt.WithDistributor(a.Distributor),
		attempt.WithServiceConsumerMetaData(a.ServiceConsumerMetaData),
		attempt.WithDescriptor(entity),
		attempt.WithUmbilical(s.umbilical),
		attempt.WithObjectRegistry(s.registry),
		attempt.WithExecutorProvider(s.executors),
		attempt.WithSequence(s.sequence),
		attempt.WithAuxServiceEnv(s.auxServiceEnv),
		attempt.WithExecutionContext(attempt.ExecutionContext{HostName: s.hostName}),
		attempt.WithMemoryAvailable(s.memoryAvailable),
		attempt.WithCloseListener(func(*attempt.Context) { s.metrics.ContextClosed() }),
	}, nil
}

// enterVertex drops registry entries whose lifetime ended because the worker
// moved to another vertex or DAG.
func (s *Service) enterVertex(dagName, vertexName string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.dagName != "" && s.dagName != dagName {
		cleared := s.registry.Clear(registry.ScopeDAG) + s.registry.Clear(registry.ScopeVertex)
		log.Debugw("dag changed", "from", s.dagName, "to", dagName, "cleared", cleared)
	} else if s.vertexName != "" && s.vertexName != vertexName {
		cleared := s.registry.Clear(registry.ScopeVertex)
		log.Debugw("vertex changed", "from", s.vertexName, "to", vertexName, "cleared", cleared)
	}
	s.dagName = dagName
	s.vertexName = vertexName
}

// Listen delivers reported failures to handler when the in-process umbilical is used.
func (s *Service) Listen(ctx context.Context, handler func(anEvent *failure.Event)) error {
	srv, ok := s.umbilical.(*umbilical.Service)
	if !ok {
		return fmt.Errorf("umbilical %T does not support listening", s.umbilical)
	}
	srv.Listen(ctx, handler)
	return nil
}

func (s *Service) Config() *Config {
	return s.config
}

func (s *Service) Registry() *registry.Service {
	return s.registry
}

func (s *Service) Executors() *executor.Provider {
	return s.executors
}

func (s *Service) Umbilical() umbilical.Umbilical {
	return s.umbilical
}

// MemoryAvailable returns the memory ceiling handed to every task.
func (s *Service) MemoryAvailable() int64 {
	return s.memoryAvailable
}

// Shutdown stops every executor pool and umbilical listener.
func (s *Service) Shutdown(ctx context.Context) error {
	var errs *multierror.Error
	if err := s.executors.Shutdown(ctx); err != nil {
		errs = multierror.Append(errs, err)
	}
	if srv, ok := s.umbilical.(*umbilical.Service); ok {
		srv.Stop()
		if count := srv.DeadLettered(); count > 0 {
			log.Warnw("reported events were never handled", "deadLettered", count)
		}
	}
	return errs.ErrorOrNil()
}

func (s *Service) init() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if err := logging.SetLogLevelRegex("taskctx.*", s.config.Logging.Level); err != nil {
		return err
	}
	if tc := s.config.Tracing; tc.Enabled {
		if err := tracing.Init(tc.ServiceName, tc.ServiceVersion, tc.OutputFile); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	var err error
	if s.registerer != nil {
		if s.metrics, err = metrics.New(s.registerer); err != nil {
			return err
		}
	}
	if s.memoryAvailable, err = s.config.TaskMemory(); err != nil {
		return err
	}
	if s.hostName == "" {
		if host, err := sysinfo.Host(); err == nil {
			s.hostName = host.Info().Hostname
		}
	}
	if s.auxServiceEnv == nil {
		s.auxServiceEnv = auxiliary.ProcessEnv()
	}
	if s.umbilical == nil {
		queueConfig := mmemory.DefaultConfig()
		queueConfig.QueueBuffer = s.config.Umbilical.QueueBuffer
		options := []umbilical.Option{
			umbilical.WithQueue(mmemory.NewQueue[event.Event[failure.Event]](queueConfig)),
			umbilical.WithMetrics(s.metrics),
		}
		if s.config.Umbilical.JournalURL != "" {
			options = append(options, umbilical.WithJournalURL(s.config.Umbilical.JournalURL))
			if s.fs != nil {
				options = append(options, umbilical.WithFS(s.fs))
			}
		}
		s.umbilical = umbilical.New(options...)
	}
	s.executors = executor.New(executor.WithConfig(executor.Config{QueueBuffer: s.config.Executor.QueueBuffer}), executor.WithMetrics(s.metrics))
	if s.grantPool, err = s.executors.NewExecutor(s.config.Executor.DistributorParallelism, "memory-distributor-%d"); err != nil {
		return fmt.Errorf("failed to create distributor executor: %w", err)
	}
	s.registry = registry.New()
	s.sequence = idgen.NewSequence(idgen.Floor)
	log.Infow("service initialised", "host", s.hostName, "taskMemory", s.memoryAvailable)
	return nil
}

// New creates a service.
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	for _, opt := range options {
		opt(ret)
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	return ret, nil
}
