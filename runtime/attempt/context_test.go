package attempt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/viant/taskctx/internal/idgen"
	"github.com/viant/taskctx/model/descriptor"
	"github.com/viant/taskctx/model/failure"
	"github.com/viant/taskctx/model/identity"
	"github.com/viant/taskctx/service/auxiliary"
	"github.com/viant/taskctx/service/executor"
	"github.com/viant/taskctx/service/memory"
	"github.com/viant/taskctx/service/registry"
)

var testAttemptID = identity.NewTaskAttemptID(identity.ApplicationID{ClusterTimestamp: 1700000000000, ID: 7}, 3, 2, 11, 1)

// recorder keeps the order of collaborator calls across fakes.
type recorder struct {
	mux   sync.Mutex
	calls []string
}

func (r *recorder) record(call string) {
	r.mux.Lock()
	r.calls = append(r.calls, call)
	r.mux.Unlock()
}

func (r *recorder) Calls() []string {
	r.mux.Lock()
	defer r.mux.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeTask struct {
	*recorder
	done bool
}

func (f *fakeTask) IsDone() bool          { return f.done }
func (f *fakeTask) SetFrameworkCounters() { f.record("counters") }
func (f *fakeTask) RegisterError()        { f.record("register") }
func (f *fakeTask) NotifyProgress()       { f.record("progress") }

type reported struct {
	attemptID identity.TaskAttemptID
	kind      failure.Kind
	cause     error
	message   string
	source    *failure.EventMetaData
}

type fakeUmbilical struct {
	*recorder
	err    error
	events []reported
}

func (f *fakeUmbilical) SignalFailure(_ context.Context, attemptID identity.TaskAttemptID, kind failure.Kind, cause error, message string, source *failure.EventMetaData) error {
	f.record("umbilical:" + kind.String())
	f.events = append(f.events, reported{attemptID: attemptID, kind: kind, cause: cause, message: message, source: source})
	return f.err
}

func (f *fakeUmbilical) SignalKillSelf(_ context.Context, attemptID identity.TaskAttemptID, cause error, message string, source *failure.EventMetaData) error {
	f.record("umbilical:kill")
	f.events = append(f.events, reported{attemptID: attemptID, kind: failure.KindKillSelf, cause: cause, message: message, source: source})
	return f.err
}

type memoryRequest struct {
	size      int64
	callback  memory.Callback
	requester memory.Requester
	entity    *descriptor.Entity
}

type fakeDistributor struct {
	mux      sync.Mutex
	err      error
	requests []memoryRequest
}

func (f *fakeDistributor) RequestMemory(size int64, callback memory.Callback, requester memory.Requester, entity *descriptor.Entity) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.requests = append(f.requests, memoryRequest{size: size, callback: callback, requester: requester, entity: entity})
	return f.err
}

func (f *fakeDistributor) Requests() []memoryRequest {
	f.mux.Lock()
	defer f.mux.Unlock()
	return append([]memoryRequest(nil), f.requests...)
}

type fixture struct {
	rec         *recorder
	task        *fakeTask
	umbilical   *fakeUmbilical
	distributor *fakeDistributor
	registry    *registry.Service
	executors   *executor.Provider
	sequence    *idgen.Sequence
	descriptor  *descriptor.Entity
}

func newFixture() *fixture {
	rec := &recorder{}
	return &fixture{
		rec:         rec,
		task:        &fakeTask{recorder: rec},
		umbilical:   &fakeUmbilical{recorder: rec},
		distributor: &fakeDistributor{},
		registry:    registry.New(),
		executors:   executor.New(),
		sequence:    idgen.NewSequence(idgen.Floor),
		descriptor:  descriptor.New("WordCountProcessor", []byte("conf")),
	}
}

func (f *fixture) options(extra ...Option) []Option {
	return append([]Option{
		WithDAGName("wordcount"),
		WithDAGAttemptNumber(1),
		WithVertexName("tokenizer"),
		WithVertexParallelism(4),
		WithSequence(f.sequence),
		WithRuntimeTask(f.task),
		WithUmbilical(f.umbilical),
		WithDistributor(f.distributor),
		WithObjectRegistry(f.registry),
		WithExecutorProvider(f.executors),
		WithDescriptor(f.descriptor),
		WithMemoryAvailable(1024),
	}, extra...)
}

func TestNew_Identity(t *testing.T) {
	f := newFixture()
	c, err := New(testAttemptID, f.options(
		WithWorkDirs("/tmp/a", "/tmp/b"),
		WithExecutionContext(ExecutionContext{HostName: "node-1"}),
	)...)
	require.NoError(t, err)

	assert.Equal(t, identity.ApplicationID{ClusterTimestamp: 1700000000000, ID: 7}, c.ApplicationID())
	assert.Equal(t, "wordcount", c.DAGName())
	assert.Equal(t, 1, c.DAGAttemptNumber())
	assert.Equal(t, 3, c.DAGIdentifier())
	assert.Equal(t, "tokenizer", c.TaskVertexName())
	assert.Equal(t, 2, c.TaskVertexIndex())
	assert.Equal(t, 4, c.VertexParallelism())
	assert.Equal(t, 11, c.TaskIndex())
	assert.Equal(t, 1, c.TaskAttemptNumber())
	assert.Equal(t, testAttemptID, c.TaskAttemptID())
	assert.Equal(t, "attempt_1700000000000_0007_3_02_000011_1_10001", c.UniqueIdentifier())
	assert.Equal(t, "node-1", c.ExecutionContext().HostName)
	assert.Equal(t, []byte("conf"), c.UserPayload())
	assert.NotNil(t, c.Counters())
	assert.Equal(t, StateOpen, c.State())

	dirs := c.WorkDirs()
	assert.Equal(t, []string{"/tmp/a", "/tmp/b"}, dirs)
	dirs[0] = "changed"
	assert.Equal(t, "/tmp/a", c.WorkDirs()[0])

	next, err := New(testAttemptID, f.options()...)
	require.NoError(t, err)
	assert.Equal(t, "attempt_1700000000000_0007_3_02_000011_1_10002", next.UniqueIdentifier())
}

func TestNew_Required(t *testing.T) {
	f := newFixture()
	testCases := []struct {
		name   string
		option Option
		expect string
	}{
		{name: "dag name", option: WithDAGName(""), expect: "dag name is required"},
		{name: "vertex name", option: WithVertexName(""), expect: "vertex name is required"},
		{name: "sequence", option: WithSequence(nil), expect: "sequence is required"},
		{name: "runtime task", option: WithRuntimeTask(nil), expect: "runtime task is required"},
		{name: "umbilical", option: WithUmbilical(nil), expect: "umbilical is required"},
		{name: "distributor", option: WithDistributor(nil), expect: "memory distributor is required"},
		{name: "registry", option: WithObjectRegistry(nil), expect: "object registry is required"},
		{name: "executor provider", option: WithExecutorProvider(nil), expect: "executor provider is required"},
		{name: "descriptor", option: WithDescriptor(nil), expect: "descriptor is required"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(testAttemptID, f.options(tc.option)...)
			assert.EqualError(t, err, tc.expect)
		})
	}

	_, err := New(testAttemptID, f.options(WithMemoryAvailable(-1))...)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNew_UniqueIdentifierConcurrent(t *testing.T) {
	f := newFixture()
	const goroutines, perGoroutine = 8, 50
	ids := make(chan string, goroutines*perGoroutine)
	g := errgroup.Group{}
	for i := 0; i < goroutines; i++ {
		g.Go(func() error {
			for j := 0; j < perGoroutine; j++ {
				c, err := New(testAttemptID, f.options()...)
				if err != nil {
					return err
				}
				ids <- c.UniqueIdentifier()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], id)
		seen[id] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
	assert.Equal(t, idgen.Floor+goroutines*perGoroutine, f.sequence.Last())
}

func TestContext_ServiceMetaData(t *testing.T) {
	f := newFixture()
	env := map[string]string{}
	auxiliary.SetServiceDataIntoEnv("shuffle", []byte{0, 0, 0x33, 0x1f}, env)
	c, err := New(testAttemptID, f.options(
		WithServiceConsumerMetaData(map[string][]byte{"shuffle": []byte("token")}),
		WithAuxServiceEnv(env),
	)...)
	require.NoError(t, err)

	data, ok := c.ServiceConsumerMetaData("shuffle")
	require.True(t, ok)
	assert.Equal(t, []byte("token"), data)
	data[0] = 'x'
	again, _ := c.ServiceConsumerMetaData("shuffle")
	assert.Equal(t, []byte("token"), again)

	_, ok = c.ServiceConsumerMetaData("missing")
	assert.False(t, ok)

	provider, err := c.ServiceProviderMetaData("shuffle")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0x33, 0x1f}, provider)

	provider, err = c.ServiceProviderMetaData("missing")
	assert.NoError(t, err)
	assert.Nil(t, provider)

	_, err = c.ServiceProviderMetaData("")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestContext_NotifyProgress(t *testing.T) {
	f := newFixture()
	c, err := New(testAttemptID, f.options()...)
	require.NoError(t, err)
	c.NotifyProgress()
	assert.Equal(t, []string{"progress"}, f.rec.Calls())
}

func TestContext_CreateFrameworkExecutor(t *testing.T) {
	f := newFixture()
	c, err := New(testAttemptID, f.options()...)
	require.NoError(t, err)

	pool, err := c.CreateFrameworkExecutor(2, "fetcher-%d")
	require.NoError(t, err)
	assert.Equal(t, []string{"fetcher-0", "fetcher-1"}, pool.WorkerNames())
	assert.Equal(t, 1, f.executors.Pools())

	_, err = c.CreateFrameworkExecutor(0, "fetcher-%d")
	assert.Error(t, err)

	f.task.done = true
	require.NoError(t, c.Close())
	var ran sync.WaitGroup
	ran.Add(1)
	require.NoError(t, pool.Submit(context.Background(), func(ctx context.Context) { ran.Done() }))
	ran.Wait()
	require.NoError(t, f.executors.Shutdown(context.Background()))
}

func ExampleContext_UniqueIdentifier() {
	rec := &recorder{}
	c, err := New(testAttemptID,
		WithDAGName("wordcount"),
		WithVertexName("tokenizer"),
		WithSequence(idgen.NewSequence(idgen.Floor)),
		WithRuntimeTask(&fakeTask{recorder: rec}),
		WithUmbilical(&fakeUmbilical{recorder: rec}),
		WithDistributor(&fakeDistributor{}),
		WithObjectRegistry(registry.New()),
		WithExecutorProvider(executor.New()),
		WithDescriptor(descriptor.New("Tokenizer", nil)),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(c.UniqueIdentifier())
	// Output: attempt_1700000000000_0007_3_02_000011_1_10001
}

var errBoom = errors.New("boom")
