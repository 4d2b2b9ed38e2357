package task

import (
	"fmt"
	goruntime "runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/elastic/go-sysinfo"
	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/taskctx/counters"
	"github.com/viant/taskctx/internal/clock"
	"github.com/viant/taskctx/model/identity"
)

var log = logging.Logger("taskctx/task")

// RuntimeTask is the view of the running task a context needs.
type RuntimeTask interface {
	// IsDone reports whether all processing finished, successfully or not.
	IsDone() bool

	// SetFrameworkCounters refreshes framework counters before a report is sent.
	SetFrameworkCounters()

	// RegisterError records that an error was reported.
	RegisterError()

	// NotifyProgress records that the task made progress.
	NotifyProgress()
}

// State represents the task lifecycle.
type State int32

const (
	StateNew State = iota
	StateRunning
	StateDone
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Sample is a snapshot of process resource usage.
type Sample struct {
	CPU      time.Duration
	Resident uint64
	Virtual  uint64
}

// Sampler measures process resource usage.
type Sampler func() (*Sample, error)

// ProcessSampler samples the current process via go-sysinfo.
func ProcessSampler() (*Sample, error) {
	process, err := sysinfo.Self()
	if err != nil {
		return nil, err
	}
	cpu, err := process.CPUTime()
	if err != nil {
		return nil, err
	}
	mem, err := process.Memory()
	if err != nil {
		return nil, err
	}
	return &Sample{CPU: cpu.Total(), Resident: mem.Resident, Virtual: mem.Virtual}, nil
}

// Task is a RuntimeTask for one task attempt.
type Task struct {
	id       identity.TaskAttemptID
	counters *counters.Counters
	sampler  Sampler

	state            atomic.Int32
	errorCount       atomic.Int32
	progressNotified atomic.Bool

	mux        sync.Mutex
	startedAt  time.Time
	finishedAt time.Time
	err        error
}

var _ RuntimeTask = (*Task)(nil)

// ID returns the attempt id.
func (t *Task) ID() identity.TaskAttemptID {
	return t.id
}

// Counters returns the task counters.
func (t *Task) Counters() *counters.Counters {
	return t.counters
}

// State returns the current state.
func (t *Task) State() State {
	return State(t.state.Load())
}

// Start moves the task to running.
func (t *Task) Start() error {
	if !t.state.CompareAndSwap(int32(StateNew), int32(StateRunning)) {
		return fmt.Errorf("task %s cannot start from state %v", t.id, t.State())
	}
	t.mux.Lock()
	t.startedAt = clock.Now()
	t.mux.Unlock()
	return nil
}

// Done marks the task finished; err is the processing outcome. Only the first call has effect.
func (t *Task) Done(err error) {
	for {
		current := t.state.Load()
		if State(current) == StateDone {
			return
		}
		if t.state.CompareAndSwap(current, int32(StateDone)) {
			break
		}
	}
	t.mux.Lock()
	t.finishedAt = clock.Now()
	t.err = err
	t.mux.Unlock()
	log.Debugw("task done", "attempt", t.id.String(), "error", err)
}

// Err returns the error passed to Done.
func (t *Task) Err() error {
	t.mux.Lock()
	defer t.mux.Unlock()
	return t.err
}

func (t *Task) IsDone() bool {
	return t.State() == StateDone
}

func (t *Task) SetFrameworkCounters() {
	t.mux.Lock()
	started, finished := t.startedAt, t.finishedAt
	t.mux.Unlock()
	if !started.IsZero() {
		elapsed := finished.Sub(started)
		if finished.IsZero() {
			elapsed = clock.Since(started)
		}
		t.counters.Set(counters.FrameworkGroup, counters.TaskDurationMillis, elapsed.Milliseconds())
	}
	t.counters.Set(counters.FrameworkGroup, counters.Goroutines, int64(goruntime.NumGoroutine()))
	var stats goruntime.MemStats
	goruntime.ReadMemStats(&stats)
	t.counters.Set(counters.FrameworkGroup, counters.GCCount, int64(stats.NumGC))

	if t.sampler == nil {
		return
	}
	sample, err := t.sampler()
	if err != nil {
		log.Debugw("failed to sample process resources", "attempt", t.id.String(), "error", err)
		return
	}
	t.counters.Set(counters.FrameworkGroup, counters.CPUMilliseconds, sample.CPU.Milliseconds())
	t.counters.Set(counters.FrameworkGroup, counters.PhysicalMemoryBytes, int64(sample.Resident))
	t.counters.Set(counters.FrameworkGroup, counters.VirtualMemoryBytes, int64(sample.Virtual))
}

func (t *Task) RegisterError() {
	t.errorCount.Add(1)
	t.counters.Increment(counters.FrameworkGroup, counters.ErrorCount, 1)
}

// ErrorCount returns the number of registered errors.
func (t *Task) ErrorCount() int {
	return int(t.errorCount.Load())
}

func (t *Task) NotifyProgress() {
	t.progressNotified.Store(true)
}

// ProgressNotified reports whether progress was notified since the last call and clears the flag.
func (t *Task) ProgressNotified() bool {
	return t.progressNotified.Swap(false)
}

// Option customises a Task.
type Option func(*Task)

// WithCounters sets the counters the task updates.
func WithCounters(c *counters.Counters) Option {
	return func(t *Task) {
		t.counters = c
	}
}

// WithSampler overrides the process sampler; nil disables sampling.
func WithSampler(sampler Sampler) Option {
	return func(t *Task) {
		t.sampler = sampler
	}
}

// New creates a task in StateNew.
func New(id identity.TaskAttemptID, options ...Option) *Task {
	ret := &Task{id: id, sampler: ProcessSampler}
	for _, opt := range options {
		opt(ret)
	}
	if ret.counters == nil {
		ret.counters = counters.New()
	}
	return ret
}
