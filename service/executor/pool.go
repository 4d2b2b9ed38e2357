package executor

import (
	"context"
	"fmt"
	"runtime/pprof"
	"sync"
)

type job struct {
	ctx context.Context
	fn  func(ctx context.Context)
}

// Pool runs submitted functions on a fixed number of named workers.
type Pool struct {
	name     string
	tasks    chan job
	workers  []*worker
	workerWg sync.WaitGroup
	// submitters counts Submit calls past the closed check; tasks is closed only once they left.
	submitters sync.WaitGroup
	done       chan struct{}
	mux        sync.RWMutex
	closed     bool
	onStop     func()
}

type worker struct {
	id   int
	name string
	pool *Pool
}

// Name returns the pool name format.
func (p *Pool) Name() string {
	return p.name
}

// Parallelism returns the number of workers.
func (p *Pool) Parallelism() int {
	return len(p.workers)
}

// WorkerNames returns the names of the pool workers.
func (p *Pool) WorkerNames() []string {
	ret := make([]string, 0, len(p.workers))
	for _, w := range p.workers {
		ret = append(ret, w.name)
	}
	return ret
}

// Submit queues fn for execution. It blocks while the buffer is full and
// returns ctx.Err() if ctx is cancelled first, or ErrShutdown once the pool
// is shutting down. fn receives ctx.
func (p *Pool) Submit(ctx context.Context, fn func(ctx context.Context)) error {
	if fn == nil {
		return fmt.Errorf("%w: nil function", ErrInvalidArgument)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	p.mux.RLock()
	if p.closed {
		p.mux.RUnlock()
		return fmt.Errorf("%w: pool %s", ErrShutdown, p.name)
	}
	p.submitters.Add(1)
	p.mux.RUnlock()
	defer p.submitters.Done()

	select {
	case p.tasks <- job{ctx: ctx, fn: fn}:
		return nil
	case <-p.done:
		return fmt.Errorf("%w: pool %s", ErrShutdown, p.name)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting work, lets the workers drain queued functions and
// waits for them. It returns ctx.Err() when ctx ends before the workers do;
// draining continues in the background in that case.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mux.Lock()
	if p.closed {
		p.mux.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	p.mux.Unlock()

	done := make(chan struct{})
	go func() {
		p.submitters.Wait()
		close(p.tasks)
		p.workerWg.Wait()
		if p.onStop != nil {
			p.onStop()
		}
		close(done)
	}()
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pool %s: %w", p.name, ctx.Err())
	}
}

func (p *Pool) start() {
	for _, w := range p.workers {
		p.workerWg.Add(1)
		go w.run()
	}
}

// run consumes functions until the pool is shut down and drained.
func (w *worker) run() {
	defer w.pool.workerWg.Done()
	pprof.Do(context.Background(), pprof.Labels("worker", w.name), func(context.Context) {
		for j := range w.pool.tasks {
			w.execute(j)
		}
	})
}

func (w *worker) execute(j job) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("framework task panicked", "worker", w.name, "panic", r)
		}
	}()
	j.fn(j.ctx)
}

func newPool(parallelism int, nameFormat string, buffer int) *Pool {
	ret := &Pool{
		name:  nameFormat,
		tasks: make(chan job, buffer),
		done:  make(chan struct{}),
	}
	for i := 0; i < parallelism; i++ {
		ret.workers = append(ret.workers, &worker{
			id:   i,
			name: fmt.Sprintf(nameFormat, i),
			pool: ret,
		})
	}
	return ret
}
