package memory

import (
	"context"
	"fmt"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/taskctx/metrics"
	"github.com/viant/taskctx/model/descriptor"
	"github.com/viant/taskctx/service/executor"
	"github.com/viant/taskctx/tracing"
)

var log = logging.Logger("taskctx/memory")

// Request is a registered memory request.
type Request struct {
	Size      int64
	Callback  Callback
	Requester Requester
	Entity    *descriptor.Entity
}

// Service collects the requests of one task attempt and distributes the
// available memory once, after every known component has asked.
type Service struct {
	available int64
	expected  int
	allocator Allocator
	pool      *executor.Pool
	metrics   *metrics.Metrics

	mux       sync.Mutex
	requests  []*Request
	allocated bool
}

var _ Distributor = (*Service)(nil)

// RequestMemory registers a request. The callback fires after MakeInitialAllocations.
func (s *Service) RequestMemory(size int64, callback Callback, requester Requester, entity *descriptor.Entity) error {
	if size < 0 {
		return fmt.Errorf("%w: negative size %d", ErrInvalidRequest, size)
	}
	if callback == nil {
		return fmt.Errorf("%w: callback is required", ErrInvalidRequest)
	}
	if requester == nil {
		return fmt.Errorf("%w: requester is required", ErrInvalidRequest)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.allocated {
		return fmt.Errorf("%w: request from %s", ErrAllocationDone, requester.UniqueIdentifier())
	}
	s.requests = append(s.requests, &Request{Size: size, Callback: callback, Requester: requester, Entity: entity})
	s.metrics.MemoryRequested(size)
	log.Debugw("registered memory request", "requester", requester.UniqueIdentifier(), "vertex", requester.TaskVertexName(), "size", size)
	return nil
}

// Requests returns the number of registered requests.
func (s *Service) Requests() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.requests)
}

// Available returns the memory being distributed.
func (s *Service) Available() int64 {
	return s.available
}

// MakeInitialAllocations computes the grants and delivers each one to its
// callback exactly once. It can be called a single time.
func (s *Service) MakeInitialAllocations(ctx context.Context) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(ctx, "memory.MakeInitialAllocations")
	defer func() { tracing.EndSpan(span, err) }()

	s.mux.Lock()
	if s.allocated {
		s.mux.Unlock()
		return ErrAllocationDone
	}
	s.allocated = true
	requests := s.requests
	s.mux.Unlock()

	if len(requests) != s.expected {
		log.Warnw("not every component requested memory", "expected", s.expected, "received", len(requests))
	}
	sizes := make([]int64, len(requests))
	var total int64
	for i, r := range requests {
		sizes[i] = r.Size
		total += r.Size
	}
	grants := s.allocator.Allocate(s.available, sizes)
	if len(grants) != len(requests) {
		return fmt.Errorf("allocator returned %d grants for %d requests", len(grants), len(requests))
	}
	span.WithInt("memory.available", s.available).WithInt("memory.requested", total)
	log.Infow("making initial memory allocations", "available", s.available, "requested", total, "requests", len(requests))

	for i, r := range requests {
		if err = s.dispatch(ctx, r, grants[i]); err != nil {
			return fmt.Errorf("failed to deliver grant to %s: %w", r.Requester.UniqueIdentifier(), err)
		}
	}
	return nil
}

func (s *Service) dispatch(ctx context.Context, r *Request, grant int64) error {
	s.metrics.MemoryGranted(grant)
	if s.pool == nil {
		r.Callback.MemoryAssigned(grant)
		return nil
	}
	return s.pool.Submit(ctx, func(context.Context) {
		r.Callback.MemoryAssigned(grant)
	})
}

// New creates a distributor for available bytes shared by expected requesters.
func New(available int64, expected int, options ...Option) *Service {
	ret := &Service{
		available: available,
		expected:  expected,
		allocator: ScalingAllocator{},
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
