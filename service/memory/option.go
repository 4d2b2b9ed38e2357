package memory

import (
	"github.com/viant/taskctx/metrics"
	"github.com/viant/taskctx/service/executor"
)

// Option customises the distributor Service.
type Option func(*Service)

// WithAllocator overrides the ScalingAllocator default.
func WithAllocator(allocator Allocator) Option {
	return func(s *Service) {
		s.allocator = allocator
	}
}

// WithExecutor dispatches grant callbacks on pool instead of the allocating goroutine.
func WithExecutor(pool *executor.Pool) Option {
	return func(s *Service) {
		s.pool = pool
	}
}

// WithMetrics records requests and grants in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}
