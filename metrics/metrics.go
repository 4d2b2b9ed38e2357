// Package metrics exposes prometheus collectors describing task attempt
// contexts on a worker: reported failures, negotiated memory, open contexts and
// framework executor pools. A nil *Metrics is a valid no-op recorder.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "taskctx"

// Metrics groups all collectors.
type Metrics struct {
	FailuresReported     *prometheus.CounterVec
	MemoryRequestedBytes prometheus.Counter
	MemoryGrantedBytes   prometheus.Counter
	MemoryRequests       prometheus.Counter
	ContextsOpen         prometheus.Gauge
	ExecutorPools        prometheus.Gauge
	EventsDropped        prometheus.Counter
}

// FailureReported counts an event of the given kind.
func (m *Metrics) FailureReported(kind string) {
	if m == nil {
		return
	}
	m.FailuresReported.WithLabelValues(kind).Inc()
}

// MemoryRequested records a forwarded memory request.
func (m *Metrics) MemoryRequested(size int64) {
	if m == nil {
		return
	}
	m.MemoryRequests.Inc()
	m.MemoryRequestedBytes.Add(float64(size))
}

// MemoryGranted records a grant delivered to a requester.
func (m *Metrics) MemoryGranted(size int64) {
	if m == nil {
		return
	}
	m.MemoryGrantedBytes.Add(float64(size))
}

// ContextOpened increments the open context gauge.
func (m *Metrics) ContextOpened() {
	if m == nil {
		return
	}
	m.ContextsOpen.Inc()
}

// ContextClosed decrements the open context gauge.
func (m *Metrics) ContextClosed() {
	if m == nil {
		return
	}
	m.ContextsOpen.Dec()
}

// PoolStarted increments the executor pool gauge.
func (m *Metrics) PoolStarted() {
	if m == nil {
		return
	}
	m.ExecutorPools.Inc()
}

// PoolStopped decrements the executor pool gauge.
func (m *Metrics) PoolStopped() {
	if m == nil {
		return
	}
	m.ExecutorPools.Dec()
}

// EventDropped counts a reported event no listener could take.
func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.EventsDropped.Inc()
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FailuresReported,
		m.MemoryRequestedBytes,
		m.MemoryGrantedBytes,
		m.MemoryRequests,
		m.ContextsOpen,
		m.ExecutorPools,
		m.EventsDropped,
	}
}

// New creates the collectors and registers them with registerer when it is not nil.
func New(registerer prometheus.Registerer) (*Metrics, error) {
	ret := &Metrics{
		FailuresReported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_reported_total",
			Help:      "Failure and kill-self events sent over the umbilical.",
		}, []string{"kind"}),
		MemoryRequestedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_requested_bytes_total",
			Help:      "Bytes requested from the memory distributor.",
		}),
		MemoryGrantedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_granted_bytes_total",
			Help:      "Bytes granted by the memory distributor.",
		}),
		MemoryRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_requests_total",
			Help:      "Memory requests registered with the distributor.",
		}),
		ContextsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "contexts_open",
			Help:      "Task attempt contexts constructed and not yet closed.",
		}),
		ExecutorPools: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "executor_pools",
			Help:      "Framework executor pools currently running.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Reported events dropped because the in-process queue was full.",
		}),
	}
	if registerer == nil {
		return ret, nil
	}
	for _, collector := range ret.collectors() {
		if err := registerer.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return ret, nil
}
