package umbilical

import (
	"github.com/viant/afs"
	"github.com/viant/taskctx/metrics"
	"github.com/viant/taskctx/model/failure"
	"github.com/viant/taskctx/service/event"
	"github.com/viant/taskctx/service/messaging"
)

// Option customises the Service.
type Option func(*Service)

// WithQueue sets the queue events are published on.
func WithQueue(queue messaging.Queue[event.Event[failure.Event]]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithJournalURL enables writing every event as JSON under baseURL.
func WithJournalURL(baseURL string) Option {
	return func(s *Service) {
		s.journalURL = baseURL
	}
}

// WithFS sets the storage service used by the journal.
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithMetrics records reported events in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}
