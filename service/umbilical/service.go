package umbilical

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/taskctx/internal/clock"
	"github.com/viant/taskctx/internal/idgen"
	"github.com/viant/taskctx/metrics"
	"github.com/viant/taskctx/model/failure"
	"github.com/viant/taskctx/model/identity"
	"github.com/viant/taskctx/service/event"
	"github.com/viant/taskctx/service/messaging"
	"github.com/viant/taskctx/service/messaging/memory"
	"github.com/viant/taskctx/tracing"
)

var log = logging.Logger("taskctx/umbilical")

// Service publishes reports on a queue and optionally journals them.
type Service struct {
	queue      messaging.Queue[event.Event[failure.Event]]
	publisher  *event.Publisher[failure.Event]
	fs         afs.Service
	journalURL string
	metrics    *metrics.Metrics

	mux       sync.Mutex
	listeners []*event.Listener[failure.Event]
}

var _ Umbilical = (*Service)(nil)

// SignalFailure reports a failure of the given kind.
func (s *Service) SignalFailure(ctx context.Context, attemptID identity.TaskAttemptID, kind failure.Kind, cause error, message string, source *failure.EventMetaData) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %v", ErrInvalidKind, kind)
	}
	anEvent := failure.NewEvent(idgen.New(), attemptID, kind, cause, message, source, clock.Now())
	return s.report(ctx, event.TypeFailure, anEvent)
}

// SignalKillSelf reports a self termination request.
func (s *Service) SignalKillSelf(ctx context.Context, attemptID identity.TaskAttemptID, cause error, message string, source *failure.EventMetaData) error {
	anEvent := failure.NewEvent(idgen.New(), attemptID, failure.KindKillSelf, cause, message, source, clock.Now())
	return s.report(ctx, event.TypeKillSelf, anEvent)
}

func (s *Service) report(ctx context.Context, eventType string, anEvent *failure.Event) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(ctx, "umbilical."+eventType)
	defer func() { tracing.EndSpan(span, err) }()
	eCtx := &event.Context{TaskAttemptID: anEvent.TaskAttemptID, EventType: eventType}
	if anEvent.Source != nil {
		eCtx.VertexName = anEvent.Source.TaskVertexName
	}
	span.WithAttributes(map[string]string{
		tracing.AttrTaskAttemptID: anEvent.TaskAttemptID,
		tracing.AttrVertexName:    eCtx.VertexName,
		tracing.AttrFailureKind:   anEvent.Kind.String(),
	})

	if s.journalURL != "" {
		if err = s.journal(ctx, anEvent); err != nil {
			return err
		}
	}
	if err = s.publisher.Publish(ctx, event.NewEvent(eCtx, *anEvent)); err != nil {
		if !errors.Is(err, messaging.ErrQueueFull) {
			return fmt.Errorf("failed to publish %s event: %w", eventType, err)
		}
		s.metrics.EventDropped()
		log.Warnw("no listener is draining reported events, dropping event", "type", eventType,
			"attempt", anEvent.TaskAttemptID, "kind", anEvent.Kind.String(), "message", anEvent.Message)
		err = nil
	}
	s.metrics.FailureReported(anEvent.Kind.String())
	log.Infow("reported task attempt event", "type", eventType, "attempt", anEvent.TaskAttemptID,
		"kind", anEvent.Kind.String(), "message", anEvent.Message, "cause", anEvent.Cause)
	return nil
}

func (s *Service) journal(ctx context.Context, anEvent *failure.Event) error {
	data, err := json.Marshal(anEvent)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	dir := url.Join(s.journalURL, anEvent.TaskAttemptID)
	exists, err := s.fs.Exists(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to check journal directory %s: %w", dir, err)
	}
	if !exists {
		if err = s.fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return fmt.Errorf("failed to create journal directory %s: %w", dir, err)
		}
	}
	location := url.Join(dir, anEvent.ID+".json")
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to journal event to %s: %w", location, err)
	}
	return nil
}

// Journal returns the events journaled for an attempt, oldest first.
func (s *Service) Journal(ctx context.Context, attemptID identity.TaskAttemptID) ([]*failure.Event, error) {
	if s.journalURL == "" {
		return nil, fmt.Errorf("journal is not enabled")
	}
	dir := url.Join(s.journalURL, attemptID.String())
	exists, err := s.fs.Exists(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to check journal %s: %w", dir, err)
	}
	if !exists {
		return nil, nil
	}
	objects, err := s.fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal %s: %w", dir, err)
	}
	var ret []*failure.Event
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			return nil, fmt.Errorf("failed to read journal entry %s: %w", path.Base(object.URL()), err)
		}
		anEvent := &failure.Event{}
		if err = json.Unmarshal(data, anEvent); err != nil {
			return nil, fmt.Errorf("failed to decode journal entry %s: %w", path.Base(object.URL()), err)
		}
		ret = append(ret, anEvent)
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].CreatedAt.Before(ret[j].CreatedAt) })
	return ret, nil
}

// Listen delivers every reported event to handler until ctx is done or Stop is called.
func (s *Service) Listen(ctx context.Context, handler func(anEvent *failure.Event)) {
	listener := event.NewListener[failure.Event](s.publisher, func(e *event.Event[failure.Event]) {
		handler(&e.Data)
	})
	listener.Start(ctx)
	s.mux.Lock()
	s.listeners = append(s.listeners, listener)
	s.mux.Unlock()
}

// DeadLettered returns the number of events listeners repeatedly failed to
// handle, when the queue keeps such a list.
func (s *Service) DeadLettered() int {
	if dlq, ok := s.queue.(interface{ DLQSize() int }); ok {
		return dlq.DLQSize()
	}
	return 0
}

// Stop stops all listeners.
func (s *Service) Stop() {
	s.mux.Lock()
	listeners := s.listeners
	s.listeners = nil
	s.mux.Unlock()
	for _, listener := range listeners {
		listener.Stop()
	}
}

// New creates an umbilical service. Without WithQueue an in-memory queue is used.
func New(options ...Option) *Service {
	ret := &Service{}
	for _, opt := range options {
		opt(ret)
	}
	if ret.queue == nil {
		ret.queue = memory.NewQueue[event.Event[failure.Event]](memory.DefaultConfig())
	}
	if ret.journalURL != "" {
		if ret.fs == nil {
			ret.fs = afs.New()
		}
		ret.journalURL = url.Normalize(ret.journalURL, file.Scheme)
	}
	ret.publisher = event.NewPublisher[failure.Event](ret.queue)
	return ret
}
