package event

import (
	"context"

	"github.com/viant/taskctx/service/messaging"
)

// Publisher publishes typed events on a queue.
type Publisher[T any] struct {
	queue messaging.Queue[Event[T]]
}

// Publish enqueues the event.
func (p *Publisher[T]) Publish(ctx context.Context, anEvent *Event[T]) error {
	return p.queue.Publish(ctx, anEvent)
}

// Consume returns the next message; the caller acknowledges it.
func (p *Publisher[T]) Consume(ctx context.Context) (messaging.Message[Event[T]], error) {
	return p.queue.Consume(ctx)
}

// NewPublisher creates a publisher over queue.
func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}
