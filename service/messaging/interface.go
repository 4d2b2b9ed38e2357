// Package messaging defines the queue abstraction the umbilical publishes
// task attempt events on.
package messaging

import (
	"context"
	"errors"
)

// ErrQueueFull is returned by Publish when the queue cannot take a message
// without blocking.
var ErrQueueFull = errors.New("messaging: queue full")

// Queue is a message queue for any payload type.
type Queue[T any] interface {
	// Publish adds a message carrying a copy of t. It never blocks on a full
	// queue; ErrQueueFull is returned instead.
	Publish(ctx context.Context, t *T) error

	// Consume blocks until a message is available or ctx is done.
	Consume(ctx context.Context) (Message[T], error)
}

// Message is a consumed queue entry.
type Message[T any] interface {
	// ID returns the message identifier.
	ID() string

	// T returns the payload.
	T() *T

	// Ack acknowledges successful processing.
	Ack() error

	// Nack reports failed processing; the queue may redeliver.
	Nack(err error) error
}
