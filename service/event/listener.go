package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("taskctx/event")

// Listener hands every consumed event to a handler on its own goroutine.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	cancel    context.CancelFunc
	done      chan struct{}
	once      sync.Once
}

// Start begins consuming; it returns immediately.
func (l *Listener[T]) Start(ctx context.Context) {
	l.once.Do(func() {
		ctx, l.cancel = context.WithCancel(ctx)
		go l.run(ctx)
	})
}

func (l *Listener[T]) run(ctx context.Context) {
	defer close(l.done)
	for {
		msg, err := l.publisher.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			log.Warnw("failed to consume event", "error", err)
			continue
		}
		if msg == nil {
			continue
		}
		if err = l.handle(msg.T()); err != nil {
			log.Warnw("event handler failed, returning event to queue", "id", msg.ID(), "error", err)
			err = msg.Nack(err)
		} else {
			err = msg.Ack()
		}
		if err != nil {
			log.Warnw("failed to settle event", "id", msg.ID(), "error", err)
		}
	}
}

// handle runs the handler, turning a panic into an error so the message is nacked.
func (l *Listener[T]) handle(anEvent *Event[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	l.handler(anEvent)
	return nil
}

// Stop cancels consumption and waits for the handler goroutine to exit.
func (l *Listener[T]) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
}

// NewListener creates a listener.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		done:      make(chan struct{}),
	}
}
