package event

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskctx/service/messaging/memory"
)

func TestListener(t *testing.T) {
	queue := memory.NewQueue[Event[string]](memory.DefaultConfig())
	publisher := NewPublisher[string](queue)
	received := make(chan *Event[string], 2)
	listener := NewListener[string](publisher, func(e *Event[string]) {
		received <- e
	})
	listener.Start(context.Background())
	defer listener.Stop()

	ctx := context.Background()
	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{TaskAttemptID: "a1", EventType: TypeFailure}, "first")))
	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{TaskAttemptID: "a1", EventType: TypeKillSelf}, "second")))

	for _, expect := range []string{"first", "second"} {
		select {
		case e := <-received:
			assert.Equal(t, expect, e.Data)
			assert.Equal(t, "a1", e.Context.TaskAttemptID)
		case <-time.After(time.Second):
			t.Fatalf("event %v not received", expect)
		}
	}
}

func TestListener_StopWithoutStart(t *testing.T) {
	queue := memory.NewQueue[Event[int]](memory.DefaultConfig())
	listener := NewListener[int](NewPublisher[int](queue), func(*Event[int]) {})
	listener.Stop()
}

func TestListener_HandlerPanicRedelivers(t *testing.T) {
	config := memory.DefaultConfig()
	config.MaxRetries = 1
	config.RetryDelay = 5 * time.Millisecond
	queue := memory.NewQueue[Event[string]](config)
	publisher := NewPublisher[string](queue)

	var calls atomic.Int32
	received := make(chan string, 1)
	listener := NewListener[string](publisher, func(e *Event[string]) {
		if e.Data == "poison" || calls.Add(1) == 1 {
			panic("handler failed")
		}
		received <- e.Data
	})
	listener.Start(context.Background())
	defer listener.Stop()

	ctx := context.Background()
	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{TaskAttemptID: "a1"}, "flaky")))
	select {
	case data := <-received:
		assert.Equal(t, "flaky", data)
	case <-time.After(time.Second):
		t.Fatal("event was not redelivered")
	}

	require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{TaskAttemptID: "a1"}, "poison")))
	assert.Eventually(t, func() bool { return queue.DLQSize() == 1 }, time.Second, 5*time.Millisecond)
}
