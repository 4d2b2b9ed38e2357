package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskctx/metrics"
	"github.com/viant/taskctx/service/executor"
)

type testRequester string

func (r testRequester) UniqueIdentifier() string { return string(r) }
func (r testRequester) TaskVertexName() string   { return "map" }

type recordingCallback struct {
	mux    sync.Mutex
	grants []int64
	done   chan struct{}
}

func (c *recordingCallback) MemoryAssigned(size int64) {
	c.mux.Lock()
	c.grants = append(c.grants, size)
	c.mux.Unlock()
	close(c.done)
}

func newRecordingCallback() *recordingCallback {
	return &recordingCallback{done: make(chan struct{})}
}

func TestService_RequestMemory_Invalid(t *testing.T) {
	srv := New(1024, 1)
	testCases := []struct {
		name      string
		size      int64
		callback  Callback
		requester Requester
	}{
		{name: "negative size", size: -1, callback: NopCallback, requester: testRequester("a")},
		{name: "nil callback", size: 1, requester: testRequester("a")},
		{name: "nil requester", size: 1, callback: NopCallback},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := srv.RequestMemory(tc.size, tc.callback, tc.requester, nil)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
	assert.Equal(t, 0, srv.Requests())
}

func TestService_MakeInitialAllocations(t *testing.T) {
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	srv := New(1000, 2, WithMetrics(m))
	first, second := newRecordingCallback(), newRecordingCallback()
	require.NoError(t, srv.RequestMemory(1000, first, testRequester("in"), nil))
	require.NoError(t, srv.RequestMemory(1000, second, testRequester("out"), nil))

	require.NoError(t, srv.MakeInitialAllocations(context.Background()))
	assert.Equal(t, []int64{500}, first.grants)
	assert.Equal(t, []int64{500}, second.grants)
	assert.Equal(t, 2000.0, testutil.ToFloat64(m.MemoryRequestedBytes))
	assert.Equal(t, 1000.0, testutil.ToFloat64(m.MemoryGrantedBytes))

	assert.ErrorIs(t, srv.MakeInitialAllocations(context.Background()), ErrAllocationDone)
	assert.ErrorIs(t, srv.RequestMemory(1, NopCallback, testRequester("late"), nil), ErrAllocationDone)
}

func TestService_AsyncGrant(t *testing.T) {
	provider := executor.New()
	defer provider.Shutdown(context.Background())
	pool, err := provider.NewExecutor(1, "memory-distributor-%d")
	require.NoError(t, err)

	srv := New(1024, 1, WithExecutor(pool))
	callback := newRecordingCallback()
	require.NoError(t, srv.RequestMemory(1024, callback, testRequester("proc"), nil))
	require.NoError(t, srv.MakeInitialAllocations(context.Background()))

	select {
	case <-callback.done:
	case <-time.After(time.Second):
		t.Fatal("grant not delivered")
	}
	callback.mux.Lock()
	defer callback.mux.Unlock()
	assert.Equal(t, []int64{1024}, callback.grants)
}

func TestCallbackFunc(t *testing.T) {
	var got int64
	CallbackFunc(func(size int64) { got = size }).MemoryAssigned(7)
	assert.EqualValues(t, 7, got)
	NopCallback.MemoryAssigned(1)
}
