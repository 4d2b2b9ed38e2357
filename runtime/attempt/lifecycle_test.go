package attempt

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/taskctx/service/memory"
)

func TestContext_CloseWhileRunning(t *testing.T) {
	f := newFixture()
	closed := 0
	c, err := New(testAttemptID, f.options(WithCloseListener(func(*Context) { closed++ }))...)
	require.NoError(t, err)

	assert.ErrorIs(t, c.Close(), ErrTaskNotDone)
	assert.Equal(t, StateOpen, c.State())
	assert.Equal(t, 0, closed)

	reg, err := c.ObjectRegistry()
	require.NoError(t, err)
	assert.Same(t, f.registry, reg)
	assert.NoError(t, c.RequestInitialMemory(16, memory.NopCallback))
	assert.Len(t, f.distributor.Requests(), 1)
}

func TestContext_Close(t *testing.T) {
	f := newFixture()
	var closedWith *Context
	c, err := New(testAttemptID, f.options(WithCloseListener(func(c *Context) { closedWith = c }))...)
	require.NoError(t, err)
	f.task.done = true

	require.NoError(t, c.Close())
	assert.Same(t, c, closedWith)
	assert.Equal(t, StateClosed, c.State())
	assert.Equal(t, "CLOSED", c.State().String())

	reg, err := c.ObjectRegistry()
	assert.Nil(t, reg)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.RequestInitialMemory(16, memory.NopCallback), ErrClosed)
	assert.Empty(t, f.distributor.Requests())

	assert.ErrorIs(t, c.Close(), ErrClosed)

	assert.Equal(t, "tokenizer", c.TaskVertexName())
	assert.Equal(t, int64(1024), c.TotalMemoryAvailableToTask())
	assert.NotEmpty(t, c.UniqueIdentifier())
}

func TestContext_ConcurrentClose(t *testing.T) {
	f := newFixture()
	f.task.done = true
	listeners := 0
	c, err := New(testAttemptID, f.options(WithCloseListener(func(*Context) { listeners++ }))...)
	require.NoError(t, err)

	const goroutines = 16
	results := make(chan error, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- c.Close()
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrClosed)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, listeners)
}
