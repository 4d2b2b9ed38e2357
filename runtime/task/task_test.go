package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskctx/counters"
	"github.com/viant/taskctx/internal/clock"
	"github.com/viant/taskctx/model/identity"
)

var testAttemptID = identity.NewTaskAttemptID(identity.ApplicationID{ClusterTimestamp: 1, ID: 1}, 1, 0, 4, 0)

func TestTask_Lifecycle(t *testing.T) {
	aTask := New(testAttemptID, WithSampler(nil))
	assert.Equal(t, StateNew, aTask.State())
	assert.False(t, aTask.IsDone())

	require.NoError(t, aTask.Start())
	assert.Error(t, aTask.Start())
	assert.Equal(t, StateRunning, aTask.State())

	aTask.Done(errors.New("failed"))
	aTask.Done(nil)
	assert.True(t, aTask.IsDone())
	assert.EqualError(t, aTask.Err(), "failed")
	assert.Equal(t, "done", aTask.State().String())
}

func TestTask_SetFrameworkCounters(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	clock.NowFunc = func() time.Time { return now }
	defer func() { clock.NowFunc = time.Now }()

	aTask := New(testAttemptID, WithSampler(func() (*Sample, error) {
		return &Sample{CPU: 1500 * time.Millisecond, Resident: 1 << 20, Virtual: 1 << 30}, nil
	}))
	require.NoError(t, aTask.Start())
	now = start.Add(2 * time.Second)
	aTask.SetFrameworkCounters()

	c := aTask.Counters()
	assert.EqualValues(t, 2000, c.Value(counters.FrameworkGroup, counters.TaskDurationMillis))
	assert.EqualValues(t, 1500, c.Value(counters.FrameworkGroup, counters.CPUMilliseconds))
	assert.EqualValues(t, 1<<20, c.Value(counters.FrameworkGroup, counters.PhysicalMemoryBytes))
	assert.EqualValues(t, 1<<30, c.Value(counters.FrameworkGroup, counters.VirtualMemoryBytes))
	assert.Greater(t, c.Value(counters.FrameworkGroup, counters.Goroutines), int64(0))
}

func TestTask_SamplerError(t *testing.T) {
	aTask := New(testAttemptID, WithSampler(func() (*Sample, error) {
		return nil, errors.New("unsupported")
	}))
	aTask.SetFrameworkCounters()
	assert.EqualValues(t, 0, aTask.Counters().Value(counters.FrameworkGroup, counters.CPUMilliseconds))
}

func TestTask_ErrorsAndProgress(t *testing.T) {
	c := counters.New()
	aTask := New(testAttemptID, WithCounters(c), WithSampler(nil))
	aTask.RegisterError()
	aTask.RegisterError()
	assert.Equal(t, 2, aTask.ErrorCount())
	assert.EqualValues(t, 2, c.Value(counters.FrameworkGroup, counters.ErrorCount))

	assert.False(t, aTask.ProgressNotified())
	aTask.NotifyProgress()
	assert.True(t, aTask.ProgressNotified())
	assert.False(t, aTask.ProgressNotified())
}
