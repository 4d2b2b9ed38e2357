package attempt

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/viant/taskctx/model/failure"
	"github.com/viant/taskctx/model/identity"
)

// ProcessorContext is handed to the processor of a task.
type ProcessorContext struct {
	*Context
	progress atomic.Uint32
}

// SetProgress records the fraction of work done, between 0 and 1, and
// notifies the runtime task.
func (p *ProcessorContext) SetProgress(progress float32) error {
	if math.IsNaN(float64(progress)) || progress < 0 || progress > 1 {
		return fmt.Errorf("%w: progress %v out of range [0, 1]", ErrInvalidArgument, progress)
	}
	p.progress.Store(math.Float32bits(progress))
	p.NotifyProgress()
	return nil
}

// Progress returns the last recorded progress.
func (p *ProcessorContext) Progress() float32 {
	return math.Float32frombits(p.progress.Load())
}

// KillSelf asks the coordinator to terminate the attempt on behalf of the processor.
func (p *ProcessorContext) KillSelf(ctx context.Context, cause error, message string) error {
	return p.SignalKillSelf(ctx, cause, message, p.source())
}

// NewProcessorContext creates a processor context.
func NewProcessorContext(attemptID identity.TaskAttemptID, opts ...Option) (*ProcessorContext, error) {
	c, err := New(attemptID, opts...)
	if err != nil {
		return nil, err
	}
	c.producer = failure.ProducerProcessor
	return &ProcessorContext{Context: c}, nil
}
