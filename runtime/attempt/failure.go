package attempt

import (
	"context"
	"fmt"

	"github.com/viant/taskctx/model/failure"
)

// SignalFatalError reports an error the component could not recover from.
// The failure is reported as non fatal: the coordinator decides whether the
// attempt is retried.
func (c *Context) SignalFatalError(ctx context.Context, cause error, message string, source *failure.EventMetaData) error {
	return c.SignalFailure(ctx, failure.KindNonFatal, cause, message, source)
}

// SignalFailure finalizes the framework counters, registers the error with
// the runtime task and reports the failure over the umbilical, in that order.
func (c *Context) SignalFailure(ctx context.Context, kind failure.Kind, cause error, message string, source *failure.EventMetaData) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: failure kind %v", ErrInvalidArgument, kind)
	}
	c.runtimeTask.SetFrameworkCounters()
	c.runtimeTask.RegisterError()
	log.Warnw("failure reported", "uniqueIdentifier", c.uniqueIdentifier, "kind", kind.String(), "message", message, "cause", cause)
	return c.umbilical.SignalFailure(ctx, c.attemptID, kind, cause, message, source)
}

// SignalKillSelf asks the coordinator to terminate this attempt.
func (c *Context) SignalKillSelf(ctx context.Context, cause error, message string, source *failure.EventMetaData) error {
	c.runtimeTask.SetFrameworkCounters()
	c.runtimeTask.RegisterError()
	log.Warnw("kill self requested", "uniqueIdentifier", c.uniqueIdentifier, "message", message, "cause", cause)
	return c.umbilical.SignalKillSelf(ctx, c.attemptID, cause, message, source)
}

// ReportFailure reports a failure on behalf of the component owning the context.
func (c *Context) ReportFailure(ctx context.Context, kind failure.Kind, cause error, message string) error {
	return c.SignalFailure(ctx, kind, cause, message, c.source())
}

// FatalError reports an unrecoverable error on behalf of the component owning the context.
func (c *Context) FatalError(ctx context.Context, cause error, message string) error {
	return c.SignalFatalError(ctx, cause, message, c.source())
}
