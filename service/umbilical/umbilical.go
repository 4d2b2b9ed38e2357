package umbilical

import (
	"context"
	"errors"

	"github.com/viant/taskctx/model/failure"
	"github.com/viant/taskctx/model/identity"
)

// ErrInvalidKind is returned when a failure is reported without a valid kind.
var ErrInvalidKind = errors.New("umbilical: invalid failure kind")

// Umbilical is the reporting channel from a task attempt to its coordinator.
// Delivery guarantees belong to the implementation.
type Umbilical interface {
	SignalFailure(ctx context.Context, attemptID identity.TaskAttemptID, kind failure.Kind, cause error, message string, source *failure.EventMetaData) error

	SignalKillSelf(ctx context.Context, attemptID identity.TaskAttemptID, cause error, message string, source *failure.EventMetaData) error
}
