// Package failure defines the events a task attempt reports to its
// coordinator: failures of a given kind and self-kill requests.
package failure

import (
	"fmt"
	"time"

	"github.com/viant/taskctx/model/identity"
)

// Kind classifies a reported failure.
type Kind int

const (
	// KindUnspecified is the zero value; reporting it is a contract violation.
	KindUnspecified Kind = iota
	KindNonFatal
	KindFatal
	KindKillSelf
)

func (k Kind) String() string {
	switch k {
	case KindNonFatal:
		return "NON_FATAL"
	case KindFatal:
		return "FATAL"
	case KindKillSelf:
		return "KILL_SELF"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsValid reports whether k is one of the defined kinds.
func (k Kind) IsValid() bool {
	return k >= KindNonFatal && k <= KindKillSelf
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("invalid failure kind: %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "NON_FATAL":
		*k = KindNonFatal
	case "FATAL":
		*k = KindFatal
	case "KILL_SELF":
		*k = KindKillSelf
	default:
		return fmt.Errorf("invalid failure kind: %q", text)
	}
	return nil
}

// ProducerType identifies which part of the task emitted an event.
type ProducerType string

const (
	ProducerInput     ProducerType = "INPUT"
	ProducerProcessor ProducerType = "PROCESSOR"
	ProducerOutput    ProducerType = "OUTPUT"
	ProducerSystem    ProducerType = "SYSTEM"
)

// EventMetaData describes the source of an event.
type EventMetaData struct {
	ProducerType   ProducerType `json:"producerType"`
	TaskVertexName string       `json:"taskVertexName"`
	// EdgeVertexName is the vertex on the other side of an input or output edge.
	EdgeVertexName string `json:"edgeVertexName,omitempty"`
	TaskAttemptID  string `json:"taskAttemptId"`
}

// Event is a single report sent over the umbilical.
type Event struct {
	ID            string         `json:"id"`
	TaskAttemptID string         `json:"taskAttemptId"`
	Kind          Kind           `json:"kind"`
	Message       string         `json:"message"`
	Cause         string         `json:"cause,omitempty"`
	Source        *EventMetaData `json:"source,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// IsKillSelf reports whether the event is a self termination request.
func (e *Event) IsKillSelf() bool {
	return e.Kind == KindKillSelf
}

// NewEvent creates an event for the attempt. The error, when present, is
// flattened into Cause so the event stays serialisable.
func NewEvent(id string, attemptID identity.TaskAttemptID, kind Kind, cause error, message string, source *EventMetaData, createdAt time.Time) *Event {
	ret := &Event{
		ID:            id,
		TaskAttemptID: attemptID.String(),
		Kind:          kind,
		Message:       message,
		Source:        source,
		CreatedAt:     createdAt,
	}
	if cause != nil {
		ret.Cause = cause.Error()
	}
	return ret
}
