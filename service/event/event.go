// Package event wraps payloads published on a messaging queue with the task
// attempt coordinates they belong to.
package event

import (
	"time"

	"github.com/viant/taskctx/internal/clock"
)

// Event types published by the umbilical.
const (
	TypeFailure  = "failure"
	TypeKillSelf = "killSelf"
)

// Context locates an event within a job.
type Context struct {
	TaskAttemptID string `json:"taskAttemptId"`
	VertexName    string `json:"vertexName,omitempty"`
	EventType     string `json:"eventType"`
}

// Event is a published envelope.
type Event[T any] struct {
	Context   *Context          `json:"context"`
	CreatedAt time.Time         `json:"createdAt"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Data      T                 `json:"data"`
}

// NewEvent creates an envelope.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]string),
		Data:      data,
	}
}
