// Package descriptor describes the entity (processor, input or output) a task
// context was created for.
package descriptor

// Entity names a pluggable component and carries its opaque user payload.
type Entity struct {
	Name    string `json:"name" yaml:"name"`
	Payload []byte `json:"payload,omitempty" yaml:"payload,omitempty"`
	// History is free form text recorded with the component, e.g. its configuration summary.
	History string `json:"history,omitempty" yaml:"history,omitempty"`
}

// New creates an entity descriptor.
func New(name string, payload []byte) *Entity {
	return &Entity{Name: name, Payload: payload}
}

// UserPayload returns a copy of the payload.
func (e *Entity) UserPayload() []byte {
	if e == nil || e.Payload == nil {
		return nil
	}
	return append([]byte(nil), e.Payload...)
}
