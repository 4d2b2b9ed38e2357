package idgen

import "github.com/google/uuid"

// NewFunc produces random identifiers (failure events, queue messages).
// Tests replace it for deterministic output.
var NewFunc = uuid.NewString

// New returns a new random identifier.
func New() string { return NewFunc() }
