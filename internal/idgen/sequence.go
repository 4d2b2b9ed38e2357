package idgen

import "sync/atomic"

// Floor is the reserved starting offset of a Sequence; values at or below it
// belong to other identifier spaces.
const Floor int64 = 10000

// Sequence is a monotonic counter shared by every task attempt context in a
// process. One instance is created at process start and injected where needed.
type Sequence struct {
	last atomic.Int64
}

// Next returns the next value, always greater than Floor.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Last returns the most recently issued value (Floor when none was issued).
func (s *Sequence) Last() int64 {
	return s.last.Load()
}

// NewSequence creates a sequence starting right above floor.
func NewSequence(floor int64) *Sequence {
	ret := &Sequence{}
	ret.last.Store(floor)
	return ret
}
