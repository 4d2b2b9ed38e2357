package registry

import "sync"

// memoryStore keeps *T by a comparable key obtained from keySelector.
type memoryStore[K comparable, T any] struct {
	mux         sync.RWMutex
	records     map[K]*T
	keySelector func(*T) K
}

// put stores v and returns the record it replaced.
func (s *memoryStore[K, T]) put(v *T) *T {
	key := s.keySelector(v)
	s.mux.Lock()
	defer s.mux.Unlock()
	prev := s.records[key]
	s.records[key] = v
	return prev
}

func (s *memoryStore[K, T]) load(key K) *T {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.records[key]
}

func (s *memoryStore[K, T]) delete(key K) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	_, ok := s.records[key]
	delete(s.records, key)
	return ok
}

// deleteWhere removes every record matching predicate and returns how many were removed.
func (s *memoryStore[K, T]) deleteWhere(predicate func(*T) bool) int {
	s.mux.Lock()
	defer s.mux.Unlock()
	removed := 0
	for k, v := range s.records {
		if predicate(v) {
			delete(s.records, k)
			removed++
		}
	}
	return removed
}

func (s *memoryStore[K, T]) size() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.records)
}

func newMemoryStore[K comparable, T any](keySelector func(*T) K) *memoryStore[K, T] {
	return &memoryStore[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
	}
}
