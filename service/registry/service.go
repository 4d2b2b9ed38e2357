package registry

import (
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("taskctx/registry")

// Service is an in-memory ObjectRegistry.
type Service struct {
	store *memoryStore[string, entry]
}

var _ ObjectRegistry = (*Service)(nil)

func (s *Service) cache(scope Scope, key string, value interface{}) interface{} {
	prev := s.store.put(&entry{Key: key, Value: value, Scope: scope})
	if prev == nil {
		return nil
	}
	return prev.Value
}

func (s *Service) CacheForVertex(key string, value interface{}) interface{} {
	return s.cache(ScopeVertex, key, value)
}

func (s *Service) CacheForDAG(key string, value interface{}) interface{} {
	return s.cache(ScopeDAG, key, value)
}

func (s *Service) CacheForSession(key string, value interface{}) interface{} {
	return s.cache(ScopeSession, key, value)
}

func (s *Service) Get(key string) interface{} {
	if e := s.store.load(key); e != nil {
		return e.Value
	}
	return nil
}

func (s *Service) Delete(key string) bool {
	return s.store.delete(key)
}

// Clear removes every entry of the scope and returns the number removed.
func (s *Service) Clear(scope Scope) int {
	removed := s.store.deleteWhere(func(e *entry) bool { return e.Scope == scope })
	if removed > 0 {
		log.Debugw("cleared object registry scope", "scope", scope, "removed", removed)
	}
	return removed
}

// Size returns the number of cached entries.
func (s *Service) Size() int {
	return s.store.size()
}

// New creates an empty registry.
func New() *Service {
	return &Service{store: newMemoryStore[string, entry](func(e *entry) string { return e.Key })}
}
