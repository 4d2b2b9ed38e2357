// Package registry provides the object registry shared by all processing
// stages of task attempts running in one worker. Entries live for a vertex,
// a DAG or the whole session; the owner clears a scope when the worker moves
// on to a different vertex or DAG.
package registry

// Scope is the lifetime of a cached object.
type Scope string

const (
	ScopeVertex  Scope = "vertex"
	ScopeDAG     Scope = "dag"
	ScopeSession Scope = "session"
)

// IsValid reports whether s is a known scope.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeVertex, ScopeDAG, ScopeSession:
		return true
	}
	return false
}

// ObjectRegistry caches objects that are expensive to construct.
type ObjectRegistry interface {
	// CacheForVertex stores value until the worker moves to another vertex; it returns the previous value.
	CacheForVertex(key string, value interface{}) interface{}

	// CacheForDAG stores value until the worker moves to another DAG; it returns the previous value.
	CacheForDAG(key string, value interface{}) interface{}

	// CacheForSession stores value for the worker lifetime; it returns the previous value.
	CacheForSession(key string, value interface{}) interface{}

	// Get returns the cached value or nil.
	Get(key string) interface{}

	// Delete removes the key and reports whether it was present.
	Delete(key string) bool
}

type entry struct {
	Key   string
	Value interface{}
	Scope Scope
}
