package counters

import (
	"sort"
	"sync"
)

// FrameworkGroup holds counters maintained by the runtime rather than by user code.
const FrameworkGroup = "TaskCounter"

// Framework counter names.
const (
	TaskDurationMillis  = "TASK_DURATION_MILLIS"
	CPUMilliseconds     = "CPU_MILLISECONDS"
	PhysicalMemoryBytes = "PHYSICAL_MEMORY_BYTES"
	VirtualMemoryBytes  = "VIRTUAL_MEMORY_BYTES"
	Goroutines          = "GOROUTINES"
	GCCount             = "GC_COUNT"
	ErrorCount          = "ERROR_COUNT"
)

// Counters keeps counter values by group and name. It is safe for concurrent
// use; the zero value is ready to use and a nil *Counters ignores updates.
type Counters struct {
	mux    sync.RWMutex
	groups map[string]map[string]int64
}

// Increment adds delta to the named counter and returns the new value.
func (c *Counters) Increment(group, name string, delta int64) int64 {
	if c == nil {
		return 0
	}
	c.mux.Lock()
	defer c.mux.Unlock()
	counters := c.groupLocked(group)
	counters[name] += delta
	return counters[name]
}

// Set overwrites the named counter.
func (c *Counters) Set(group, name string, value int64) {
	if c == nil {
		return
	}
	c.mux.Lock()
	defer c.mux.Unlock()
	c.groupLocked(group)[name] = value
}

// Value returns the named counter or 0.
func (c *Counters) Value(group, name string) int64 {
	if c == nil {
		return 0
	}
	c.mux.RLock()
	defer c.mux.RUnlock()
	return c.groups[group][name]
}

// Groups returns the sorted group names.
func (c *Counters) Groups() []string {
	if c == nil {
		return nil
	}
	c.mux.RLock()
	defer c.mux.RUnlock()
	ret := make([]string, 0, len(c.groups))
	for name := range c.groups {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// Snapshot returns a deep copy suitable for read-only inspection.
func (c *Counters) Snapshot() map[string]map[string]int64 {
	ret := map[string]map[string]int64{}
	if c == nil {
		return ret
	}
	c.mux.RLock()
	defer c.mux.RUnlock()
	for group, values := range c.groups {
		copied := make(map[string]int64, len(values))
		for k, v := range values {
			copied[k] = v
		}
		ret[group] = copied
	}
	return ret
}

func (c *Counters) groupLocked(group string) map[string]int64 {
	if c.groups == nil {
		c.groups = make(map[string]map[string]int64)
	}
	ret, ok := c.groups[group]
	if !ok {
		ret = make(map[string]int64)
		c.groups[group] = ret
	}
	return ret
}

// New creates empty counters.
func New() *Counters {
	return &Counters{groups: make(map[string]map[string]int64)}
}
