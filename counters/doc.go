// Package counters defines grouped, named counters attached to a task
// attempt. Framework counters are refreshed by the runtime task right before a
// failure is reported so that the report carries consistent metrics.
package counters
