// Package identity defines the hierarchical identifiers of a DAG job:
// application, DAG, vertex, task and task attempt. All values are immutable
// and render to the canonical underscore separated form, for example
// attempt_1700000000000_0001_1_02_000003_0.
package identity
