// Package umbilical carries failure and self-kill reports from a task attempt
// to its coordinator. The Umbilical interface is what task contexts consume;
// Service is an in-process implementation that publishes events on a queue
// and can additionally journal them to any afs supported storage.
package umbilical
