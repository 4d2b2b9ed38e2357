// Package memory arbitrates the memory budget of a task attempt among the
// components (processor, inputs, outputs) that run inside it.
//
// Components never receive memory synchronously: they register a request
// with a Distributor and are told their share through a Callback once the
// distributor has seen every request, possibly on another goroutine.
package memory
