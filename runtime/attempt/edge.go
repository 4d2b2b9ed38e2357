package attempt

import (
	"fmt"

	"github.com/viant/taskctx/model/failure"
	"github.com/viant/taskctx/model/identity"
)

// InputContext is handed to an input reading from an upstream vertex.
type InputContext struct {
	*Context
	inputIndex int
}

// SourceVertexName returns the upstream vertex of the edge.
func (i *InputContext) SourceVertexName() string {
	return i.edgeVertexName
}

// InputIndex returns the position of the input among the task inputs.
func (i *InputContext) InputIndex() int {
	return i.inputIndex
}

// NewInputContext creates a context for the input at index reading from sourceVertex.
func NewInputContext(attemptID identity.TaskAttemptID, sourceVertex string, index int, opts ...Option) (*InputContext, error) {
	if err := validateEdge(sourceVertex, index); err != nil {
		return nil, err
	}
	c, err := New(attemptID, opts...)
	if err != nil {
		return nil, err
	}
	c.producer = failure.ProducerInput
	c.edgeVertexName = sourceVertex
	return &InputContext{Context: c, inputIndex: index}, nil
}

// OutputContext is handed to an output writing to a downstream vertex.
type OutputContext struct {
	*Context
	outputIndex int
}

// DestinationVertexName returns the downstream vertex of the edge.
func (o *OutputContext) DestinationVertexName() string {
	return o.edgeVertexName
}

// OutputIndex returns the position of the output among the task outputs.
func (o *OutputContext) OutputIndex() int {
	return o.outputIndex
}

// NewOutputContext creates a context for the output at index writing to destinationVertex.
func NewOutputContext(attemptID identity.TaskAttemptID, destinationVertex string, index int, opts ...Option) (*OutputContext, error) {
	if err := validateEdge(destinationVertex, index); err != nil {
		return nil, err
	}
	c, err := New(attemptID, opts...)
	if err != nil {
		return nil, err
	}
	c.producer = failure.ProducerOutput
	c.edgeVertexName = destinationVertex
	return &OutputContext{Context: c, outputIndex: index}, nil
}

func validateEdge(vertex string, index int) error {
	if vertex == "" {
		return fmt.Errorf("edge vertex name is required")
	}
	if index < 0 {
		return fmt.Errorf("%w: negative edge index %d", ErrInvalidArgument, index)
	}
	return nil
}
