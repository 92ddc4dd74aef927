package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/raccoon/internal/autodiff"
)

// Layer is a set of neurons reading the same inputs; output i is neuron i's
// output.
type Layer struct {
	neurons   []*Neuron
	inputSize int
}

// NewLayer creates a layer of outputSize neurons with inputSize weights each.
// Parameter names are prefixed with prefix+"neuron<i>.".
func NewLayer(g *autodiff.Graph, prefix string, inputSize, outputSize int, activate Activation, rng *rand.Rand) *Layer {
	neurons := make([]*Neuron, outputSize)
	for i := range neurons {
		neurons[i] = NewNeuron(g, fmt.Sprintf("%sneuron%d.", prefix, i), inputSize, activate, rng)
	}
	return &Layer{neurons: neurons, inputSize: inputSize}
}

// InputSize returns the expected input length.
func (l *Layer) InputSize() int {
	return l.inputSize
}

// OutputSize returns the number of neurons.
func (l *Layer) OutputSize() int {
	return len(l.neurons)
}

// Neurons returns the layer's neurons.
func (l *Layer) Neurons() []*Neuron {
	return l.neurons
}

// Forward computes every neuron's output.
func (l *Layer) Forward(inputs []autodiff.Node) ([]autodiff.Node, error) {
	if len(inputs) != l.inputSize {
		return nil, fmt.Errorf("nn: layer forward: %w: expected %d inputs, got %d", ErrShapeMismatch, l.inputSize, len(inputs))
	}
	out := make([]autodiff.Node, len(l.neurons))
	for i, n := range l.neurons {
		y, err := n.Forward(inputs)
		if err != nil {
			return nil, err
		}
		out[i] = y
	}
	return out, nil
}

// Parameters returns all neuron parameters in neuron order.
func (l *Layer) Parameters() []*Parameter {
	var params []*Parameter
	for _, n := range l.neurons {
		params = append(params, n.Parameters()...)
	}
	return params
}
