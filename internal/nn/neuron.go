package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/raccoon/internal/autodiff"
)

// Neuron reduces an input vector to one node:
//
//	y = act(w[0]*x[0] + ... + w[n-1]*x[n-1] + bias)
//
// Parameters are stored weights first, bias last.
type Neuron struct {
	g        *autodiff.Graph
	params   []*Parameter // inputSize weights, then the bias
	activate Activation
}

// NewNeuron creates a neuron with inputSize weights and a bias, all drawn
// from U(0, 1). Parameter names are prefix+"w<i>" and prefix+"bias".
func NewNeuron(g *autodiff.Graph, prefix string, inputSize int, activate Activation, rng *rand.Rand) *Neuron {
	params := make([]*Parameter, 0, inputSize+1)
	for i := 0; i < inputSize; i++ {
		params = append(params, NewParameter(g, fmt.Sprintf("%sw%d", prefix, i), Uniform(rng, 0, 1)))
	}
	params = append(params, NewParameter(g, prefix+"bias", Uniform(rng, 0, 1)))

	return &Neuron{g: g, params: params, activate: activate}
}

// NewNeuronFromParams creates a neuron over existing parameters, weights
// first and bias last. At least one weight and the bias are required.
func NewNeuronFromParams(g *autodiff.Graph, params []*Parameter, activate Activation) (*Neuron, error) {
	if len(params) < 2 {
		return nil, fmt.Errorf("nn: neuron: %w: need at least one weight and a bias, got %d parameters", ErrShapeMismatch, len(params))
	}
	return &Neuron{g: g, params: params, activate: activate}, nil
}

// InputSize returns the number of weights.
func (n *Neuron) InputSize() int {
	return len(n.params) - 1
}

// Forward builds the neuron's output from inputs.
//
// Every intermediate sum and product is a new node, so recording the graph
// while calling Forward captures the whole computation for replay.
func (n *Neuron) Forward(inputs []autodiff.Node) (autodiff.Node, error) {
	if len(inputs) != n.InputSize() {
		return autodiff.Node{}, fmt.Errorf("nn: neuron forward: %w: expected %d inputs, got %d", ErrShapeMismatch, n.InputSize(), len(inputs))
	}

	sum := n.g.Leaf(0)
	for i, x := range inputs {
		prod, err := n.g.Mul(n.params[i].Node(), x)
		if err != nil {
			return autodiff.Node{}, err
		}
		if sum, err = n.g.Add(sum, prod); err != nil {
			return autodiff.Node{}, err
		}
	}
	sum, err := n.g.Add(sum, n.params[len(inputs)].Node())
	if err != nil {
		return autodiff.Node{}, err
	}

	if n.activate == nil {
		return sum, nil
	}
	return n.activate(n.g, sum)
}

// Parameters returns the weights followed by the bias.
func (n *Neuron) Parameters() []*Parameter {
	return n.params
}
