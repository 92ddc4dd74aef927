// Package nn composes scalar autodiff nodes into neural networks.
//
// This package provides:
//   - Parameter: a named trainable leaf
//   - Neuron: weights and a bias reduced to one output, with an optional activation
//   - Layer: neurons sharing one input vector
//   - MLP: layers chained input to output
//   - MSELoss: mean squared error over prediction/target nodes
//
// Everything is built from the four graph operators; this package adds no
// gradient rules of its own.
package nn

import (
	"errors"
	"fmt"

	"github.com/born-ml/raccoon/internal/autodiff"
)

// ErrShapeMismatch reports inputs whose length does not fit a neuron, layer
// or loss.
var ErrShapeMismatch = errors.New("incompatible shapes")

// Module is the interface shared by Layer and MLP.
type Module interface {
	// Forward builds the module's output nodes from its input nodes.
	Forward(inputs []autodiff.Node) ([]autodiff.Node, error)

	// Parameters returns all trainable parameters, weights before biases
	// within each neuron.
	Parameters() []*Parameter
}

// ZeroGrad clears the gradient of every parameter of m.
func ZeroGrad(m Module) error {
	for _, p := range m.Parameters() {
		if err := p.ZeroGrad(); err != nil {
			return err
		}
	}
	return nil
}

// StateDict returns the values of m's parameters keyed by name.
func StateDict(m Module) (map[string]float64, error) {
	params := m.Parameters()
	state := make(map[string]float64, len(params))
	for _, p := range params {
		v, err := p.Value()
		if err != nil {
			return nil, err
		}
		state[p.Name()] = v
	}
	return state, nil
}

// LoadStateDict writes values from state into m's parameters.
//
// Every parameter must be present; extra keys are ignored.
func LoadStateDict(m Module, state map[string]float64) error {
	params := m.Parameters()
	for _, p := range params {
		if _, ok := state[p.Name()]; !ok {
			return fmt.Errorf("nn: load state: missing parameter %q", p.Name())
		}
	}
	for _, p := range params {
		if err := p.SetValue(state[p.Name()]); err != nil {
			return err
		}
	}
	return nil
}
