// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/raccoon/autodiff"
	"github.com/born-ml/raccoon/internal/nn"
)

// ErrShapeMismatch reports inputs whose length does not fit a neuron, layer
// or loss.
var ErrShapeMismatch = nn.ErrShapeMismatch

// Activation is applied to a neuron's weighted sum. A nil Activation is the
// identity.
type Activation = nn.Activation

// Square returns x*x.
func Square(g *autodiff.Graph, x autodiff.Node) (autodiff.Node, error) {
	return nn.Square(g, x)
}

// Layers

// Neuron reduces its inputs to one weighted sum plus a bias.
type Neuron = nn.Neuron

// NewNeuron creates a neuron with inputSize weights and a bias drawn from
// U(0, 1).
//
// Example:
//
//	n := nn.NewNeuron(g, "n.", 3, nil, rand.New(rand.NewSource(1)))
func NewNeuron(g *autodiff.Graph, prefix string, inputSize int, activate Activation, rng *rand.Rand) *Neuron {
	return nn.NewNeuron(g, prefix, inputSize, activate, rng)
}

// NewNeuronFromParams creates a neuron from existing parameters, weights
// first and the bias last.
func NewNeuronFromParams(g *autodiff.Graph, params []*Parameter, activate Activation) (*Neuron, error) {
	return nn.NewNeuronFromParams(g, params, activate)
}

// Layer is a set of neurons sharing one input vector.
type Layer = nn.Layer

// NewLayer creates a layer of outputSize neurons with inputSize inputs each.
func NewLayer(g *autodiff.Graph, prefix string, inputSize, outputSize int, activate Activation, rng *rand.Rand) *Layer {
	return nn.NewLayer(g, prefix, inputSize, outputSize, activate, rng)
}

// MLP chains layers from input to output.
type MLP = nn.MLP

// MLPConfig configures NewMLP.
type MLPConfig = nn.MLPConfig

// NewMLP creates a multi-layer perceptron.
//
// Example:
//
//	model, err := nn.NewMLP(g, nn.MLPConfig{Shape: []int{3, 4, 1}, Hidden: nn.Square})
func NewMLP(g *autodiff.Graph, config MLPConfig) (*MLP, error) {
	return nn.NewMLP(g, config)
}

// NewMLPFromLayers chains existing layers.
func NewMLPFromLayers(layers ...*Layer) (*MLP, error) {
	return nn.NewMLPFromLayers(layers...)
}

// Loss functions

// MSELoss builds the mean squared error between predictions and targets.
func MSELoss(g *autodiff.Graph, predictions, targets []autodiff.Node) (autodiff.Node, error) {
	return nn.MSELoss(g, predictions, targets)
}

// Initialization

// Uniform draws from U(lo, hi) using rng, or the global source if rng is nil.
func Uniform(rng *rand.Rand, lo, hi float64) float64 {
	return nn.Uniform(rng, lo, hi)
}
