package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/raccoon/internal/autodiff"
)

// MLPConfig describes a multi-layer perceptron.
type MLPConfig struct {
	Shape  []int      // Layer widths, input first: {2, 4, 1} is 2 inputs, 4 hidden, 1 output
	Hidden Activation // Activation of every layer but the last (nil: identity)
	Output Activation // Activation of the last layer (nil: identity)
	Rand   *rand.Rand // Source for parameter initialization (nil: package-level source)
}

// MLP chains layers so each layer's outputs are the next layer's inputs.
//
// Example:
//
//	g := autodiff.NewGraph()
//	mlp, _ := nn.NewMLP(g, nn.MLPConfig{Shape: []int{2, 4, 1}, Hidden: nn.Square})
//	out, _ := mlp.Forward([]autodiff.Node{g.Leaf(1), g.Leaf(0)})
type MLP struct {
	layers []*Layer
}

// NewMLP creates an MLP in g. Layer i's parameters are named "layer<i>.…".
func NewMLP(g *autodiff.Graph, config MLPConfig) (*MLP, error) {
	if len(config.Shape) < 2 {
		return nil, fmt.Errorf("nn: mlp: %w: shape needs an input and an output width, got %v", ErrShapeMismatch, config.Shape)
	}
	for _, w := range config.Shape {
		if w <= 0 {
			return nil, fmt.Errorf("nn: mlp: %w: non-positive width in %v", ErrShapeMismatch, config.Shape)
		}
	}

	last := len(config.Shape) - 1
	layers := make([]*Layer, 0, last)
	for i := 1; i <= last; i++ {
		act := config.Hidden
		if i == last {
			act = config.Output
		}
		prefix := fmt.Sprintf("layer%d.", i-1)
		layers = append(layers, NewLayer(g, prefix, config.Shape[i-1], config.Shape[i], act, config.Rand))
	}
	return &MLP{layers: layers}, nil
}

// NewMLPFromLayers creates an MLP over existing layers.
func NewMLPFromLayers(layers ...*Layer) (*MLP, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("nn: mlp: %w: no layers", ErrShapeMismatch)
	}
	for i := 1; i < len(layers); i++ {
		if layers[i].InputSize() != layers[i-1].OutputSize() {
			return nil, fmt.Errorf("nn: mlp: %w: layer %d takes %d inputs, layer %d gives %d",
				ErrShapeMismatch, i, layers[i].InputSize(), i-1, layers[i-1].OutputSize())
		}
	}
	return &MLP{layers: layers}, nil
}

// Layers returns the layers, input side first.
func (m *MLP) Layers() []*Layer {
	return m.layers
}

// InputSize returns the expected input length.
func (m *MLP) InputSize() int {
	return m.layers[0].InputSize()
}

// OutputSize returns the number of outputs.
func (m *MLP) OutputSize() int {
	return m.layers[len(m.layers)-1].OutputSize()
}

// Forward applies all layers in sequence.
func (m *MLP) Forward(inputs []autodiff.Node) ([]autodiff.Node, error) {
	if len(inputs) != m.InputSize() {
		return nil, fmt.Errorf("nn: mlp forward: %w: expected %d inputs, got %d", ErrShapeMismatch, m.InputSize(), len(inputs))
	}
	out := inputs
	for _, l := range m.layers {
		var err error
		if out, err = l.Forward(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Parameters returns all parameters from all layers.
func (m *MLP) Parameters() []*Parameter {
	var params []*Parameter
	for _, l := range m.layers {
		params = append(params, l.Parameters()...)
	}
	return params
}
