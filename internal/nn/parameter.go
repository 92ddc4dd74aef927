package nn

import (
	"github.com/born-ml/raccoon/internal/autodiff"
)

// Parameter represents a trainable leaf of a graph.
//
// Example:
//
//	w := nn.NewParameter(g, "layer0.neuron0.w0", 0.5)
//	// ... build a loss from w.Node(), run g.Backward(loss) ...
//	grad, _ := w.Grad()
type Parameter struct {
	g    *autodiff.Graph
	name string        // e.g. "layer0.neuron1.bias"
	node autodiff.Node // leaf holding the value and gradient
}

// NewParameter creates a leaf in g holding value and wraps it.
func NewParameter(g *autodiff.Graph, name string, value float64) *Parameter {
	return &Parameter{g: g, name: name, node: g.Leaf(value)}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Node returns the leaf node of the parameter.
func (p *Parameter) Node() autodiff.Node {
	return p.node
}

// Value returns the current value.
func (p *Parameter) Value() (float64, error) {
	return p.g.Value(p.node)
}

// SetValue overwrites the value.
func (p *Parameter) SetValue(v float64) error {
	return p.g.SetValue(p.node, v)
}

// Grad returns the gradient accumulated by the last backward passes.
func (p *Parameter) Grad() (float64, error) {
	return p.g.Grad(p.node)
}

// ZeroGrad clears the gradient.
//
// This should be called before each training iteration to avoid
// accumulating gradients from previous iterations.
func (p *Parameter) ZeroGrad() error {
	return p.g.ZeroGradNode(p.node)
}
