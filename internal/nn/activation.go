package nn

import (
	"github.com/born-ml/raccoon/internal/autodiff"
)

// Activation maps a neuron's pre-activation node to its output node.
// A nil Activation is the identity.
type Activation func(g *autodiff.Graph, x autodiff.Node) (autodiff.Node, error)

// Square is the activation f(x) = x², a non-linearity built from a single
// graph multiplication.
//
// Its gradient flows through the product rule: d(x*x)/dx = 2x.
func Square(g *autodiff.Graph, x autodiff.Node) (autodiff.Node, error) {
	return g.Mul(x, x)
}
