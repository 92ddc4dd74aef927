package nn

import (
	"fmt"

	"github.com/born-ml/raccoon/internal/autodiff"
)

// MSELoss builds the mean squared error of predictions against targets.
//
// Loss = sum((predictions[i] - targets[i])²) / len(predictions)
//
// The mean is a graph division, so it carries the division gradient rule:
// the sum receives len(predictions) times the loss gradient.
//
// Example:
//
//	pred, _ := mlp.Forward(inputs)
//	loss, _ := nn.MSELoss(g, pred, targets)
//	_ = g.Backward(loss)
func MSELoss(g *autodiff.Graph, predictions, targets []autodiff.Node) (autodiff.Node, error) {
	if len(predictions) == 0 || len(predictions) != len(targets) {
		return autodiff.Node{}, fmt.Errorf("nn: mse: %w: %d predictions, %d targets", ErrShapeMismatch, len(predictions), len(targets))
	}

	sum := g.Leaf(0)
	for i := range predictions {
		diff, err := g.Sub(predictions[i], targets[i])
		if err != nil {
			return autodiff.Node{}, err
		}
		sq, err := g.Mul(diff, diff)
		if err != nil {
			return autodiff.Node{}, err
		}
		if sum, err = g.Add(sum, sq); err != nil {
			return autodiff.Node{}, err
		}
	}
	return g.Div(sum, g.Leaf(float64(len(predictions))))
}
