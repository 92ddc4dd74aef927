// Package optim implements optimization algorithms for training models built
// from scalar graph parameters.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Gradients are read from the parameters themselves: run Graph.Backward on
// the loss first, then Step, then ZeroGrad.
//
// Example usage:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01})
//
//	for epoch := range epochs {
//	    if err := tape.Update(); err != nil { ... }
//	    if err := g.Backward(loss); err != nil { ... }
//	    if err := optimizer.Step(); err != nil { ... }
//	    if err := optimizer.ZeroGrad(); err != nil { ... }
//	}
package optim

import (
	"fmt"

	"github.com/born-ml/raccoon/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Step: Apply gradient updates to parameters
//   - ZeroGrad: Clear gradients before next iteration
//   - GetLR: Get current learning rate (for monitoring/scheduling)
type Optimizer interface {
	// Step applies the gradients currently held by the parameters.
	Step() error

	// ZeroGrad clears all parameter gradients.
	//
	// Gradients accumulate across backward passes, so this should be
	// called between iterations.
	ZeroGrad() error

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// zeroGrad clears the gradient of every parameter.
func zeroGrad(params []*nn.Parameter) error {
	for _, p := range params {
		if err := p.ZeroGrad(); err != nil {
			return fmt.Errorf("optim: zero grad %q: %w", p.Name(), err)
		}
	}
	return nil
}

// readGrads reads the value and gradient of every parameter before any
// update is applied, so a stale parameter leaves all values untouched.
func readGrads(params []*nn.Parameter) (values, grads []float64, err error) {
	values = make([]float64, len(params))
	grads = make([]float64, len(params))
	for i, p := range params {
		if values[i], err = p.Value(); err != nil {
			return nil, nil, fmt.Errorf("optim: step %q: %w", p.Name(), err)
		}
		if grads[i], err = p.Grad(); err != nil {
			return nil, nil, fmt.Errorf("optim: step %q: %w", p.Name(), err)
		}
	}
	return values, grads, nil
}
