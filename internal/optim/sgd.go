package optim

import (
	"fmt"

	"github.com/born-ml/raccoon/internal/nn"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities []float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer over params.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make([]float64, len(params)),
	}
}

// Step performs a single optimization step.
func (s *SGD) Step() error {
	values, grads, err := readGrads(s.params)
	if err != nil {
		return err
	}

	for i, p := range s.params {
		update := grads[i]
		if s.momentum != 0 {
			s.velocities[i] = s.momentum*s.velocities[i] + grads[i]
			update = s.velocities[i]
		}
		if err := p.SetValue(values[i] - s.lr*update); err != nil {
			return fmt.Errorf("optim: step %q: %w", p.Name(), err)
		}
	}
	return nil
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() error {
	return zeroGrad(s.params)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// StateDict returns the optimizer state for serialization.
//
// For SGD with momentum, this exports the velocity of each parameter.
// Without momentum, returns an empty map.
//
// State keys: "velocity.{param_index}".
func (s *SGD) StateDict() map[string]float64 {
	state := make(map[string]float64)
	if s.momentum == 0 {
		return state
	}

	for i, v := range s.velocities {
		state[fmt.Sprintf("velocity.%d", i)] = v
	}
	return state
}

// LoadStateDict restores velocities saved by StateDict.
//
// Missing keys reset the corresponding velocity to zero. If momentum is 0,
// the state is ignored.
func (s *SGD) LoadStateDict(state map[string]float64) error {
	if s.momentum == 0 {
		return nil
	}

	for key := range state {
		var i int
		if _, err := fmt.Sscanf(key, "velocity.%d", &i); err != nil || i < 0 || i >= len(s.params) {
			return fmt.Errorf("optim: unexpected state key %q for %d parameters", key, len(s.params))
		}
	}

	for i := range s.velocities {
		s.velocities[i] = state[fmt.Sprintf("velocity.%d", i)]
	}
	return nil
}
