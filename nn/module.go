// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/raccoon/internal/nn"
)

// Module interface defines the common interface for all neural network modules.
type Module = nn.Module

// ZeroGrad clears the gradient of every parameter of m.
func ZeroGrad(m Module) error {
	return nn.ZeroGrad(m)
}

// StateDict returns the values of m's parameters keyed by name.
func StateDict(m Module) (map[string]float64, error) {
	return nn.StateDict(m)
}

// LoadStateDict writes values from state into m's parameters.
func LoadStateDict(m Module, state map[string]float64) error {
	return nn.LoadStateDict(m, state)
}
