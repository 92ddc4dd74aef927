// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network building blocks over scalar autodiff
// nodes.
//
// # Overview
//
// This package contains:
//   - Layers: Neuron, Layer, MLP
//   - Activations: Square (nil means identity)
//   - Loss functions: MSELoss
//   - Utilities: Module interface, Parameter, StateDict/LoadStateDict
//   - Initialization: Uniform
//
// # Basic Usage
//
//	import (
//	    "math/rand"
//
//	    "github.com/born-ml/raccoon/autodiff"
//	    "github.com/born-ml/raccoon/nn"
//	)
//
//	func main() {
//	    g := autodiff.NewGraph()
//
//	    // Build a 2-4-1 MLP
//	    model, _ := nn.NewMLP(g, nn.MLPConfig{
//	        Shape:  []int{2, 4, 1},
//	        Hidden: nn.Square,
//	        Rand:   rand.New(rand.NewSource(1)),
//	    })
//
//	    // Forward pass
//	    output, _ := model.Forward([]autodiff.Node{g.Leaf(0.5), g.Leaf(-1)})
//	}
//
// # Loss Functions
//
// MSELoss: For regression tasks
//
//	loss, _ := nn.MSELoss(g, output, targets)
//	_ = g.Backward(loss)
//
// # Parameter Management
//
// Access model parameters for optimization:
//
//	for _, param := range model.Parameters() {
//	    grad, _ := param.Grad()
//	    fmt.Println(param.Name(), grad)
//	}
package nn
