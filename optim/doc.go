// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training models built
// from scalar autodiff parameters.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// Optimizers read gradients from the parameters themselves, so the loop is
// Backward, Step, ZeroGrad.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/raccoon/autodiff"
//	    "github.com/born-ml/raccoon/nn"
//	    "github.com/born-ml/raccoon/optim"
//	)
//
//	func main() {
//	    g := autodiff.NewGraph()
//	    model, _ := nn.NewMLP(g, nn.MLPConfig{Shape: []int{2, 1}})
//
//	    optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.05})
//
//	    for epoch := range epochs {
//	        // ... tape.Update(), g.Backward(loss) ...
//	        _ = optimizer.Step()
//	        _ = optimizer.ZeroGrad()
//	    }
//	}
package optim
