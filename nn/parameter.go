// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/raccoon/autodiff"
	"github.com/born-ml/raccoon/internal/nn"
)

// Parameter represents a trainable leaf of a graph.
type Parameter = nn.Parameter

// NewParameter creates a leaf in g holding value and names it.
func NewParameter(g *autodiff.Graph, name string, value float64) *Parameter {
	return nn.NewParameter(g, name, value)
}
