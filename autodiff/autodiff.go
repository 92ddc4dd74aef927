// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides scalar reverse-mode automatic differentiation.
//
// Variables live in a Graph and are referred to by Node handles. Arithmetic
// operators allocate derived nodes that remember their operands; Backward
// propagates gradients from a root to everything it depends on. A Tape
// records a built graph so later iterations refresh values in place instead
// of rebuilding it.
//
// Example:
//
//	import "github.com/born-ml/raccoon/autodiff"
//
//	func main() {
//	    g := autodiff.NewGraph()
//	    a := g.Leaf(2)
//	    b := g.Leaf(-3)
//	    e, _ := g.Mul(a, b)
//	    d, _ := g.Add(e, g.Leaf(10))
//	    out, _ := g.Mul(g.Leaf(-2), d) // -8
//
//	    _ = g.Backward(out)
//	    ga, _ := g.Grad(a) // 6
//	}
package autodiff

import (
	"github.com/born-ml/raccoon/internal/autodiff"
	"github.com/born-ml/raccoon/internal/autodiff/ops"
)

// Graph is the arena that owns every variable.
type Graph = autodiff.Graph

// Node is a handle to a variable; the zero Node is the absent reference.
type Node = autodiff.Node

// Variable is a snapshot of a node's value, gradient and provenance.
type Variable = autodiff.Variable

// Tape records nodes for in-place replay.
type Tape = autodiff.Tape

// Op identifies the operation that produced a node.
type Op = ops.Kind

// Operation kinds.
const (
	OpNone = ops.None
	OpAdd  = ops.Add
	OpSub  = ops.Sub
	OpMul  = ops.Mul
	OpDiv  = ops.Div
)

// Errors returned by graph and tape operations.
var (
	ErrInvalidArgument = autodiff.ErrInvalidArgument
	ErrTapeLocked      = autodiff.ErrTapeLocked
	ErrOutOfBounds     = autodiff.ErrOutOfBounds
	ErrCycleDetected   = autodiff.ErrCycleDetected
)

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return autodiff.NewGraph()
}

// NewTape creates an open tape bound to g.
//
// Example:
//
//	tape := autodiff.NewTape(g)
//	_ = g.StartRecording(tape)
//	// ... build the graph ...
//	tape.Compile()
func NewTape(g *Graph) *Tape {
	return autodiff.NewTape(g)
}
