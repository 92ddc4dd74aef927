// Package chain builds left-folded expressions ((init op v1) op v2) ... on a
// graph one operand at a time, keeping every intermediate result so the
// whole chain can be differentiated from its last node.
package chain

import (
	"fmt"

	"github.com/born-ml/raccoon/internal/autodiff"
)

// Solver accumulates a running expression on a graph.
//
// The solver owns the initial node, every intermediate result and every
// leaf it created for a *Value call. Operands passed as nodes stay owned by
// the caller.
//
// Example:
//
//	s := chain.New(g, 2)
//	_ = s.MulValue(3)
//	_ = s.AddValue(1)
//	_ = g.Backward(s.Result()) // value 7
type Solver struct {
	g      *autodiff.Graph
	list   []autodiff.Node // init, then one entry per step
	leaves []autodiff.Node // operands created by *Value calls
}

// New creates a solver whose chain starts at a leaf holding init.
// It panics if g is nil.
func New(g *autodiff.Graph, init float64) *Solver {
	if g == nil {
		panic("chain: New: nil graph")
	}
	return &Solver{
		g:    g,
		list: []autodiff.Node{g.Leaf(init)},
	}
}

// Graph returns the graph the solver builds on.
func (s *Solver) Graph() *autodiff.Graph {
	return s.g
}

// Add appends Result() + n.
func (s *Solver) Add(n autodiff.Node) error {
	return s.step("add", s.g.Add, n)
}

// Sub appends Result() - n.
func (s *Solver) Sub(n autodiff.Node) error {
	return s.step("sub", s.g.Sub, n)
}

// Mul appends Result() * n.
func (s *Solver) Mul(n autodiff.Node) error {
	return s.step("mul", s.g.Mul, n)
}

// Div appends Result() / n.
func (s *Solver) Div(n autodiff.Node) error {
	return s.step("div", s.g.Div, n)
}

// AddValue appends Result() + v, with v held by a new leaf.
func (s *Solver) AddValue(v float64) error {
	return s.stepValue("add", s.g.Add, v)
}

// SubValue appends Result() - v, with v held by a new leaf.
func (s *Solver) SubValue(v float64) error {
	return s.stepValue("sub", s.g.Sub, v)
}

// MulValue appends Result() * v, with v held by a new leaf.
func (s *Solver) MulValue(v float64) error {
	return s.stepValue("mul", s.g.Mul, v)
}

// DivValue appends Result() / v, with v held by a new leaf.
func (s *Solver) DivValue(v float64) error {
	return s.stepValue("div", s.g.Div, v)
}

// Push appends n as the new result without combining it with the previous
// one. The solver takes ownership of n.
func (s *Solver) Push(n autodiff.Node) error {
	if !s.g.Contains(n) {
		return fmt.Errorf("chain: push: %w: node %s", autodiff.ErrInvalidArgument, n)
	}
	s.list = append(s.list, n)
	return nil
}

// PushValue appends a new leaf holding v as the new result.
func (s *Solver) PushValue(v float64) {
	s.list = append(s.list, s.g.Leaf(v))
}

// Result returns the most recent node of the chain, or the zero Node after
// Close.
func (s *Solver) Result() autodiff.Node {
	if len(s.list) == 0 {
		return autodiff.Node{}
	}
	return s.list[len(s.list)-1]
}

// Value returns the value of Result().
func (s *Solver) Value() (float64, error) {
	return s.g.Value(s.Result())
}

// Backward differentiates the chain from Result().
func (s *Solver) Backward() error {
	return s.g.Backward(s.Result())
}

// Len returns the number of nodes in the chain, the initial one included.
func (s *Solver) Len() int {
	return len(s.list)
}

// Reset returns the chain to its initial node: that node's gradient is
// zeroed and every other owned node is released.
func (s *Solver) Reset() error {
	if len(s.list) == 0 {
		return nil
	}
	if err := s.g.ZeroGradNode(s.list[0]); err != nil {
		return fmt.Errorf("chain: reset: %w", err)
	}
	s.release(s.list[1:])
	s.list = s.list[:1]
	return nil
}

// Close releases every node the solver owns. The solver is empty afterwards.
func (s *Solver) Close() {
	s.release(s.list)
	s.list = nil
}

func (s *Solver) release(results []autodiff.Node) {
	// Results first, consumers before the leaves they read.
	for i := len(results) - 1; i >= 0; i-- {
		if s.g.Contains(results[i]) {
			_ = s.g.Release(results[i])
		}
	}
	for _, n := range s.leaves {
		if s.g.Contains(n) {
			_ = s.g.Release(n)
		}
	}
	s.leaves = s.leaves[:0]
}

type binaryFunc func(lhs, rhs autodiff.Node) (autodiff.Node, error)

func (s *Solver) step(name string, op binaryFunc, n autodiff.Node) error {
	if len(s.list) == 0 {
		return fmt.Errorf("chain: %s: %w: solver is closed", name, autodiff.ErrInvalidArgument)
	}
	out, err := op(s.Result(), n)
	if err != nil {
		return fmt.Errorf("chain: %s: %w", name, err)
	}
	s.list = append(s.list, out)
	return nil
}

func (s *Solver) stepValue(name string, op binaryFunc, v float64) error {
	if len(s.list) == 0 {
		return fmt.Errorf("chain: %s: %w: solver is closed", name, autodiff.ErrInvalidArgument)
	}
	leaf := s.g.Leaf(v)
	if err := s.step(name, op, leaf); err != nil {
		_ = s.g.Release(leaf)
		return err
	}
	s.leaves = append(s.leaves, leaf)
	return nil
}
