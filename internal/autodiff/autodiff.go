// Package autodiff implements scalar reverse-mode automatic differentiation.
//
// Architecture:
//   - Graph: an arena of variables addressed by Node handles
//   - Operators (Add, Sub, Mul, Div): allocate a derived node wired to both operands
//   - Backward: seeds the root gradient and applies each node's rule in
//     reverse topological order
//   - Tape: an owned, ordered record of nodes whose values can be refreshed in
//     place (Update) without allocating anything
//
// Usage:
//
//	g := autodiff.NewGraph()
//	a := g.Leaf(2)
//	b := g.Leaf(-3)
//	c, _ := g.Mul(a, b) // c = a*b
//	_ = g.Backward(c)
//	ga, _ := g.Grad(a) // dc/da = b = -3
//
// Parents are handles, not pointers, so one node may feed any number of
// children. Releasing a node makes every copy of its handle stale; stale
// handles are rejected with ErrInvalidArgument instead of being read.
//
// A Graph is not safe for concurrent use.
package autodiff

import (
	"fmt"

	"github.com/born-ml/raccoon/internal/autodiff/ops"
)

// Graph owns every variable created through it.
type Graph struct {
	slots []slot
	free  []uint32 // released slot indices, reused LIFO
	live  int
	tape  *Tape // recording target, nil when not recording
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		slots: make([]slot, 0, 64), // Pre-allocate for common case
	}
}

// Leaf creates a variable with the given value, no parents and no gradient rule.
func (g *Graph) Leaf(value float64) Node {
	return g.alloc(Variable{Value: value})
}

// Derived creates a variable recording that it was produced by op from parents.
//
// It is what the arithmetic operators use; value is stored as given, not
// recomputed. op must be a binary kind and both parents must be live.
func (g *Graph) Derived(value float64, op ops.Kind, parents [2]Node) (Node, error) {
	if err := g.checkProvenance("derived", op, parents); err != nil {
		return Node{}, err
	}
	return g.alloc(Variable{Value: value, Op: op, Parents: parents}), nil
}

// Add returns a new node lhs + rhs.
func (g *Graph) Add(lhs, rhs Node) (Node, error) {
	return g.binary(ops.Add, lhs, rhs)
}

// Sub returns a new node lhs - rhs.
func (g *Graph) Sub(lhs, rhs Node) (Node, error) {
	return g.binary(ops.Sub, lhs, rhs)
}

// Mul returns a new node lhs * rhs.
func (g *Graph) Mul(lhs, rhs Node) (Node, error) {
	return g.binary(ops.Mul, lhs, rhs)
}

// Div returns a new node lhs / rhs.
//
// A zero divisor is not an error: the value becomes ±Inf or NaN and
// propagates like any other float.
func (g *Graph) Div(lhs, rhs Node) (Node, error) {
	return g.binary(ops.Div, lhs, rhs)
}

func (g *Graph) binary(op ops.Kind, lhs, rhs Node) (Node, error) {
	l, ok := g.lookup(lhs)
	if !ok {
		return Node{}, invalidNode(op.String(), "lhs", lhs)
	}
	r, ok := g.lookup(rhs)
	if !ok {
		return Node{}, invalidNode(op.String(), "rhs", rhs)
	}
	value := op.Forward(l.v.Value, r.v.Value)
	return g.alloc(Variable{Value: value, Op: op, Parents: [2]Node{lhs, rhs}}), nil
}

// checkProvenance validates an (op, parents) pair for a derived variable.
func (g *Graph) checkProvenance(name string, op ops.Kind, parents [2]Node) error {
	if !op.IsBinary() {
		return fmt.Errorf("autodiff: %s: %w: operation %s is not binary", name, ErrInvalidArgument, op)
	}
	if !g.Contains(parents[0]) {
		return invalidNode(name, "parent[0]", parents[0])
	}
	if !g.Contains(parents[1]) {
		return invalidNode(name, "parent[1]", parents[1])
	}
	return nil
}

// alloc stores v in a free slot (or a new one) and records the node on the
// active tape.
func (g *Graph) alloc(v Variable) Node {
	var n Node
	if k := len(g.free); k > 0 {
		idx := g.free[k-1]
		g.free = g.free[:k-1]
		s := &g.slots[idx]
		s.v = v
		s.live = true
		n = Node{index: idx, gen: s.gen}
	} else {
		g.slots = append(g.slots, slot{v: v, gen: 1, live: true})
		n = Node{index: uint32(len(g.slots) - 1), gen: 1}
	}
	g.live++

	if g.tape != nil {
		g.tape.nodes = append(g.tape.nodes, n)
	}
	return n
}

func (g *Graph) lookup(n Node) (*slot, bool) {
	if n.IsZero() || int(n.index) >= len(g.slots) {
		return nil, false
	}
	s := &g.slots[n.index]
	if !s.live || s.gen != n.gen {
		return nil, false
	}
	return s, true
}

// Contains reports whether n refers to a live variable of g.
func (g *Graph) Contains(n Node) bool {
	_, ok := g.lookup(n)
	return ok
}

// Release frees the variable behind n.
//
// Every copy of n becomes stale, including the parent handles held by its
// children: using them afterwards fails with ErrInvalidArgument. Releasing
// the same handle twice fails the same way.
func (g *Graph) Release(n Node) error {
	s, ok := g.lookup(n)
	if !ok {
		return invalidNode("release", "target", n)
	}
	s.v = Variable{}
	s.live = false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	g.free = append(g.free, n.index)
	g.live--
	return nil
}

// Reset drops every variable at once and stops recording.
// All existing handles become stale.
func (g *Graph) Reset() {
	for i := range g.slots {
		s := &g.slots[i]
		if s.live {
			s.v = Variable{}
			s.live = false
		}
		s.gen++
		if s.gen == 0 {
			s.gen = 1
		}
	}
	g.free = g.free[:0]
	for i := len(g.slots) - 1; i >= 0; i-- {
		g.free = append(g.free, uint32(i))
	}
	g.live = 0
	g.tape = nil
}

// Len returns the number of live variables.
func (g *Graph) Len() int {
	return g.live
}

// Cap returns the number of allocated slots, live or free.
func (g *Graph) Cap() int {
	return len(g.slots)
}

// Var returns a snapshot of the variable behind n.
func (g *Graph) Var(n Node) (Variable, error) {
	s, ok := g.lookup(n)
	if !ok {
		return Variable{}, invalidNode("var", "target", n)
	}
	return s.v, nil
}

// Value returns the current value of n.
func (g *Graph) Value(n Node) (float64, error) {
	s, ok := g.lookup(n)
	if !ok {
		return 0, invalidNode("value", "target", n)
	}
	return s.v.Value, nil
}

// Grad returns the accumulated gradient of n.
func (g *Graph) Grad(n Node) (float64, error) {
	s, ok := g.lookup(n)
	if !ok {
		return 0, invalidNode("grad", "target", n)
	}
	return s.v.Grad, nil
}

// SetValue overwrites the value of n without touching its provenance.
//
// It is how inputs are fed to a recorded graph and how optimizers move
// parameters.
func (g *Graph) SetValue(n Node, value float64) error {
	s, ok := g.lookup(n)
	if !ok {
		return invalidNode("set value", "target", n)
	}
	s.v.Value = value
	return nil
}

// SetGrad overwrites the gradient of n.
func (g *Graph) SetGrad(n Node, grad float64) error {
	s, ok := g.lookup(n)
	if !ok {
		return invalidNode("set grad", "target", n)
	}
	s.v.Grad = grad
	return nil
}

// StartRecording makes every node g allocates from now on be pushed onto t,
// in construction order. t must belong to g and be open.
//
// Compiling t ends the recording.
func (g *Graph) StartRecording(t *Tape) error {
	if t == nil || t.g != g {
		return fmt.Errorf("autodiff: start recording: %w: tape is nil or bound to another graph", ErrInvalidArgument)
	}
	if t.locked {
		return fmt.Errorf("autodiff: start recording: %w", ErrTapeLocked)
	}
	g.tape = t
	return nil
}

// StopRecording detaches the recording tape, if any.
func (g *Graph) StopRecording() {
	g.tape = nil
}

// IsRecording returns true if nodes are currently pushed onto a tape.
func (g *Graph) IsRecording() bool {
	return g.tape != nil
}
