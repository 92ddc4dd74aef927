package autodiff

import (
	"fmt"

	"github.com/born-ml/raccoon/internal/autodiff/ops"
)

// Remake reinitializes n in place: value, op and parents are overwritten and
// the gradient is reset to 0. The handle stays valid and keeps its identity,
// so every child of n still sees it as a parent.
//
// With op == ops.None both parents must be absent and n becomes a leaf.
// Otherwise op must be binary and both parents live; n may not be its own
// parent.
func (g *Graph) Remake(n Node, value float64, op ops.Kind, parents [2]Node) error {
	s, ok := g.lookup(n)
	if !ok {
		return invalidNode("remake", "target", n)
	}
	if op == ops.None {
		if !parents[0].IsZero() || !parents[1].IsZero() {
			return fmt.Errorf("autodiff: remake: %w: leaf %v given parents", ErrInvalidArgument, n)
		}
	} else if err := g.checkProvenance("remake", op, parents); err != nil {
		return err
	}
	if parents[0] == n || parents[1] == n {
		return fmt.Errorf("autodiff: remake: %w: %v cannot be its own parent", ErrInvalidArgument, n)
	}

	s.v = Variable{Value: value, Op: op, Parents: parents}
	return nil
}

// AddInPlace recomputes out as if it were freshly built from lhs + rhs,
// reusing its storage.
func (g *Graph) AddInPlace(out, lhs, rhs Node) error {
	return g.inPlace(ops.Add, out, lhs, rhs)
}

// SubInPlace recomputes out as lhs - rhs in place.
func (g *Graph) SubInPlace(out, lhs, rhs Node) error {
	return g.inPlace(ops.Sub, out, lhs, rhs)
}

// MulInPlace recomputes out as lhs * rhs in place.
func (g *Graph) MulInPlace(out, lhs, rhs Node) error {
	return g.inPlace(ops.Mul, out, lhs, rhs)
}

// DivInPlace recomputes out as lhs / rhs in place.
func (g *Graph) DivInPlace(out, lhs, rhs Node) error {
	return g.inPlace(ops.Div, out, lhs, rhs)
}

func (g *Graph) inPlace(op ops.Kind, out, lhs, rhs Node) error {
	name := op.String() + " in place"
	if !g.Contains(out) {
		return invalidNode(name, "out", out)
	}
	l, ok := g.lookup(lhs)
	if !ok {
		return invalidNode(name, "lhs", lhs)
	}
	r, ok := g.lookup(rhs)
	if !ok {
		return invalidNode(name, "rhs", rhs)
	}
	return g.Remake(out, op.Forward(l.v.Value, r.v.Value), op, [2]Node{lhs, rhs})
}

// Update recomputes n from the current values of its parents, then zeroes its
// gradient. Leaves keep their value and only get the gradient zeroed.
//
// Sweeping nodes producers-first with Update replays a graph for new leaf
// values without allocating.
func (g *Graph) Update(n Node) error {
	s, ok := g.lookup(n)
	if !ok {
		return invalidNode("update", "target", n)
	}
	if s.v.hasParents() && s.v.Op.IsBinary() {
		if err := g.inPlace(s.v.Op, n, s.v.Parents[0], s.v.Parents[1]); err != nil {
			return err
		}
	}
	s.v.Grad = 0
	return nil
}

// ZeroGradNode sets the gradient of n alone to 0. Use ZeroGrad to clear a
// whole graph between training steps.
func (g *Graph) ZeroGradNode(n Node) error {
	s, ok := g.lookup(n)
	if !ok {
		return invalidNode("zero grad", "target", n)
	}
	s.v.Grad = 0
	return nil
}
