package autodiff_test

import (
	"math"
	"testing"

	"github.com/born-ml/raccoon/internal/autodiff"
	"github.com/born-ml/raccoon/internal/autodiff/ops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGraph_Leaf tests leaf construction.
func TestGraph_Leaf(t *testing.T) {
	g := autodiff.NewGraph()
	n := g.Leaf(1)

	v, err := g.Var(n)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v.Value)
	assert.Equal(t, 0.0, v.Grad)
	assert.Equal(t, ops.None, v.Op)
	assert.True(t, v.IsLeaf())
	assert.True(t, v.Parents[0].IsZero())
	assert.True(t, v.Parents[1].IsZero())
	assert.Nil(t, v.Op.Rule())
	assert.Equal(t, 1, g.Len())
}

// TestGraph_BinaryOps tests forward values, provenance and gradients of the
// four operators.
func TestGraph_BinaryOps(t *testing.T) {
	tests := []struct {
		name                 string
		op                   ops.Kind
		build                func(g *autodiff.Graph, a, b autodiff.Node) (autodiff.Node, error)
		a, b                 float64
		want                 float64
		wantGradA, wantGradB float64
	}{
		{"add", ops.Add, (*autodiff.Graph).Add, 1, 2, 3, 1, 1},
		{"sub", ops.Sub, (*autodiff.Graph).Sub, 7, 2, 5, 1, 1},
		{"mul", ops.Mul, (*autodiff.Graph).Mul, 2, 3, 6, 3, 2},
		// Division shares the multiplicative rule: a.grad = b, b.grad = a.
		{"div", ops.Div, (*autodiff.Graph).Div, 6, 3, 2, 3, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := autodiff.NewGraph()
			a := g.Leaf(tt.a)
			b := g.Leaf(tt.b)
			c := must(t)(tt.build(g, a, b))

			v, err := g.Var(c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Value)
			assert.Equal(t, 0.0, v.Grad)
			assert.Equal(t, tt.op, v.Op)
			assert.Equal(t, [2]autodiff.Node{a, b}, v.Parents)

			require.NoError(t, g.Backward(c))
			assert.Equal(t, 1.0, grad(t, g, c))
			assert.Equal(t, tt.wantGradA, grad(t, g, a))
			assert.Equal(t, tt.wantGradB, grad(t, g, b))

			require.NoError(t, g.ZeroGrad(c))
			for _, n := range []autodiff.Node{a, b, c} {
				assert.Equal(t, 0.0, grad(t, g, n))
			}
		})
	}
}

// TestGraph_CanonicalExample tests the reference expression
// g = f * ((a * b) + c).
func TestGraph_CanonicalExample(t *testing.T) {
	gr := autodiff.NewGraph()
	x := buildCanonical(t, gr)

	assert.Equal(t, -8.0, value(t, gr, x.g))
	assert.Equal(t, -2.0, value(t, gr, x.f))
	assert.Equal(t, 4.0, value(t, gr, x.d))
	assert.Equal(t, -6.0, value(t, gr, x.e))
	assert.Equal(t, 10.0, value(t, gr, x.c))
	assert.Equal(t, -3.0, value(t, gr, x.b))
	assert.Equal(t, 2.0, value(t, gr, x.a))

	for _, n := range []autodiff.Node{x.a, x.b, x.c, x.d, x.e, x.f, x.g} {
		assert.Equal(t, 0.0, grad(t, gr, n))
	}

	require.NoError(t, gr.Backward(x.g))

	assert.Equal(t, 1.0, grad(t, gr, x.g))
	assert.Equal(t, 4.0, grad(t, gr, x.f))
	assert.Equal(t, -2.0, grad(t, gr, x.d))
	assert.Equal(t, -2.0, grad(t, gr, x.e))
	assert.Equal(t, -2.0, grad(t, gr, x.c))
	assert.Equal(t, -4.0, grad(t, gr, x.b))
	assert.Equal(t, 6.0, grad(t, gr, x.a))
}

// TestGraph_ZeroGrad tests that ZeroGrad clears the whole dependency list and
// is idempotent.
func TestGraph_ZeroGrad(t *testing.T) {
	gr := autodiff.NewGraph()
	x := buildCanonical(t, gr)
	require.NoError(t, gr.Backward(x.g))

	nodes, err := gr.DependencyList(x.g)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, gr.ZeroGrad(x.g))
		for _, n := range nodes {
			assert.Equal(t, 0.0, grad(t, gr, n), "pass %d, node %v", i, n)
		}
	}
}

// TestGraph_ZeroGradNode tests that ZeroGradNode only touches its target.
func TestGraph_ZeroGradNode(t *testing.T) {
	gr := autodiff.NewGraph()
	x := buildCanonical(t, gr)
	require.NoError(t, gr.Backward(x.g))

	require.NoError(t, gr.ZeroGradNode(x.g))
	assert.Equal(t, 0.0, grad(t, gr, x.g))
	assert.Equal(t, 6.0, grad(t, gr, x.a))
}

// TestGraph_BackwardAccumulates tests that gradients add up across passes.
func TestGraph_BackwardAccumulates(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(2)
	b := g.Leaf(3)
	c := must(t)(g.Mul(a, b))

	require.NoError(t, g.Backward(c))
	require.NoError(t, g.Backward(c))

	assert.Equal(t, 6.0, grad(t, g, a))
	assert.Equal(t, 4.0, grad(t, g, b))
}

// TestGraph_Diamond tests a leaf reached along two paths.
func TestGraph_Diamond(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(1.5)
	p := must(t)(g.Mul(x, g.Leaf(2)))
	q := must(t)(g.Mul(x, g.Leaf(3)))
	r := must(t)(g.Add(p, q))

	require.NoError(t, g.Backward(r))
	assert.Equal(t, 5.0, grad(t, g, x))
}

// TestGraph_SharedInteriorNode tests a derived node with two consumers in
// different branches. Applying rules in discovery order would propagate m's
// gradient before b contributed to it and yield 12 instead of 18.
func TestGraph_SharedInteriorNode(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(3)
	m := must(t)(g.Mul(x, x))         // x²
	a := must(t)(g.Mul(m, g.Leaf(2))) // 2x²
	b := must(t)(g.Add(m, g.Leaf(1))) // x² + 1
	r := must(t)(g.Add(a, b))         // 3x² + 1

	require.NoError(t, g.Backward(r))
	assert.Equal(t, 28.0, value(t, g, r))
	assert.Equal(t, 3.0, grad(t, g, m))
	assert.Equal(t, 18.0, grad(t, g, x)) // d(3x²+1)/dx = 6x
}

// TestGraph_SquareSelf tests a node used as both operands.
func TestGraph_SquareSelf(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(-4)
	y := must(t)(g.Mul(x, x))

	require.NoError(t, g.Backward(y))
	assert.Equal(t, 16.0, value(t, g, y))
	assert.Equal(t, -8.0, grad(t, g, x))
}

// TestGraph_DivisionByZero tests that a zero divisor propagates IEEE values
// instead of failing.
func TestGraph_DivisionByZero(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(1)
	z := g.Leaf(0)

	inf := must(t)(g.Div(a, z))
	assert.True(t, math.IsInf(value(t, g, inf), 1))

	nan := must(t)(g.Div(z, z))
	assert.True(t, math.IsNaN(value(t, g, nan)))

	sum := must(t)(g.Add(inf, a))
	assert.True(t, math.IsInf(value(t, g, sum), 1))
	require.NoError(t, g.Backward(sum))
}

// TestGraph_InvalidOperands tests that absent and stale handles are rejected
// without allocating.
func TestGraph_InvalidOperands(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(1)
	stale := g.Leaf(2)
	require.NoError(t, g.Release(stale))
	before := g.Len()

	for _, build := range []func(l, r autodiff.Node) (autodiff.Node, error){g.Add, g.Sub, g.Mul, g.Div} {
		_, err := build(a, autodiff.Node{})
		assert.ErrorIs(t, err, autodiff.ErrInvalidArgument)
		_, err = build(autodiff.Node{}, a)
		assert.ErrorIs(t, err, autodiff.ErrInvalidArgument)
		_, err = build(a, stale)
		assert.ErrorIs(t, err, autodiff.ErrInvalidArgument)
	}
	assert.Equal(t, before, g.Len())

	_, err := g.Value(autodiff.Node{})
	assert.ErrorIs(t, err, autodiff.ErrInvalidArgument)
	assert.ErrorIs(t, g.Backward(autodiff.Node{}), autodiff.ErrInvalidArgument)
	assert.ErrorIs(t, g.ZeroGrad(stale), autodiff.ErrInvalidArgument)
	assert.ErrorIs(t, g.Update(stale), autodiff.ErrInvalidArgument)
}

// TestGraph_Derived tests explicit provenance construction.
func TestGraph_Derived(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(2)
	b := g.Leaf(5)

	n, err := g.Derived(42, ops.Mul, [2]autodiff.Node{a, b})
	require.NoError(t, err)
	v, err := g.Var(n)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v.Value, "value is stored, not recomputed")
	assert.Equal(t, ops.Mul, v.Op)

	_, err = g.Derived(1, ops.None, [2]autodiff.Node{a, b})
	assert.ErrorIs(t, err, autodiff.ErrInvalidArgument)
	_, err = g.Derived(1, ops.Add, [2]autodiff.Node{a, {}})
	assert.ErrorIs(t, err, autodiff.ErrInvalidArgument)
}

// TestGraph_Release tests that released handles go stale and slots are reused.
func TestGraph_Release(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(1)
	b := g.Leaf(2)
	c := must(t)(g.Add(a, b))

	require.NoError(t, g.Release(a))
	assert.False(t, g.Contains(a))
	assert.Equal(t, 2, g.Len())

	// Second release of the same handle is reported, not a double free.
	assert.ErrorIs(t, g.Release(a), autodiff.ErrInvalidArgument)

	// The child now holds a stale parent.
	assert.ErrorIs(t, g.Backward(c), autodiff.ErrInvalidArgument)
	assert.ErrorIs(t, g.Update(c), autodiff.ErrInvalidArgument)
	assert.Equal(t, 3.0, value(t, g, c), "failed update must not write")

	// The slot is reused under a new generation.
	reused := g.Leaf(9)
	assert.Equal(t, 3, g.Cap())
	assert.NotEqual(t, a, reused)
	assert.False(t, g.Contains(a))
	assert.Equal(t, 9.0, value(t, g, reused))
}

// TestGraph_Reset tests dropping the whole arena.
func TestGraph_Reset(t *testing.T) {
	gr := autodiff.NewGraph()
	x := buildCanonical(t, gr)

	gr.Reset()
	assert.Equal(t, 0, gr.Len())
	assert.False(t, gr.Contains(x.a))
	assert.False(t, gr.Contains(x.g))

	n := gr.Leaf(1)
	assert.True(t, gr.Contains(n))
	assert.Equal(t, 1, gr.Len())
}

// TestGraph_SetValue tests feeding new values into leaves.
func TestGraph_SetValue(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(1)
	require.NoError(t, g.SetValue(a, 4))
	require.NoError(t, g.SetGrad(a, 0.5))
	assert.Equal(t, 4.0, value(t, g, a))
	assert.Equal(t, 0.5, grad(t, g, a))

	assert.ErrorIs(t, g.SetValue(autodiff.Node{}, 1), autodiff.ErrInvalidArgument)
	assert.ErrorIs(t, g.SetGrad(autodiff.Node{}, 1), autodiff.ErrInvalidArgument)
}

// TestNode_String tests handle formatting.
func TestNode_String(t *testing.T) {
	g := autodiff.NewGraph()
	assert.Equal(t, "<nil>", autodiff.Node{}.String())
	assert.Equal(t, "#0.1", g.Leaf(0).String())
}
