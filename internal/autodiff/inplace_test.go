package autodiff_test

import (
	"testing"

	"github.com/born-ml/raccoon/internal/autodiff"
	"github.com/born-ml/raccoon/internal/autodiff/ops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGraph_Remake tests in-place reinitialization.
func TestGraph_Remake(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(2)
	b := g.Leaf(3)
	c := must(t)(g.Add(a, b))
	require.NoError(t, g.SetGrad(c, 7))

	require.NoError(t, g.Remake(c, 100, ops.Mul, [2]autodiff.Node{b, a}))

	v, err := g.Var(c)
	require.NoError(t, err)
	assert.Equal(t, autodiff.Variable{Value: 100, Op: ops.Mul, Parents: [2]autodiff.Node{b, a}}, v)
	assert.True(t, g.Contains(c), "identity is preserved")
	assert.Equal(t, 3, g.Len(), "nothing is allocated")
}

// TestGraph_Remake_ToLeaf tests turning a derived node into a leaf.
func TestGraph_Remake_ToLeaf(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(2)
	c := must(t)(g.Mul(a, a))

	require.NoError(t, g.Remake(c, 5, ops.None, [2]autodiff.Node{}))
	v, err := g.Var(c)
	require.NoError(t, err)
	assert.True(t, v.IsLeaf())
	assert.Equal(t, 5.0, v.Value)
}

// TestGraph_Remake_Invalid tests that rejected remakes leave the node untouched.
func TestGraph_Remake_Invalid(t *testing.T) {
	g := autodiff.NewGraph()
	a := g.Leaf(2)
	b := g.Leaf(3)
	c := must(t)(g.Add(a, b))
	before, err := g.Var(c)
	require.NoError(t, err)

	tests := []struct {
		name    string
		target  autodiff.Node
		op      ops.Kind
		parents [2]autodiff.Node
	}{
		{"absent target", autodiff.Node{}, ops.Add, [2]autodiff.Node{a, b}},
		{"leaf with parents", c, ops.None, [2]autodiff.Node{a, b}},
		{"binary without parents", c, ops.Add, [2]autodiff.Node{}},
		{"unknown kind", c, ops.Kind(99), [2]autodiff.Node{a, b}},
		{"self parent", c, ops.Add, [2]autodiff.Node{c, b}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Remake(tt.target, 1, tt.op, tt.parents)
			assert.ErrorIs(t, err, autodiff.ErrInvalidArgument)

			after, err := g.Var(c)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

// TestGraph_InPlaceOps tests that in-place operators match their allocating
// counterparts.
func TestGraph_InPlaceOps(t *testing.T) {
	tests := []struct {
		op      ops.Kind
		inPlace func(g *autodiff.Graph, out, l, r autodiff.Node) error
	}{
		{ops.Add, (*autodiff.Graph).AddInPlace},
		{ops.Sub, (*autodiff.Graph).SubInPlace},
		{ops.Mul, (*autodiff.Graph).MulInPlace},
		{ops.Div, (*autodiff.Graph).DivInPlace},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			g := autodiff.NewGraph()
			a := g.Leaf(6)
			b := g.Leaf(3)
			out := g.Leaf(0)
			require.NoError(t, g.SetGrad(out, 9))

			require.NoError(t, tt.inPlace(g, out, a, b))

			v, err := g.Var(out)
			require.NoError(t, err)
			assert.Equal(t, tt.op.Forward(6, 3), v.Value)
			assert.Equal(t, tt.op, v.Op)
			assert.Equal(t, [2]autodiff.Node{a, b}, v.Parents)
			assert.Equal(t, 0.0, v.Grad)

			assert.ErrorIs(t, tt.inPlace(g, out, a, autodiff.Node{}), autodiff.ErrInvalidArgument)
			assert.ErrorIs(t, tt.inPlace(g, autodiff.Node{}, a, b), autodiff.ErrInvalidArgument)
		})
	}
}

// TestGraph_Update tests recomputation from current parent values.
func TestGraph_Update(t *testing.T) {
	gr := autodiff.NewGraph()
	x := buildCanonical(t, gr)
	require.NoError(t, gr.Backward(x.g))

	require.NoError(t, gr.SetValue(x.a, 3))

	// Producers first: e, d, then g.
	for _, n := range []autodiff.Node{x.e, x.d, x.g} {
		require.NoError(t, gr.Update(n))
		assert.Equal(t, 0.0, grad(t, gr, n))
	}
	assert.Equal(t, -9.0, value(t, gr, x.e))
	assert.Equal(t, 1.0, value(t, gr, x.d))
	assert.Equal(t, -2.0, value(t, gr, x.g))

	// Leaves keep their value and lose their gradient.
	require.NoError(t, gr.Update(x.a))
	assert.Equal(t, 3.0, value(t, gr, x.a))
	assert.Equal(t, 0.0, grad(t, gr, x.a))
}
