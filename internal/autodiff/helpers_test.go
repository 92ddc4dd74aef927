package autodiff_test

import (
	"testing"

	"github.com/born-ml/raccoon/internal/autodiff"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, g *autodiff.Graph, n autodiff.Node) float64 {
	t.Helper()
	v, err := g.Value(n)
	require.NoError(t, err)
	return v
}

func grad(t *testing.T, g *autodiff.Graph, n autodiff.Node) float64 {
	t.Helper()
	v, err := g.Grad(n)
	require.NoError(t, err)
	return v
}

func must(t *testing.T) func(autodiff.Node, error) autodiff.Node {
	t.Helper()
	return func(n autodiff.Node, err error) autodiff.Node {
		t.Helper()
		require.NoError(t, err)
		return n
	}
}

// canonical builds g = f * ((a * b) + c) with a=2, b=-3, c=10, f=-2.
type canonical struct {
	a, b, c, d, e, f, g autodiff.Node
}

func buildCanonical(t *testing.T, gr *autodiff.Graph) canonical {
	t.Helper()
	var x canonical
	x.a = gr.Leaf(2)
	x.b = gr.Leaf(-3)
	x.c = gr.Leaf(10)
	x.e = must(t)(gr.Mul(x.a, x.b))
	x.d = must(t)(gr.Add(x.e, x.c))
	x.f = gr.Leaf(-2)
	x.g = must(t)(gr.Mul(x.f, x.d))
	return x
}
