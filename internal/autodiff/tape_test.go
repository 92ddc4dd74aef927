package autodiff_test

import (
	"testing"

	"github.com/born-ml/raccoon/internal/autodiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTape_RoundTrip tests push, compile, rejected push and reset.
func TestTape_RoundTrip(t *testing.T) {
	g := autodiff.NewGraph()
	tape := autodiff.NewTape(g)

	nodes := []autodiff.Node{g.Leaf(1), g.Leaf(2), g.Leaf(3)}
	require.NoError(t, tape.PushMany(nodes...))
	require.NoError(t, tape.Push(g.Leaf(4)))
	assert.Equal(t, 4, tape.Len())
	assert.False(t, tape.IsCompiled())

	tape.Compile()
	assert.True(t, tape.IsCompiled())
	tape.Compile() // no-op
	assert.True(t, tape.IsCompiled())

	extra := g.Leaf(5)
	assert.ErrorIs(t, tape.Push(extra), autodiff.ErrTapeLocked)
	assert.ErrorIs(t, tape.PushMany(extra), autodiff.ErrTapeLocked)
	assert.Equal(t, 4, tape.Len())

	tape.Reset()
	assert.False(t, tape.IsCompiled())
	assert.Equal(t, 0, tape.Len())
	for _, n := range nodes {
		assert.False(t, g.Contains(n), "reset releases owned nodes")
	}
	assert.True(t, g.Contains(extra), "nodes never pushed are not released")
	assert.Equal(t, 1, g.Len())

	require.NoError(t, tape.Push(extra))
	assert.Equal(t, 1, tape.Len())
}

// TestTape_Accessors tests First, Last and Get.
func TestTape_Accessors(t *testing.T) {
	g := autodiff.NewGraph()
	tape := autodiff.NewTape(g)

	_, ok := tape.First()
	assert.False(t, ok)
	_, ok = tape.Last()
	assert.False(t, ok)
	_, err := tape.Get(0)
	assert.ErrorIs(t, err, autodiff.ErrOutOfBounds)

	a, b, c := g.Leaf(1), g.Leaf(2), g.Leaf(3)
	require.NoError(t, tape.PushMany(a, b, c))

	first, ok := tape.First()
	assert.True(t, ok)
	assert.Equal(t, a, first)

	last, ok := tape.Last()
	assert.True(t, ok)
	assert.Equal(t, c, last)

	got, err := tape.Get(1)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	for _, i := range []int{-1, 3, 100} {
		_, err := tape.Get(i)
		assert.ErrorIs(t, err, autodiff.ErrOutOfBounds, "index %d", i)
	}
	assert.Equal(t, []autodiff.Node{a, b, c}, tape.Nodes())
}

// TestTape_PushInvalid tests that a bad handle rejects the whole batch.
func TestTape_PushInvalid(t *testing.T) {
	g := autodiff.NewGraph()
	tape := autodiff.NewTape(g)

	a := g.Leaf(1)
	err := tape.PushMany(a, autodiff.Node{})
	assert.ErrorIs(t, err, autodiff.ErrInvalidArgument)
	assert.Equal(t, 0, tape.Len())

	other := autodiff.NewGraph()
	other.Leaf(1)
	other.Leaf(2)
	b := other.Leaf(3)
	assert.ErrorIs(t, tape.Push(b), autodiff.ErrInvalidArgument, "index beyond this graph")
}

// TestTape_Replay tests refreshing a recorded graph for new leaf values.
func TestTape_Replay(t *testing.T) {
	g := autodiff.NewGraph()
	tape := autodiff.NewTape(g)

	a := g.Leaf(2)
	b := g.Leaf(5)
	c := must(t)(g.Mul(a, b))
	require.NoError(t, tape.PushMany(a, b, c))
	tape.Compile()

	require.NoError(t, g.Backward(c))
	before := tape.Nodes()
	capBefore := g.Cap()

	require.NoError(t, g.SetValue(a, 4))
	require.NoError(t, g.SetValue(b, -1.5))
	require.NoError(t, tape.Update())

	assert.Equal(t, -6.0, value(t, g, c))
	for _, n := range before {
		assert.Equal(t, 0.0, grad(t, g, n), "update zeroes gradients")
	}
	assert.Equal(t, before, tape.Nodes(), "membership and order unchanged")
	assert.Equal(t, 3, tape.Len())
	assert.Equal(t, capBefore, g.Cap(), "update allocates nothing")

	require.NoError(t, g.Backward(c))
	assert.Equal(t, -1.5, grad(t, g, a))
	assert.Equal(t, 4.0, grad(t, g, b))
}

// TestTape_ReplayCanonical tests a full recorded replay of the reference
// expression.
func TestTape_ReplayCanonical(t *testing.T) {
	gr := autodiff.NewGraph()
	tape := autodiff.NewTape(gr)
	require.NoError(t, gr.StartRecording(tape))
	x := buildCanonical(t, gr)
	tape.Compile()
	assert.False(t, gr.IsRecording())
	assert.Equal(t, 7, tape.Len())

	last, ok := tape.Last()
	require.True(t, ok)
	assert.Equal(t, x.g, last)

	require.NoError(t, gr.Backward(x.g))
	require.NoError(t, tape.Update())
	assert.Equal(t, -8.0, value(t, gr, x.g), "same leaves, same value")

	require.NoError(t, gr.SetValue(x.f, 3))
	require.NoError(t, tape.Update())
	assert.Equal(t, 12.0, value(t, gr, x.g))

	require.NoError(t, gr.Backward(x.g))
	assert.Equal(t, 4.0, grad(t, gr, x.f))
	assert.Equal(t, 3.0, grad(t, gr, x.c))
}

// TestTape_UpdateStale tests that a stale entry fails before anything is
// written.
func TestTape_UpdateStale(t *testing.T) {
	g := autodiff.NewGraph()
	tape := autodiff.NewTape(g)

	a := g.Leaf(1)
	b := g.Leaf(2)
	c := must(t)(g.Add(a, b))
	d := must(t)(g.Add(c, b))
	require.NoError(t, tape.PushMany(a, b, c, d))

	require.NoError(t, g.SetValue(a, 10))
	require.NoError(t, g.Release(b))

	assert.ErrorIs(t, tape.Update(), autodiff.ErrInvalidArgument)
	assert.Equal(t, 3.0, value(t, g, c))
	assert.Equal(t, 5.0, value(t, g, d))
}

// TestTape_ClearSharedOwnership tests that a node pushed twice or released
// elsewhere is never released twice.
func TestTape_ClearSharedOwnership(t *testing.T) {
	g := autodiff.NewGraph()
	tape := autodiff.NewTape(g)

	a := g.Leaf(1)
	b := g.Leaf(2)
	require.NoError(t, tape.PushMany(a, a, b))
	require.NoError(t, g.Release(b))

	tape.Compile()
	tape.Clear()
	assert.Equal(t, 0, tape.Len())
	assert.True(t, tape.IsCompiled(), "clear keeps the lock")
	assert.Equal(t, 0, g.Len())

	// The freed slots are reusable exactly once each.
	n1, n2 := g.Leaf(1), g.Leaf(2)
	assert.NotEqual(t, n1, n2)
	assert.Equal(t, 2, g.Cap())
}

// TestTape_Recording tests recording nodes as the graph allocates them.
func TestTape_Recording(t *testing.T) {
	g := autodiff.NewGraph()
	tape := autodiff.NewTape(g)

	before := g.Leaf(1) // not recorded
	assert.False(t, g.IsRecording())

	require.NoError(t, g.StartRecording(tape))
	assert.True(t, g.IsRecording())
	x := g.Leaf(2)
	y := must(t)(g.Mul(before, x))
	g.StopRecording()
	g.Leaf(3) // not recorded

	assert.Equal(t, []autodiff.Node{x, y}, tape.Nodes())

	tape.Compile()
	assert.ErrorIs(t, g.StartRecording(tape), autodiff.ErrTapeLocked)
	assert.ErrorIs(t, g.StartRecording(nil), autodiff.ErrInvalidArgument)
	assert.ErrorIs(t, g.StartRecording(autodiff.NewTape(autodiff.NewGraph())), autodiff.ErrInvalidArgument)
}

// TestNewTape_NilGraph tests the nil-graph guard.
func TestNewTape_NilGraph(t *testing.T) {
	assert.Panics(t, func() { autodiff.NewTape(nil) })
}
