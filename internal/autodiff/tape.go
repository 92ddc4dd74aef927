package autodiff

import "fmt"

// Tape records nodes of one Graph during a forward pass so the same graph can
// be replayed with new leaf values instead of being rebuilt.
//
// The tape owns every node pushed to it: Clear and Reset release them.
// Update visits nodes in insertion order, so producers must be pushed before
// their consumers. Recording with Graph.StartRecording guarantees that.
//
// Usage:
//
//	tape := autodiff.NewTape(g)
//	_ = g.StartRecording(tape)
//	// ... build the loss from input leaves ...
//	tape.Compile() // stops recording, locks the tape
//	for _, sample := range data {
//	    // ... g.SetValue on the input leaves ...
//	    _ = tape.Update()
//	    _ = g.Backward(loss)
//	}
type Tape struct {
	g      *Graph
	nodes  []Node // recorded nodes, in insertion order
	locked bool   // set by Compile, cleared by Reset
}

// NewTape creates an open, empty tape bound to g. It panics if g is nil.
func NewTape(g *Graph) *Tape {
	if g == nil {
		panic("autodiff: NewTape: nil graph")
	}
	return &Tape{
		g:     g,
		nodes: make([]Node, 0, 64), // Pre-allocate for common case
	}
}

// Graph returns the graph the tape records.
func (t *Tape) Graph() *Graph {
	return t.g
}

// Push appends n to the tape.
func (t *Tape) Push(n Node) error {
	return t.PushMany(n)
}

// PushMany appends ns to the tape in order. Nothing is appended if the tape
// is locked or any handle is absent or stale.
func (t *Tape) PushMany(ns ...Node) error {
	if t.locked {
		return fmt.Errorf("autodiff: tape push: %w", ErrTapeLocked)
	}
	for _, n := range ns {
		if !t.g.Contains(n) {
			return invalidNode("tape push", "pushed", n)
		}
	}
	t.nodes = append(t.nodes, ns...)
	return nil
}

// Compile locks the tape against further pushes and ends any recording into
// it. Compiling a locked tape is a no-op.
func (t *Tape) Compile() {
	t.locked = true
	if t.g.tape == t {
		t.g.tape = nil
	}
}

// IsCompiled returns true if the tape is locked.
func (t *Tape) IsCompiled() bool {
	return t.locked
}

// Len returns the number of recorded nodes.
func (t *Tape) Len() int {
	return len(t.nodes)
}

// Nodes returns a copy of the recorded nodes in insertion order.
func (t *Tape) Nodes() []Node {
	out := make([]Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// First returns the first recorded node, false on an empty tape.
func (t *Tape) First() (Node, bool) {
	if len(t.nodes) == 0 {
		return Node{}, false
	}
	return t.nodes[0], true
}

// Last returns the most recently recorded node, false on an empty tape.
func (t *Tape) Last() (Node, bool) {
	if len(t.nodes) == 0 {
		return Node{}, false
	}
	return t.nodes[len(t.nodes)-1], true
}

// Get returns the node at index i.
func (t *Tape) Get(i int) (Node, error) {
	if i < 0 || i >= len(t.nodes) {
		return Node{}, fmt.Errorf("autodiff: tape get: %w: index %d, length %d", ErrOutOfBounds, i, len(t.nodes))
	}
	return t.nodes[i], nil
}

// Update refreshes every recorded node, in insertion order, with Graph.Update:
// derived values are recomputed from their parents' current values and all
// gradients are zeroed. The tape's membership and order are unchanged.
//
// Update is allowed on a locked tape. Every node and parent is validated
// before the first one is written.
func (t *Tape) Update() error {
	for _, n := range t.nodes {
		s, ok := t.g.lookup(n)
		if !ok {
			return invalidNode("tape update", "recorded", n)
		}
		for _, p := range s.v.Parents {
			if !p.IsZero() && !t.g.Contains(p) {
				return invalidNode("tape update", "parent", p)
			}
		}
	}
	for _, n := range t.nodes {
		if err := t.g.Update(n); err != nil {
			return err
		}
	}
	return nil
}

// Clear releases every recorded node and empties the tape. The lock state is
// preserved.
//
// Nodes that are no longer live (pushed twice, or released elsewhere) are
// skipped, so nothing is released twice.
func (t *Tape) Clear() {
	for _, n := range t.nodes {
		if t.g.Contains(n) {
			_ = t.g.Release(n) // cannot fail: n is live
		}
	}
	t.nodes = t.nodes[:0]
}

// Reset clears the tape and unlocks it.
func (t *Tape) Reset() {
	t.Clear()
	t.locked = false
}
