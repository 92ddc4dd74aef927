package autodiff

import (
	"fmt"

	"github.com/born-ml/raccoon/internal/autodiff/ops"
)

// Node is a handle to a variable stored in a Graph.
//
// Handles are plain values: copying one never copies the variable. The zero
// Node is the absent reference. A handle goes stale when its variable is
// released; every Graph method rejects stale handles with ErrInvalidArgument,
// so a released parent can never be read through a child.
type Node struct {
	index uint32
	gen   uint32 // 0 only for the zero Node
}

// IsZero reports whether n is the absent reference.
func (n Node) IsZero() bool {
	return n.gen == 0
}

// String returns "#index.generation", or "<nil>" for the zero Node.
func (n Node) String() string {
	if n.IsZero() {
		return "<nil>"
	}
	return fmt.Sprintf("#%d.%d", n.index, n.gen)
}

// Variable is a snapshot of a node's state.
//
// Leaves have Op == ops.None and no parents. Derived variables have a binary
// Op and two parents; their gradient rule is Op.Rule().
type Variable struct {
	Value   float64
	Grad    float64
	Op      ops.Kind
	Parents [2]Node
}

// IsLeaf reports whether v has no recorded provenance.
func (v Variable) IsLeaf() bool {
	return v.Op == ops.None
}

// hasParents reports whether both parent slots are filled.
func (v Variable) hasParents() bool {
	return !v.Parents[0].IsZero() && !v.Parents[1].IsZero()
}

type slot struct {
	v    Variable
	gen  uint32
	live bool
}
