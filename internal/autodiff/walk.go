package autodiff

import "fmt"

// Visitation states for TopologicalOrder.
const (
	white = iota // not yet seen
	gray         // on the current DFS path
	black        // finished
)

// DependencyList returns every node reachable from root through parent links,
// each exactly once, in first-discovery order: root, then the unvisited part
// of parent 0's subtree, then that of parent 1's.
//
// The order suits sweeps that touch every node once (ZeroGrad). It is not a
// valid backward order for graphs where a node is reached along two paths;
// Backward uses TopologicalOrder.
func (g *Graph) DependencyList(root Node) ([]Node, error) {
	if !g.Contains(root) {
		return nil, invalidNode("dependency list", "root", root)
	}

	seen := make(map[Node]struct{})
	order := make([]Node, 0, 16)
	stack := []Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[n]; ok {
			continue
		}
		s, ok := g.lookup(n)
		if !ok {
			return nil, invalidNode("dependency list", "parent", n)
		}
		seen[n] = struct{}{}
		order = append(order, n)

		// Push parent 1 first so parent 0's subtree is explored first.
		for i := len(s.v.Parents) - 1; i >= 0; i-- {
			if p := s.v.Parents[i]; !p.IsZero() {
				stack = append(stack, p)
			}
		}
	}
	return order, nil
}

// TopologicalOrder returns the nodes reachable from root so that every node
// comes before all of its parents (reverse DFS post-order). Running gradient
// rules in this order finishes accumulating a node's gradient from all of its
// consumers before the node propagates it further.
//
// If a cycle is reachable, ErrCycleDetected is returned.
func (g *Graph) TopologicalOrder(root Node) ([]Node, error) {
	if !g.Contains(root) {
		return nil, invalidNode("topological order", "root", root)
	}

	type frame struct {
		n    Node
		next int // next parent slot to explore
	}

	state := make(map[Node]int)
	post := make([]Node, 0, 16)
	stack := []frame{{n: root}}
	state[root] = gray

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		s, ok := g.lookup(top.n)
		if !ok {
			return nil, invalidNode("topological order", "parent", top.n)
		}
		if top.next == len(s.v.Parents) {
			state[top.n] = black
			post = append(post, top.n)
			stack = stack[:len(stack)-1]
			continue
		}

		p := s.v.Parents[top.next]
		top.next++
		if p.IsZero() {
			continue
		}
		switch state[p] {
		case gray:
			return nil, fmt.Errorf("autodiff: topological order: %w at %v", ErrCycleDetected, p)
		case black:
			continue
		}
		state[p] = gray
		stack = append(stack, frame{n: p})
	}

	// Reverse post-order
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post, nil
}
