package autodiff

// Backward computes gradients of root with respect to every node it depends on.
//
// Algorithm:
//  1. Order the reachable nodes with TopologicalOrder (consumers first)
//  2. Seed root's gradient with 1
//  3. For each derived node, apply its gradient rule, accumulating (+=) into
//     both parents
//
// Gradients accumulate across calls; clear them with ZeroGrad between steps.
// The whole reachable set is validated before anything is written.
func (g *Graph) Backward(root Node) error {
	order, err := g.TopologicalOrder(root)
	if err != nil {
		return err
	}

	g.slots[root.index].v.Grad = 1

	for _, n := range order {
		out := &g.slots[n.index].v
		rule := out.Op.Rule()
		if rule == nil || !out.hasParents() {
			continue
		}
		lhs := &g.slots[out.Parents[0].index].v
		rhs := &g.slots[out.Parents[1].index].v
		gradLhs, gradRhs := rule(lhs.Value, rhs.Value, out.Grad)
		lhs.Grad += gradLhs
		rhs.Grad += gradRhs
	}
	return nil
}

// ZeroGrad sets the gradient of root and of every node it depends on to 0.
func (g *Graph) ZeroGrad(root Node) error {
	nodes, err := g.DependencyList(root)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		g.slots[n.index].v.Grad = 0
	}
	return nil
}
