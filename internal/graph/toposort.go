package graph

// Toposort returns every node reachable from roots, ordered so that every
// dependency precedes its dependents, with each node appearing exactly
// once even when shared by multiple roots or operations (spec.md §4.1).
//
// Algorithm: iterative two-mark DFS, exactly as spec.md §4.1 prescribes.
// Each node has two marks, seen (first visit) and emitted (finished). On
// first pop of a node: if not seen, mark seen, push the node again, then
// push its dependencies. On a later pop: if not emitted, mark emitted and
// append to the result. Order among equally-ranked siblings is
// unspecified but deterministic within a run (it follows dependency
// declaration order).
func Toposort(roots []Node) []Node {
	seen := make(map[Node]bool)
	emitted := make(map[Node]bool)
	result := make([]Node, 0)

	stack := make([]Node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !seen[n] {
			seen[n] = true
			stack = append(stack, n)
			deps := n.deps()
			for i := len(deps) - 1; i >= 0; i-- {
				stack = append(stack, deps[i])
			}
			continue
		}
		if !emitted[n] {
			emitted[n] = true
			result = append(result, n)
		}
	}

	return result
}
