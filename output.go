package imgxform

import "github.com/gogpu/imgxform/internal/graph"

// Output names one graph node as a Transformation result (spec.md §4.5).
// Constructed via Node[P].IntoOutput, never directly.
type Output struct {
	name string
	node graph.Node
}

// Name returns the output's registered name.
func (o Output) Name() string { return o.name }
