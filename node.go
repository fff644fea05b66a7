package imgxform

import (
	"github.com/gogpu/imgxform/internal/graph"
	"github.com/gogpu/imgxform/internal/kernelsrc"
)

// Pixel is the type-set constraint satisfied by a Node's compile-time
// pixel marker. It is a re-export of internal/kernelsrc's constraint so
// callers building graphs never need to import an internal package.
type Pixel = kernelsrc.Pixel

// Node is a typed handle onto one vertex of the dependency graph being
// built (spec.md C3, generic front end over internal/graph.Node). The
// pixel type parameter exists only at the Go type-checker level: every
// Node erases to a graph.Node carrying a pixel.Type value the moment it
// is constructed, so two Node[P] values produced from the same
// constructor call share the same underlying graph.Node pointer and are
// toposorted as one vertex (spec.md §4.1's sharing rule).
type Node[P Pixel] struct {
	n graph.Node
}

// NewInput declares a named input of the given dimensions and pixel type.
// Transformation.New keys input buffers by Name without checking for
// duplicates, so when several inputs share a Name only the one visited
// last receives the image supplied at Call time; the others read as zero.
func NewInput[P Pixel](name string, width, height int) (Node[P], error) {
	n, err := graph.NewInput(name, width, height, kernelsrc.TypeOf[P]())
	if err != nil {
		return Node[P]{}, wrapInvariant("input", err)
	}
	return Node[P]{n: n}, nil
}

// MapPixel applies a per-pixel kernel to dep (spec.md §4.4 "map_pixel").
func MapPixel[In, Out Pixel](dep Node[In], kernel *kernelsrc.MapPixelKernel[In, Out]) Node[Out] {
	n := graph.NewMapPixel(dep.n, kernel.Source, kernel.Erase(), kernelsrc.TypeOf[Out]())
	return Node[Out]{n: n}
}

// MapPatch applies a patch kernel to dep (spec.md §4.4 "map_patch"),
// reading a Dimension x Dimension neighborhood per output pixel.
func MapPatch[In, Out Pixel](dep Node[In], kernel *kernelsrc.MapPatchKernel[In, Out]) (Node[Out], error) {
	n, err := graph.NewMapPatch(dep.n, kernel.Dimension, kernel.Source, kernel.Erase(), kernelsrc.TypeOf[Out]())
	if err != nil {
		return Node[Out]{}, wrapInvariant("map_patch", err)
	}
	return Node[Out]{n: n}, nil
}

// MapImage applies a whole-image kernel to dep, declaring an output
// geometry independent of dep's (spec.md §4.4 "map_image", §4.1).
func MapImage[In, Out Pixel](dep Node[In], outWidth, outHeight int, kernel *kernelsrc.MapImageKernel[In, Out]) (Node[Out], error) {
	n, err := graph.NewMapImage(dep.n, outWidth, outHeight, kernel.Source, kernel.Erase(), kernelsrc.TypeOf[Out]())
	if err != nil {
		return Node[Out]{}, wrapInvariant("map_image", err)
	}
	return Node[Out]{n: n}, nil
}

// Flip reverses dep along both axes (spec.md §4.4 "flip").
func Flip[P Pixel](dep Node[P]) Node[P] {
	return Node[P]{n: graph.NewFlip(dep.n)}
}

// HConcat places left and right side by side (spec.md §4.4 "h_concat").
// left and right must have equal height (spec.md §3 invariant 1).
func HConcat[P Pixel](left, right Node[P]) (Node[P], error) {
	n, err := graph.NewHConcat(left.n, right.n)
	if err != nil {
		return Node[P]{}, wrapInvariant("h_concat", err)
	}
	return Node[P]{n: n}, nil
}

// VConcat stacks top above bottom (spec.md §4.4 "v_concat"). top and
// bottom must have equal width (spec.md §3 invariant 2).
func VConcat[P Pixel](top, bottom Node[P]) (Node[P], error) {
	n, err := graph.NewVConcat(top.n, bottom.n)
	if err != nil {
		return Node[P]{}, wrapInvariant("v_concat", err)
	}
	return Node[P]{n: n}, nil
}

// Width returns the node's derived width in pixels.
func (n Node[P]) Width() int { return n.n.Width() }

// Height returns the node's derived height in pixels.
func (n Node[P]) Height() int { return n.n.Height() }

// IntoOutput registers n as a named output of the Transformation it is
// eventually compiled into (spec.md §4.5 "output registration"). The same
// underlying node may be registered under more than one name; each
// registration gets its own device-to-host copy.
func (n Node[P]) IntoOutput(name string) Output {
	return Output{name: name, node: n.n}
}
