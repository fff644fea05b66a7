package kernelsrc

import (
	"errors"

	"github.com/gogpu/imgxform/internal/pixel"
)

// ErrEmptySource is returned by the kernel constructors when the supplied
// device-source body text is empty; spec.md §6 requires the captured text
// to be "a syntactically valid function body", and an empty string can
// never satisfy that.
var ErrEmptySource = errors.New("kernelsrc: source body must not be empty")

// MapPixelKernel carries a per-pixel operation: source text of a device
// function body mapping one input pixel to one output pixel (spec.md
// §4.3, §4.4 "map_pixel"), plus a Go closure with equivalent semantics.
type MapPixelKernel[In, Out Pixel] struct {
	// Source is the device-source (WGSL) function body text, e.g.
	// "return Out(f32(in.r)/255.0, f32(in.g)/255.0, f32(in.b)/255.0);"
	// for an RGB8->RGBF32 conversion kernel.
	Source string

	// Eval is the CPU-executable equivalent of Source, called once per
	// pixel by internal/devgraph's software adapter.
	Eval func(in In) Out
}

// NewMapPixelKernel constructs a MapPixelKernel, validating that Source is
// non-empty.
func NewMapPixelKernel[In, Out Pixel](source string, eval func(In) Out) (*MapPixelKernel[In, Out], error) {
	if source == "" {
		return nil, ErrEmptySource
	}
	return &MapPixelKernel[In, Out]{Source: source, Eval: eval}, nil
}

// InType returns the pixel.Type of the kernel's input.
func (k *MapPixelKernel[In, Out]) InType() pixel.Type { return TypeOf[In]() }

// OutType returns the pixel.Type of the kernel's output.
func (k *MapPixelKernel[In, Out]) OutType() pixel.Type { return TypeOf[Out]() }

// MapPatchKernel carries a patch operation: source text of a device
// function body mapping a Dimension x Dimension neighborhood to one output
// pixel (spec.md §4.3, §4.4 "map_patch"), plus a Go closure with
// equivalent semantics.
type MapPatchKernel[In, Out Pixel] struct {
	// Dimension is the neighborhood side length; must be odd and >= 1
	// (spec.md §3 invariant 3). Validated by NewMapPatchKernel.
	Dimension int

	// Source is the device-source function body text operating on a
	// Patch<Dimension,In> view.
	Source string

	// Eval is the CPU-executable equivalent of Source.
	Eval func(p Patch[In]) Out
}

// ErrInvalidPatchDimension is returned when Dimension is not odd and >= 1.
var ErrInvalidPatchDimension = errors.New("kernelsrc: patch dimension must be odd and >= 1")

// NewMapPatchKernel constructs a MapPatchKernel, validating Source and
// Dimension.
func NewMapPatchKernel[In, Out Pixel](dimension int, source string, eval func(Patch[In]) Out) (*MapPatchKernel[In, Out], error) {
	if source == "" {
		return nil, ErrEmptySource
	}
	if dimension < 1 || dimension%2 == 0 {
		return nil, ErrInvalidPatchDimension
	}
	return &MapPatchKernel[In, Out]{Dimension: dimension, Source: source, Eval: eval}, nil
}

// InType returns the pixel.Type of the kernel's input.
func (k *MapPatchKernel[In, Out]) InType() pixel.Type { return TypeOf[In]() }

// OutType returns the pixel.Type of the kernel's output.
func (k *MapPatchKernel[In, Out]) OutType() pixel.Type { return TypeOf[Out]() }

// MapImageKernel carries a whole-image operation: source text of a device
// function body that receives the entire input image plus the output
// coordinate (spec.md §4.3, §4.4 "map_image"), plus a Go closure with
// equivalent semantics. Declared output geometry is decoupled from input
// geometry (spec.md §4.1).
type MapImageKernel[In, Out Pixel] struct {
	// Source is the device-source function body text operating on an
	// Image<In> view plus (col,row) indices.
	Source string

	// Eval is the CPU-executable equivalent of Source.
	Eval func(img Image[In], col, row int) Out
}

// NewMapImageKernel constructs a MapImageKernel, validating that Source is
// non-empty.
func NewMapImageKernel[In, Out Pixel](source string, eval func(Image[In], int, int) Out) (*MapImageKernel[In, Out], error) {
	if source == "" {
		return nil, ErrEmptySource
	}
	return &MapImageKernel[In, Out]{Source: source, Eval: eval}, nil
}

// InType returns the pixel.Type of the kernel's input.
func (k *MapImageKernel[In, Out]) InType() pixel.Type { return TypeOf[In]() }

// OutType returns the pixel.Type of the kernel's output.
func (k *MapImageKernel[In, Out]) OutType() pixel.Type { return TypeOf[Out]() }
