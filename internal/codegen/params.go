// Package codegen synthesizes a complete WGSL device-source kernel for a
// single CDG operation, given its concrete buffer geometry and the user
// body text carried by the operation's kernel descriptor (spec.md C4).
// Every synthesis function here is pure: equal inputs must yield
// textually identical kernels, a prerequisite spec.md §4.4 states
// explicitly for deterministic build reuse (exercised by
// internal/devcompiler's content-hash compile cache).
package codegen

import (
	"fmt"

	"github.com/gogpu/imgxform/internal/graph"
	"github.com/gogpu/imgxform/internal/pixel"
)

// Block dimensions for the @workgroup_size attribute, shared with
// internal/graph so the two packages cannot disagree on block size
// (spec.md §3 invariant 3 is checked there; this package only consumes
// the constants).
const (
	BlockWidth  = graph.BlockWidth
	BlockHeight = graph.BlockHeight
)

// wgslPixelType returns the embedded support library's struct name for a
// pixel.Type (spec.md §6's device-source contract: "Rgb<T> arithmetic").
func wgslPixelType(t pixel.Type) string {
	switch t {
	case pixel.RGB8:
		return "Rgb<u8>"
	case pixel.RGBF32:
		return "Rgb<f32>"
	default:
		panic(fmt.Sprintf("codegen: unknown pixel type %v", t))
	}
}

// MapPixelParams is the concrete geometry and user body for a map_pixel
// kernel (spec.md §4.4).
type MapPixelParams struct {
	Width, Height      int
	InPitch, OutPitch  int
	InType, OutType    pixel.Type
	Body               string
}

// MapPatchParams is the concrete geometry, patch dimension, and user body
// for a map_patch kernel (spec.md §4.4).
type MapPatchParams struct {
	Width, Height     int
	InPitch, OutPitch int
	InType, OutType   pixel.Type
	Dimension         int
	Body              string
}

// MapImageParams is the concrete input/output geometry and user body for
// a map_image kernel (spec.md §4.4). Input and output geometry are
// independent (spec.md §4.1).
type MapImageParams struct {
	InWidth, InHeight   int
	InPitch             int
	OutWidth, OutHeight int
	OutPitch            int
	InType, OutType     pixel.Type
	Body                string
}

// FlipParams is the concrete geometry for a flip kernel (spec.md §4.4).
type FlipParams struct {
	Width, Height int
	Pitch         int
	PixelType     pixel.Type
}

// HConcatParams is the concrete geometry for an h_concat kernel (spec.md
// §4.4).
type HConcatParams struct {
	Height                        int
	LeftWidth, RightWidth         int
	LeftPitch, RightPitch         int
	OutPitch                      int
	PixelType                     pixel.Type
}

// VConcatParams is the concrete geometry for a v_concat kernel (spec.md
// §4.4).
type VConcatParams struct {
	Width                           int
	TopHeight, BottomHeight         int
	TopPitch, BottomPitch           int
	OutPitch                        int
	PixelType                       pixel.Type
}
