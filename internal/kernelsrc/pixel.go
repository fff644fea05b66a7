// Package kernelsrc implements the kernel descriptor model (spec.md C2):
// opaque carriers of a user-supplied kernel body's source text, generic
// over the input/output pixel types at construction time but erasing to
// the closed pixel.Type enum once attached to a dependency-graph node.
//
// A real device-source compiler captures a kernel body as text written in
// the device-source language (WGSL here, per SPEC_FULL.md §2). Go has no
// macro or preprocessor facility to snapshot a function's own source text,
// so the kernel authoring surface asks the caller to supply that text
// directly alongside a Go closure with equivalent semantics; the closure
// is what internal/devgraph's CPU/software adapter and this package's own
// tests execute, while the source text is what internal/codegen embeds
// into the synthesized kernel and internal/devcompiler compiles. Both
// views of the same kernel body are carried on every descriptor.
package kernelsrc

import "github.com/gogpu/imgxform/internal/pixel"

// Pixel is the type-set constraint satisfied by the two concrete pixel
// value types the CDG understands. Kernel descriptors are generic over
// this constraint so the Go compiler enforces input/output pixel-type
// agreement at construction time.
type Pixel interface {
	pixel.RGB8Pixel | pixel.RGBF32Pixel
}

// TypeOf returns the pixel.Type corresponding to the generic parameter P.
// This is the erasure point spec.md §3 describes: "the pixel type is a
// value, not a generic parameter, inside the CDG; user-facing nodes carry
// a compile-time pixel marker that erases into this enum upon insertion."
func TypeOf[P Pixel]() pixel.Type {
	var zero P
	switch any(zero).(type) {
	case pixel.RGB8Pixel:
		return pixel.RGB8
	case pixel.RGBF32Pixel:
		return pixel.RGBF32
	default:
		panic("kernelsrc: unreachable pixel type")
	}
}
