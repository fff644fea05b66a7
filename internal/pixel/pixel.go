// Package pixel implements the typed pixel model: the closed PixelType
// enumeration, its device layout, and host<->device marshaling.
package pixel

import "fmt"

// Type is the closed enumeration of pixel kinds the core understands.
// It is a value, not a generic parameter, inside the dependency graph;
// user-facing generic markers erase into this enum on insertion.
type Type uint8

const (
	// RGB8 packs three uint8 channels, 3 bytes, alignment 1.
	RGB8 Type = iota
	// RGBF32 packs three float32 channels, 12 bytes, alignment 4.
	RGBF32
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case RGB8:
		return "RGB8"
	case RGBF32:
		return "RGBF32"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Layout describes the device storage footprint of a pixel type.
type Layout struct {
	Size  int // bytes per pixel
	Align int // required alignment in bytes
}

// Layout returns the device storage layout for t.
func (t Type) Layout() Layout {
	switch t {
	case RGB8:
		return Layout{Size: 3, Align: 1}
	case RGBF32:
		return Layout{Size: 12, Align: 4}
	default:
		panic(fmt.Sprintf("pixel: unknown type %d", uint8(t)))
	}
}

// Valid reports whether t is one of the closed set of pixel types.
func (t Type) Valid() bool {
	return t == RGB8 || t == RGBF32
}

// Pitch returns the row stride in bytes for an image of the given width in
// this pixel type, rounded up to alignment. alignment must be > 0.
func (t Type) Pitch(width, alignment int) int {
	rowBytes := width * t.Layout().Size
	if alignment <= 1 {
		return rowBytes
	}
	return ((rowBytes + alignment - 1) / alignment) * alignment
}
