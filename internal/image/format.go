// Package image implements DynamicImage: the host-side, tightly packed
// pixel buffer that the core reads input from and writes output to.
//
// This package corresponds to spec.md's "DynamicImage" collaborator: the
// core only ever sees the two closed variants below, produced or consumed
// by an on-disk codec that spec.md treats as an external, unspecified
// capability.
package image

import "github.com/gogpu/imgxform/internal/pixel"

// Variant identifies which pixel type a DynamicImage stores.
// This mirrors the two DynamicImage cases (ImageRgb8, ImageRgb32F) that
// spec.md §6 says are the only ones the core accepts.
type Variant uint8

const (
	// VariantRGB8 stores pixel.RGB8Pixel values.
	VariantRGB8 Variant = iota
	// VariantRGB32F stores pixel.RGBF32Pixel values.
	VariantRGB32F
)

// String implements fmt.Stringer.
func (v Variant) String() string {
	switch v {
	case VariantRGB8:
		return "RGB8"
	case VariantRGB32F:
		return "RGB32F"
	default:
		return "Unknown"
	}
}

// PixelType returns the pixel.Type corresponding to v.
func (v Variant) PixelType() pixel.Type {
	switch v {
	case VariantRGB8:
		return pixel.RGB8
	case VariantRGB32F:
		return pixel.RGBF32
	default:
		panic("image: invalid variant")
	}
}

// IsValid reports whether v is one of the closed set of variants.
func (v Variant) IsValid() bool {
	return v == VariantRGB8 || v == VariantRGB32F
}
