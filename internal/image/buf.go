// Package image provides DynamicImage, the host-side image buffer exchanged
// with a Transformation: a tightly packed (no row padding) pixel buffer in
// one of the two closed pixel.Type variants.
package image

import (
	"errors"
	"sync"

	"github.com/gogpu/imgxform/internal/pixel"
)

// Common errors for DynamicImage operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrInvalidFormat is returned when the variant is not recognized.
	ErrInvalidFormat = errors.New("image: invalid format")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("image: data buffer too small")

	// ErrOutOfBounds is returned when pixel coordinates are outside image bounds.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")

	// ErrWrongVariant is returned when a typed accessor is called against a
	// DynamicImage holding the other variant.
	ErrWrongVariant = errors.New("image: accessor does not match image variant")
)

// DynamicImage is a host-side pixel buffer holding either RGB8 or RGB32F
// pixels, tightly packed row-major with no pitch padding. Pitch is a
// device-buffer concept applied only when the data crosses into a device
// graph; the host representation stays tightly packed so ordinary Go slices
// and codecs can address it directly.
//
// DynamicImage is safe for concurrent reads; writes require external
// synchronization, same discipline as the teacher's ImageBuf.
type DynamicImage struct {
	mu      sync.RWMutex
	data    []byte
	width   int
	height  int
	variant Variant
}

// NewRGB8 creates a zero-filled DynamicImage of the given dimensions holding
// RGB8 pixels.
func NewRGB8(width, height int) (*DynamicImage, error) {
	return newDynamicImage(width, height, VariantRGB8)
}

// NewRGB32F creates a zero-filled DynamicImage of the given dimensions
// holding RGB32F pixels.
func NewRGB32F(width, height int) (*DynamicImage, error) {
	return newDynamicImage(width, height, VariantRGB32F)
}

func newDynamicImage(width, height int, v Variant) (*DynamicImage, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !v.IsValid() {
		return nil, ErrInvalidFormat
	}
	return &DynamicImage{
		data:    make([]byte, pixel.HostBufferSize(width, height, v.PixelType())),
		width:   width,
		height:  height,
		variant: v,
	}, nil
}

// FromRawRGB8 wraps existing tightly packed RGB8 pixel data without copying.
// The caller must not mutate data concurrently with the returned image.
func FromRawRGB8(data []byte, width, height int) (*DynamicImage, error) {
	return fromRaw(data, width, height, VariantRGB8)
}

// FromRawRGB32F wraps existing tightly packed RGB32F pixel data without
// copying. The caller must not mutate data concurrently with the returned
// image.
func FromRawRGB32F(data []byte, width, height int) (*DynamicImage, error) {
	return fromRaw(data, width, height, VariantRGB32F)
}

func fromRaw(data []byte, width, height int, v Variant) (*DynamicImage, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	want := pixel.HostBufferSize(width, height, v.PixelType())
	if len(data) < want {
		return nil, ErrDataTooSmall
	}
	return &DynamicImage{
		data:    data[:want],
		width:   width,
		height:  height,
		variant: v,
	}, nil
}

// Clone returns a deep copy of the image.
func (d *DynamicImage) Clone() *DynamicImage {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cp := make([]byte, len(d.data))
	copy(cp, d.data)
	return &DynamicImage{data: cp, width: d.width, height: d.height, variant: d.variant}
}

// Width returns the image width in pixels.
func (d *DynamicImage) Width() int { return d.width }

// Height returns the image height in pixels.
func (d *DynamicImage) Height() int { return d.height }

// Variant returns which pixel type the image stores.
func (d *DynamicImage) Variant() Variant { return d.variant }

// PixelType returns the pixel.Type corresponding to the image's variant.
func (d *DynamicImage) PixelType() pixel.Type { return d.variant.PixelType() }

// Bytes returns the raw tightly packed pixel data. Modifying the returned
// slice modifies the image.
func (d *DynamicImage) Bytes() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.data
}

func (d *DynamicImage) inBounds(x, y int) bool {
	return x >= 0 && x < d.width && y >= 0 && y < d.height
}

// GetRGB8 returns the pixel at (x, y). It returns ErrWrongVariant if the
// image does not hold RGB8 pixels, and ErrOutOfBounds if (x, y) is outside
// the image.
func (d *DynamicImage) GetRGB8(x, y int) (pixel.RGB8Pixel, error) {
	if d.variant != VariantRGB8 {
		return pixel.RGB8Pixel{}, ErrWrongVariant
	}
	if !d.inBounds(x, y) {
		return pixel.RGB8Pixel{}, ErrOutOfBounds
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return pixel.GetRGB8(d.data, d.width, x, y), nil
}

// SetRGB8 writes the pixel at (x, y). It returns ErrWrongVariant if the
// image does not hold RGB8 pixels, and ErrOutOfBounds if (x, y) is outside
// the image.
func (d *DynamicImage) SetRGB8(x, y int, p pixel.RGB8Pixel) error {
	if d.variant != VariantRGB8 {
		return ErrWrongVariant
	}
	if !d.inBounds(x, y) {
		return ErrOutOfBounds
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	pixel.PutRGB8(d.data, d.width, x, y, p)
	return nil
}

// GetRGB32F returns the pixel at (x, y). It returns ErrWrongVariant if the
// image does not hold RGB32F pixels, and ErrOutOfBounds if (x, y) is
// outside the image.
func (d *DynamicImage) GetRGB32F(x, y int) (pixel.RGBF32Pixel, error) {
	if d.variant != VariantRGB32F {
		return pixel.RGBF32Pixel{}, ErrWrongVariant
	}
	if !d.inBounds(x, y) {
		return pixel.RGBF32Pixel{}, ErrOutOfBounds
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return pixel.GetRGBF32(d.data, d.width, x, y), nil
}

// SetRGB32F writes the pixel at (x, y). It returns ErrWrongVariant if the
// image does not hold RGB32F pixels, and ErrOutOfBounds if (x, y) is
// outside the image.
func (d *DynamicImage) SetRGB32F(x, y int, p pixel.RGBF32Pixel) error {
	if d.variant != VariantRGB32F {
		return ErrWrongVariant
	}
	if !d.inBounds(x, y) {
		return ErrOutOfBounds
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	pixel.PutRGBF32(d.data, d.width, x, y, p)
	return nil
}

// ToRGB32F returns a new DynamicImage with every pixel converted from RGB8
// to RGB32F. It panics if the image does not hold RGB8 pixels; callers are
// expected to check Variant() first, mirroring the node-level type checks
// the dependency graph performs at build time.
func (d *DynamicImage) ToRGB32F() *DynamicImage {
	if d.variant != VariantRGB8 {
		panic("image: ToRGB32F requires an RGB8 image")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	out, _ := NewRGB32F(d.width, d.height)
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			p := pixel.GetRGB8(d.data, d.width, x, y)
			pixel.PutRGBF32(out.data, out.width, x, y, p.ToF32())
		}
	}
	return out
}

// ToRGB8 returns a new DynamicImage with every pixel converted from RGB32F
// to RGB8 via the saturating cast. It panics if the image does not hold
// RGB32F pixels.
func (d *DynamicImage) ToRGB8() *DynamicImage {
	if d.variant != VariantRGB32F {
		panic("image: ToRGB8 requires an RGB32F image")
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	out, _ := NewRGB8(d.width, d.height)
	for y := 0; y < d.height; y++ {
		for x := 0; x < d.width; x++ {
			p := pixel.GetRGBF32(d.data, d.width, x, y)
			pixel.PutRGB8(out.data, out.width, x, y, p.ToU8())
		}
	}
	return out
}
