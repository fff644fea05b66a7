package kernelsrc

import (
	"testing"

	"github.com/gogpu/imgxform/internal/pixel"
)

func TestTypeOf(t *testing.T) {
	if got := TypeOf[pixel.RGB8Pixel](); got != pixel.RGB8 {
		t.Errorf("TypeOf[RGB8Pixel] = %v, want RGB8", got)
	}
	if got := TypeOf[pixel.RGBF32Pixel](); got != pixel.RGBF32 {
		t.Errorf("TypeOf[RGBF32Pixel] = %v, want RGBF32", got)
	}
}

func TestNewMapPixelKernelEmptySource(t *testing.T) {
	_, err := NewMapPixelKernel[pixel.RGB8Pixel, pixel.RGBF32Pixel]("", nil)
	if err != ErrEmptySource {
		t.Errorf("err = %v, want ErrEmptySource", err)
	}
}

func TestMapPixelKernelTypes(t *testing.T) {
	k, err := NewMapPixelKernel[pixel.RGB8Pixel, pixel.RGBF32Pixel](
		"return to_f32(in);",
		func(in pixel.RGB8Pixel) pixel.RGBF32Pixel { return in.ToF32() },
	)
	if err != nil {
		t.Fatalf("NewMapPixelKernel: %v", err)
	}
	if k.InType() != pixel.RGB8 {
		t.Errorf("InType() = %v, want RGB8", k.InType())
	}
	if k.OutType() != pixel.RGBF32 {
		t.Errorf("OutType() = %v, want RGBF32", k.OutType())
	}
	got := k.Eval(pixel.RGB8Pixel{R: 255, G: 0, B: 0})
	want := pixel.RGBF32Pixel{R: 1, G: 0, B: 0}
	if got != want {
		t.Errorf("Eval = %+v, want %+v", got, want)
	}
}

func TestNewMapPatchKernelValidation(t *testing.T) {
	if _, err := NewMapPatchKernel[pixel.RGB8Pixel, pixel.RGB8Pixel](2, "body", nil); err != ErrInvalidPatchDimension {
		t.Errorf("even dimension err = %v, want ErrInvalidPatchDimension", err)
	}
	if _, err := NewMapPatchKernel[pixel.RGB8Pixel, pixel.RGB8Pixel](3, "", nil); err != ErrEmptySource {
		t.Errorf("empty source err = %v, want ErrEmptySource", err)
	}
	k, err := NewMapPatchKernel[pixel.RGB8Pixel, pixel.RGB8Pixel](3, "body", nil)
	if err != nil {
		t.Fatalf("NewMapPatchKernel: %v", err)
	}
	if k.Dimension != 3 {
		t.Errorf("Dimension = %d, want 3", k.Dimension)
	}
}

func TestPatchZeroPadding(t *testing.T) {
	data := []pixel.RGB8Pixel{
		{R: 1}, {R: 2}, {R: 3},
		{R: 4}, {R: 5}, {R: 6},
		{R: 7}, {R: 8}, {R: 9},
	}
	img := NewImage[pixel.RGB8Pixel](data, 3, 3)

	p := NewPatch[pixel.RGB8Pixel](img, 0, 0, 3)
	if p.Get(1, 1) != (pixel.RGB8Pixel{R: 1}) {
		t.Errorf("center = %+v, want R:1", p.Get(1, 1))
	}
	if p.Get(0, 0) != (pixel.RGB8Pixel{}) {
		t.Errorf("out-of-image corner = %+v, want zero value", p.Get(0, 0))
	}
	if p.Get(2, 2) != (pixel.RGB8Pixel{R: 5}) {
		t.Errorf("bottom-right = %+v, want R:5 (center of image)", p.Get(2, 2))
	}
}

func TestImageGetWidthHeight(t *testing.T) {
	data := []pixel.RGBF32Pixel{{R: 0.1}, {R: 0.2}, {R: 0.3}, {R: 0.4}}
	img := NewImage[pixel.RGBF32Pixel](data, 2, 2)
	if img.Width() != 2 || img.Height() != 2 {
		t.Fatalf("dims = %dx%d, want 2x2", img.Width(), img.Height())
	}
	if img.Get(1, 1) != (pixel.RGBF32Pixel{R: 0.4}) {
		t.Errorf("Get(1,1) = %+v, want R:0.4", img.Get(1, 1))
	}
}
