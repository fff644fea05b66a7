package image

import (
	"testing"

	"github.com/gogpu/imgxform/internal/pixel"
)

func TestNewRGB8InvalidDimensions(t *testing.T) {
	if _, err := NewRGB8(0, 4); err != ErrInvalidDimensions {
		t.Errorf("NewRGB8(0,4) err = %v, want ErrInvalidDimensions", err)
	}
	if _, err := NewRGB8(4, -1); err != ErrInvalidDimensions {
		t.Errorf("NewRGB8(4,-1) err = %v, want ErrInvalidDimensions", err)
	}
}

func TestRGB8GetSetRoundTrip(t *testing.T) {
	img, err := NewRGB8(4, 3)
	if err != nil {
		t.Fatalf("NewRGB8: %v", err)
	}
	p := pixel.RGB8Pixel{R: 10, G: 20, B: 30}
	if err := img.SetRGB8(2, 1, p); err != nil {
		t.Fatalf("SetRGB8: %v", err)
	}
	got, err := img.GetRGB8(2, 1)
	if err != nil {
		t.Fatalf("GetRGB8: %v", err)
	}
	if got != p {
		t.Errorf("GetRGB8 = %+v, want %+v", got, p)
	}
}

func TestRGB8OutOfBounds(t *testing.T) {
	img, _ := NewRGB8(2, 2)
	if _, err := img.GetRGB8(2, 0); err != ErrOutOfBounds {
		t.Errorf("GetRGB8 out of bounds err = %v, want ErrOutOfBounds", err)
	}
	if err := img.SetRGB8(-1, 0, pixel.RGB8Pixel{}); err != ErrOutOfBounds {
		t.Errorf("SetRGB8 out of bounds err = %v, want ErrOutOfBounds", err)
	}
}

func TestWrongVariantAccessors(t *testing.T) {
	img, _ := NewRGB8(2, 2)
	if _, err := img.GetRGB32F(0, 0); err != ErrWrongVariant {
		t.Errorf("GetRGB32F on RGB8 image err = %v, want ErrWrongVariant", err)
	}
	f, _ := NewRGB32F(2, 2)
	if _, err := f.GetRGB8(0, 0); err != ErrWrongVariant {
		t.Errorf("GetRGB8 on RGB32F image err = %v, want ErrWrongVariant", err)
	}
}

func TestRGB32FGetSetRoundTrip(t *testing.T) {
	img, err := NewRGB32F(3, 3)
	if err != nil {
		t.Fatalf("NewRGB32F: %v", err)
	}
	p := pixel.RGBF32Pixel{R: 0.1, G: 0.2, B: 0.3}
	if err := img.SetRGB32F(1, 1, p); err != nil {
		t.Fatalf("SetRGB32F: %v", err)
	}
	got, err := img.GetRGB32F(1, 1)
	if err != nil {
		t.Fatalf("GetRGB32F: %v", err)
	}
	if got != p {
		t.Errorf("GetRGB32F = %+v, want %+v", got, p)
	}
}

func TestToRGB32FAndBack(t *testing.T) {
	img, _ := NewRGB8(2, 2)
	for c := uint8(0); c < 4; c++ {
		_ = img.SetRGB8(int(c%2), int(c/2), pixel.RGB8Pixel{R: c * 50, G: c * 50, B: c * 50})
	}
	f32 := img.ToRGB32F()
	if f32.Variant() != VariantRGB32F {
		t.Fatalf("ToRGB32F variant = %v, want RGB32F", f32.Variant())
	}
	back := f32.ToRGB8()
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			want, _ := img.GetRGB8(x, y)
			got, _ := back.GetRGB8(x, y)
			if got != want {
				t.Errorf("(%d,%d) round trip = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestClone(t *testing.T) {
	img, _ := NewRGB8(2, 2)
	_ = img.SetRGB8(0, 0, pixel.RGB8Pixel{R: 1, G: 2, B: 3})
	cp := img.Clone()
	_ = img.SetRGB8(0, 0, pixel.RGB8Pixel{R: 9, G: 9, B: 9})
	got, _ := cp.GetRGB8(0, 0)
	if got != (pixel.RGB8Pixel{R: 1, G: 2, B: 3}) {
		t.Errorf("clone was affected by mutation of original: %+v", got)
	}
}

func TestFromRawTooSmall(t *testing.T) {
	if _, err := FromRawRGB8(make([]byte, 2), 2, 2); err != ErrDataTooSmall {
		t.Errorf("FromRawRGB8 short buffer err = %v, want ErrDataTooSmall", err)
	}
}
