package image

import (
	"testing"

	"github.com/gogpu/imgxform/internal/pixel"
)

func TestVariantPixelType(t *testing.T) {
	tests := []struct {
		v    Variant
		want pixel.Type
	}{
		{VariantRGB8, pixel.RGB8},
		{VariantRGB32F, pixel.RGBF32},
	}
	for _, tt := range tests {
		if got := tt.v.PixelType(); got != tt.want {
			t.Errorf("%v.PixelType() = %v, want %v", tt.v, got, tt.want)
		}
		if !tt.v.IsValid() {
			t.Errorf("%v.IsValid() = false, want true", tt.v)
		}
	}
}

func TestVariantString(t *testing.T) {
	if VariantRGB8.String() != "RGB8" {
		t.Errorf("VariantRGB8.String() = %q, want RGB8", VariantRGB8.String())
	}
	if VariantRGB32F.String() != "RGB32F" {
		t.Errorf("VariantRGB32F.String() = %q, want RGB32F", VariantRGB32F.String())
	}
}

func TestVariantInvalid(t *testing.T) {
	var v Variant = 99
	if v.IsValid() {
		t.Errorf("Variant(99).IsValid() = true, want false")
	}
}
