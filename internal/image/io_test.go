package image

import (
	"bytes"
	"testing"

	"github.com/gogpu/imgxform/internal/pixel"
)

func TestPNGRoundTrip(t *testing.T) {
	img, err := NewRGB8(6, 4)
	if err != nil {
		t.Fatalf("NewRGB8: %v", err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			_ = img.SetRGB8(x, y, pixel.RGB8Pixel{
				R: uint8((x * 40) % 256),
				G: uint8((y * 60) % 256),
				B: uint8((x + y) * 10 % 256),
			})
		}
	}

	var buf bytes.Buffer
	if err := img.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}

	decoded, err := DecodePNG(&buf)
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if decoded.Width() != img.Width() || decoded.Height() != img.Height() {
		t.Fatalf("decoded dims = %dx%d, want %dx%d", decoded.Width(), decoded.Height(), img.Width(), img.Height())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			want, _ := img.GetRGB8(x, y)
			got, _ := decoded.GetRGB8(x, y)
			if got != want {
				t.Errorf("(%d,%d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestEncodePNGWrongVariant(t *testing.T) {
	f, _ := NewRGB32F(2, 2)
	var buf bytes.Buffer
	if err := f.EncodePNG(&buf); err != ErrWrongVariant {
		t.Errorf("EncodePNG on RGB32F err = %v, want ErrWrongVariant", err)
	}
}

func TestF32IRoundTrip(t *testing.T) {
	img, err := NewRGB32F(5, 3)
	if err != nil {
		t.Fatalf("NewRGB32F: %v", err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			_ = img.SetRGB32F(x, y, pixel.RGBF32Pixel{
				R: float32(x) / 5,
				G: float32(y) / 3,
				B: float32(x+y) / 8,
			})
		}
	}

	var buf bytes.Buffer
	if err := img.EncodeF32I(&buf); err != nil {
		t.Fatalf("EncodeF32I: %v", err)
	}

	decoded, err := DecodeF32I(&buf)
	if err != nil {
		t.Fatalf("DecodeF32I: %v", err)
	}
	if decoded.Width() != 5 || decoded.Height() != 3 {
		t.Fatalf("decoded dims = %dx%d, want 5x3", decoded.Width(), decoded.Height())
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			want, _ := img.GetRGB32F(x, y)
			got, _ := decoded.GetRGB32F(x, y)
			if got != want {
				t.Errorf("(%d,%d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestDecodeF32IBadMagic(t *testing.T) {
	bad := bytes.NewReader([]byte("XXXX\x0100000000pixels"))
	if _, err := DecodeF32I(bad); err != ErrBadContainer {
		t.Errorf("DecodeF32I bad magic err = %v, want ErrBadContainer", err)
	}
}

func TestEncodeF32IWrongVariant(t *testing.T) {
	img, _ := NewRGB8(2, 2)
	var buf bytes.Buffer
	if err := img.EncodeF32I(&buf); err != ErrWrongVariant {
		t.Errorf("EncodeF32I on RGB8 err = %v, want ErrWrongVariant", err)
	}
}
