package pixel

// RGB8Pixel is a packed little-endian 3-channel uint8 pixel value.
type RGB8Pixel struct {
	R, G, B uint8
}

// RGBF32Pixel is a packed little-endian 3-channel float32 pixel value.
type RGBF32Pixel struct {
	R, G, B float32
}

// ToF32 converts a RGB8Pixel to RGBF32Pixel.
// Each channel maps [0,255] -> [0,1] by dividing by 255.
func (p RGB8Pixel) ToF32() RGBF32Pixel {
	return RGBF32Pixel{
		R: float32(p.R) / 255.0,
		G: float32(p.G) / 255.0,
		B: float32(p.B) / 255.0,
	}
}

// ToU8 converts a RGBF32Pixel to RGB8Pixel.
// Each channel is scaled by 255, clamped to [0,255], then truncated to
// uint8 -- the canonical saturating cast spec.md §4.2 requires.
func (p RGBF32Pixel) ToU8() RGB8Pixel {
	return RGB8Pixel{
		R: saturateToU8(p.R * 255.0),
		G: saturateToU8(p.G * 255.0),
		B: saturateToU8(p.B * 255.0),
	}
}

func saturateToU8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
