package pixel

import (
	"encoding/binary"
	"math"
)

// HostBufferSize returns the size in bytes of a tightly packed (no pitch)
// host-side buffer for an image of the given width/height/type.
func HostBufferSize(width, height int, t Type) int {
	return width * height * t.Layout().Size
}

// PutRGB8 writes an RGB8Pixel at (col,row) into a tightly packed host
// buffer, little-endian.
func PutRGB8(buf []byte, width, col, row int, p RGB8Pixel) {
	off := (row*width + col) * 3
	buf[off+0] = p.R
	buf[off+1] = p.G
	buf[off+2] = p.B
}

// GetRGB8 reads an RGB8Pixel at (col,row) from a tightly packed host buffer.
func GetRGB8(buf []byte, width, col, row int) RGB8Pixel {
	off := (row*width + col) * 3
	return RGB8Pixel{R: buf[off+0], G: buf[off+1], B: buf[off+2]}
}

// PutRGBF32 writes a RGBF32Pixel at (col,row) into a tightly packed host
// buffer, little-endian IEEE-754.
func PutRGBF32(buf []byte, width, col, row int, p RGBF32Pixel) {
	off := (row*width + col) * 12
	binary.LittleEndian.PutUint32(buf[off+0:], math.Float32bits(p.R))
	binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(p.G))
	binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(p.B))
}

// GetRGBF32 reads a RGBF32Pixel at (col,row) from a tightly packed host buffer.
func GetRGBF32(buf []byte, width, col, row int) RGBF32Pixel {
	off := (row*width + col) * 12
	return RGBF32Pixel{
		R: math.Float32frombits(binary.LittleEndian.Uint32(buf[off+0:])),
		G: math.Float32frombits(binary.LittleEndian.Uint32(buf[off+4:])),
		B: math.Float32frombits(binary.LittleEndian.Uint32(buf[off+8:])),
	}
}
