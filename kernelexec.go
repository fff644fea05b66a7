package imgxform

import (
	"github.com/gogpu/imgxform/internal/devgraph"
	"github.com/gogpu/imgxform/internal/kernelsrc"
	"github.com/gogpu/imgxform/internal/pixel"
)

// This file bridges a kernel's type-erased Go closure (kernelsrc.PixelApplier
// / kernelsrc.ImageApplier) and the canonical device pitch layout
// (SPEC_FULL.md §5: row*pitch + col*pixel_size) into a devgraph.KernelFunc
// the CPU software adapter can run. Every function here processes the whole
// bound region in one call, matching the contract devgraph.KernelFunc
// documents: the CPU adapter ignores grid/workgroup counts entirely.

func rowOffset(row, pitch int) int { return row * pitch }

// pitchedToTight copies a pitched device-layout buffer into a tightly
// packed one, dropping any row padding.
func pitchedToTight(buf []byte, width, height, pitch, pixelSize int) []byte {
	rowBytes := width * pixelSize
	out := make([]byte, rowBytes*height)
	for row := 0; row < height; row++ {
		src := buf[rowOffset(row, pitch) : rowOffset(row, pitch)+rowBytes]
		copy(out[row*rowBytes:(row+1)*rowBytes], src)
	}
	return out
}

// tightToPitched copies a tightly packed host buffer into a freshly
// allocated pitched device-layout buffer.
func tightToPitched(buf []byte, width, height, pitch, pixelSize int) []byte {
	rowBytes := width * pixelSize
	out := make([]byte, pitch*height)
	for row := 0; row < height; row++ {
		src := buf[row*rowBytes : (row+1)*rowBytes]
		copy(out[rowOffset(row, pitch):rowOffset(row, pitch)+rowBytes], src)
	}
	return out
}

// erasedImageFromPitched builds a tightly packed kernelsrc.ErasedImage view
// over a pitched device buffer, the form map_patch/map_image appliers
// expect (see internal/kernelsrc/erase.go).
func erasedImageFromPitched(buf []byte, width, height, pitch int, pt pixel.Type) kernelsrc.ErasedImage {
	size := pt.Layout().Size
	return kernelsrc.ErasedImage{
		Width:     width,
		Height:    height,
		PixelType: pt,
		Data:      pitchedToTight(buf, width, height, pitch, size),
	}
}

// mapPixelKernelFunc applies applier to every in-bounds pixel, reading
// binding 0 and writing binding 1 (matching codegen.MapPixel's bindings).
func mapPixelKernelFunc(applier kernelsrc.PixelApplier, width, height, inPitch, outPitch, inSize, outSize int) devgraph.KernelFunc {
	return func(bindings map[uint32][]byte) {
		in := bindings[0]
		out := bindings[1]
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				inOff := rowOffset(row, inPitch) + col*inSize
				outOff := rowOffset(row, outPitch) + col*outSize
				result := applier(in[inOff : inOff+inSize])
				copy(out[outOff:outOff+outSize], result)
			}
		}
	}
}

// mapPatchKernelFunc applies a patch applier to every in-bounds output
// pixel of a map_patch operation, reading binding 0 and writing binding 1.
func mapPatchKernelFunc(applier kernelsrc.ImageApplier, inType pixel.Type, width, height, inPitch, outPitch, outSize int) devgraph.KernelFunc {
	return func(bindings map[uint32][]byte) {
		img := erasedImageFromPitched(bindings[0], width, height, inPitch, inType)
		out := bindings[1]
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				result := applier(img, col, row)
				outOff := rowOffset(row, outPitch) + col*outSize
				copy(out[outOff:outOff+outSize], result)
			}
		}
	}
}

// mapImageKernelFunc applies a whole-image applier over the declared
// output geometry, which is independent of the input geometry (spec.md
// §4.1), reading binding 0 and writing binding 1.
func mapImageKernelFunc(applier kernelsrc.ImageApplier, inType pixel.Type, inWidth, inHeight, inPitch int, outWidth, outHeight, outPitch, outSize int) devgraph.KernelFunc {
	return func(bindings map[uint32][]byte) {
		img := erasedImageFromPitched(bindings[0], inWidth, inHeight, inPitch, inType)
		out := bindings[1]
		for row := 0; row < outHeight; row++ {
			for col := 0; col < outWidth; col++ {
				result := applier(img, col, row)
				outOff := rowOffset(row, outPitch) + col*outSize
				copy(out[outOff:outOff+outSize], result)
			}
		}
	}
}

// flipKernelFunc reverses a width x height image along both axes, reading
// binding 0 and writing binding 1.
func flipKernelFunc(width, height, inPitch, outPitch, pixelSize int) devgraph.KernelFunc {
	return func(bindings map[uint32][]byte) {
		in := bindings[0]
		out := bindings[1]
		for row := 0; row < height; row++ {
			for col := 0; col < width; col++ {
				inOff := rowOffset(row, inPitch) + col*pixelSize
				dstCol := width - 1 - col
				dstRow := height - 1 - row
				outOff := rowOffset(dstRow, outPitch) + dstCol*pixelSize
				copy(out[outOff:outOff+pixelSize], in[inOff:inOff+pixelSize])
			}
		}
	}
}

// hConcatKernelFunc places a left x height image beside a right x height
// image, reading bindings 0 (left) and 1 (right), writing binding 2.
func hConcatKernelFunc(leftWidth, rightWidth, height, leftPitch, rightPitch, outPitch, pixelSize int) devgraph.KernelFunc {
	return func(bindings map[uint32][]byte) {
		left := bindings[0]
		right := bindings[1]
		out := bindings[2]
		for row := 0; row < height; row++ {
			for col := 0; col < leftWidth; col++ {
				srcOff := rowOffset(row, leftPitch) + col*pixelSize
				dstOff := rowOffset(row, outPitch) + col*pixelSize
				copy(out[dstOff:dstOff+pixelSize], left[srcOff:srcOff+pixelSize])
			}
			for col := 0; col < rightWidth; col++ {
				srcOff := rowOffset(row, rightPitch) + col*pixelSize
				dstOff := rowOffset(row, outPitch) + (leftWidth+col)*pixelSize
				copy(out[dstOff:dstOff+pixelSize], right[srcOff:srcOff+pixelSize])
			}
		}
	}
}

// vConcatKernelFunc stacks a width x topHeight image above a
// width x bottomHeight image, reading bindings 0 (top) and 1 (bottom),
// writing binding 2.
func vConcatKernelFunc(width, topHeight, bottomHeight, topPitch, bottomPitch, outPitch, pixelSize int) devgraph.KernelFunc {
	return func(bindings map[uint32][]byte) {
		top := bindings[0]
		bottom := bindings[1]
		out := bindings[2]
		rowBytes := width * pixelSize
		for row := 0; row < topHeight; row++ {
			srcOff := rowOffset(row, topPitch)
			dstOff := rowOffset(row, outPitch)
			copy(out[dstOff:dstOff+rowBytes], top[srcOff:srcOff+rowBytes])
		}
		for row := 0; row < bottomHeight; row++ {
			srcOff := rowOffset(row, bottomPitch)
			dstOff := rowOffset(topHeight+row, outPitch)
			copy(out[dstOff:dstOff+rowBytes], bottom[srcOff:srcOff+rowBytes])
		}
	}
}
