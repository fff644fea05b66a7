package kernelsrc

import "github.com/gogpu/imgxform/internal/pixel"

// ErasedImage is a type-erased, tightly packed pixel buffer tagged with its
// pixel.Type, used to cross the boundary between the type-erased
// internal/graph/internal/devgraph layers (which only ever see pixel.Type
// values, per spec.md §3's erasure rule) and a kernel's generically typed
// Eval closure.
type ErasedImage struct {
	Width, Height int
	PixelType     pixel.Type
	Data          []byte // tightly packed, len == Width*Height*PixelType.Layout().Size
}

func decodePixel[P Pixel](t pixel.Type, buf []byte) P {
	switch t {
	case pixel.RGB8:
		return any(pixel.GetRGB8(buf, 1, 0, 0)).(P)
	case pixel.RGBF32:
		return any(pixel.GetRGBF32(buf, 1, 0, 0)).(P)
	default:
		panic("kernelsrc: unreachable pixel type")
	}
}

func encodePixel[P Pixel](t pixel.Type, p P, buf []byte) {
	switch t {
	case pixel.RGB8:
		pixel.PutRGB8(buf, 1, 0, 0, any(p).(pixel.RGB8Pixel))
	case pixel.RGBF32:
		pixel.PutRGBF32(buf, 1, 0, 0, any(p).(pixel.RGBF32Pixel))
	default:
		panic("kernelsrc: unreachable pixel type")
	}
}

func toTypedImage[P Pixel](e ErasedImage) Image[P] {
	n := e.Width * e.Height
	out := make([]P, n)
	size := e.PixelType.Layout().Size
	for i := 0; i < n; i++ {
		out[i] = decodePixel[P](e.PixelType, e.Data[i*size:(i+1)*size])
	}
	return NewImage[P](out, e.Width, e.Height)
}

// PixelApplier is the type-erased form of a MapPixelKernel's Eval closure:
// one pixel's tightly packed bytes in, one pixel's tightly packed bytes
// out. Consumed by internal/graph and internal/devgraph's software
// adapter, neither of which can know a kernel's compile-time pixel type
// parameters.
type PixelApplier func(in []byte) []byte

// Erase returns the type-erased form of k.
func (k *MapPixelKernel[In, Out]) Erase() PixelApplier {
	outType := TypeOf[Out]()
	return func(in []byte) []byte {
		inVal := decodePixel[In](TypeOf[In](), in)
		outVal := k.Eval(inVal)
		buf := make([]byte, outType.Layout().Size)
		encodePixel(outType, outVal, buf)
		return buf
	}
}

// ImageApplier is the type-erased form of a MapPatchKernel's or
// MapImageKernel's Eval closure: the whole input image plus an output
// coordinate in, one pixel's tightly packed bytes out.
type ImageApplier func(img ErasedImage, col, row int) []byte

// Erase returns the type-erased form of k. The returned ImageApplier
// constructs a Patch<Dimension,In> view centered at (col,row) on every
// call, reproducing the per-thread halo load described in spec.md §4.4.
func (k *MapPatchKernel[In, Out]) Erase() ImageApplier {
	outType := TypeOf[Out]()
	dimension := k.Dimension
	return func(img ErasedImage, col, row int) []byte {
		typedImg := toTypedImage[In](img)
		patch := NewPatch[In](typedImg, col, row, dimension)
		outVal := k.Eval(patch)
		buf := make([]byte, outType.Layout().Size)
		encodePixel(outType, outVal, buf)
		return buf
	}
}

// Erase returns the type-erased form of k.
func (k *MapImageKernel[In, Out]) Erase() ImageApplier {
	outType := TypeOf[Out]()
	return func(img ErasedImage, col, row int) []byte {
		typedImg := toTypedImage[In](img)
		outVal := k.Eval(typedImg, col, row)
		buf := make([]byte, outType.Layout().Size)
		encodePixel(outType, outVal, buf)
		return buf
	}
}
