package graph

import (
	"testing"

	"github.com/gogpu/imgxform/internal/pixel"
)

func mustInput(t *testing.T, name string, w, h int, pt pixel.Type) *InputNode {
	t.Helper()
	n, err := NewInput(name, w, h, pt)
	if err != nil {
		t.Fatalf("NewInput: %v", err)
	}
	return n
}

func TestInputInvalidDimensions(t *testing.T) {
	if _, err := NewInput("x", 0, 4, pixel.RGB8); err != ErrInvalidDimensions {
		t.Errorf("err = %v, want ErrInvalidDimensions", err)
	}
}

func TestMapPixelInheritsGeometry(t *testing.T) {
	in := mustInput(t, "in", 4, 3, pixel.RGB8)
	m := NewMapPixel(in, "body", nil, pixel.RGBF32)
	if m.Width() != 4 || m.Height() != 3 {
		t.Errorf("geometry = %dx%d, want 4x3", m.Width(), m.Height())
	}
	if m.PixelType() != pixel.RGBF32 {
		t.Errorf("PixelType = %v, want RGBF32", m.PixelType())
	}
}

func TestFlipInheritsEverything(t *testing.T) {
	in := mustInput(t, "in", 4, 3, pixel.RGB8)
	f := NewFlip(in)
	if f.Width() != 4 || f.Height() != 3 || f.PixelType() != pixel.RGB8 {
		t.Errorf("Flip geometry/type = %dx%d %v, want 4x3 RGB8", f.Width(), f.Height(), f.PixelType())
	}
}

func TestMapImageDeclaredGeometry(t *testing.T) {
	in := mustInput(t, "in", 4, 4, pixel.RGB8)
	m, err := NewMapImage(in, 2, 2, "body", nil, pixel.RGB8)
	if err != nil {
		t.Fatalf("NewMapImage: %v", err)
	}
	if m.Width() != 2 || m.Height() != 2 {
		t.Errorf("geometry = %dx%d, want 2x2", m.Width(), m.Height())
	}
}

func TestMapImageInvalidDimensions(t *testing.T) {
	in := mustInput(t, "in", 4, 4, pixel.RGB8)
	if _, err := NewMapImage(in, 0, 2, "body", nil, pixel.RGB8); err != ErrInvalidDimensions {
		t.Errorf("err = %v, want ErrInvalidDimensions", err)
	}
}

func TestMapPatchDimensionValidation(t *testing.T) {
	in := mustInput(t, "in", 4, 4, pixel.RGB8)
	if _, err := NewMapPatch(in, 2, "body", nil, pixel.RGB8); err != ErrInvalidPatchDimension {
		t.Errorf("even dimension err = %v, want ErrInvalidPatchDimension", err)
	}
	if _, err := NewMapPatch(in, BlockWidth+1, "body", nil, pixel.RGB8); err == nil {
		t.Errorf("dimension exceeding block size should be rejected")
	}
	p, err := NewMapPatch(in, 3, "body", nil, pixel.RGB8)
	if err != nil {
		t.Fatalf("NewMapPatch: %v", err)
	}
	if p.Width() != 4 || p.Height() != 4 {
		t.Errorf("geometry = %dx%d, want 4x4", p.Width(), p.Height())
	}
}

func TestHConcatInvariants(t *testing.T) {
	a := mustInput(t, "a", 4, 3, pixel.RGB8)
	b := mustInput(t, "b", 4, 5, pixel.RGB8)
	if _, err := NewHConcat(a, b); err != ErrHeightMismatch {
		t.Errorf("err = %v, want ErrHeightMismatch", err)
	}
	c := mustInput(t, "c", 4, 3, pixel.RGBF32)
	if _, err := NewHConcat(a, c); err != ErrPixelTypeMismatch {
		t.Errorf("err = %v, want ErrPixelTypeMismatch", err)
	}
	d := mustInput(t, "d", 6, 3, pixel.RGB8)
	hc, err := NewHConcat(a, d)
	if err != nil {
		t.Fatalf("NewHConcat: %v", err)
	}
	if hc.Width() != 10 || hc.Height() != 3 {
		t.Errorf("geometry = %dx%d, want 10x3", hc.Width(), hc.Height())
	}
}

func TestVConcatInvariants(t *testing.T) {
	a := mustInput(t, "a", 4, 3, pixel.RGB8)
	b := mustInput(t, "b", 5, 3, pixel.RGB8)
	if _, err := NewVConcat(a, b); err != ErrWidthMismatch {
		t.Errorf("err = %v, want ErrWidthMismatch", err)
	}
	d := mustInput(t, "d", 4, 7, pixel.RGB8)
	vc, err := NewVConcat(a, d)
	if err != nil {
		t.Fatalf("NewVConcat: %v", err)
	}
	if vc.Width() != 4 || vc.Height() != 10 {
		t.Errorf("geometry = %dx%d, want 4x10", vc.Width(), vc.Height())
	}
}

func TestToposortOrdersDependenciesFirst(t *testing.T) {
	in := mustInput(t, "in", 4, 4, pixel.RGB8)
	m1 := NewMapPixel(in, "s1", nil, pixel.RGB8)
	m2 := NewMapPixel(m1, "s2", nil, pixel.RGB8)

	order := Toposort([]Node{m2})
	if len(order) != 3 {
		t.Fatalf("len(order) = %d, want 3", len(order))
	}
	pos := make(map[Node]int)
	for i, n := range order {
		pos[n] = i
	}
	if pos[in] >= pos[m1] || pos[m1] >= pos[m2] {
		t.Errorf("order not topological: in=%d m1=%d m2=%d", pos[in], pos[m1], pos[m2])
	}
}

func TestToposortSharedNodeAppearsOnce(t *testing.T) {
	in := mustInput(t, "in", 4, 4, pixel.RGB8)
	a := NewMapPixel(in, "a", nil, pixel.RGB8)
	b := NewMapPixel(in, "b", nil, pixel.RGB8)

	order := Toposort([]Node{a, b})
	if len(order) != 3 {
		t.Fatalf("len(order) = %d, want 3 (in, a, b with in shared)", len(order))
	}
	seen := make(map[Node]bool)
	for _, n := range order {
		if seen[n] {
			t.Fatalf("node %v appeared twice in toposort result", n)
		}
		seen[n] = true
	}
	pos := make(map[Node]int)
	for i, n := range order {
		pos[n] = i
	}
	if pos[in] >= pos[a] || pos[in] >= pos[b] {
		t.Errorf("shared dependency must precede both dependents: in=%d a=%d b=%d", pos[in], pos[a], pos[b])
	}
}

func TestToposortDiamond(t *testing.T) {
	in := mustInput(t, "in", 4, 4, pixel.RGB8)
	left := NewMapPixel(in, "left", nil, pixel.RGB8)
	right := NewMapPixel(in, "right", nil, pixel.RGB8)
	hc, err := NewHConcat(left, right)
	if err != nil {
		t.Fatalf("NewHConcat: %v", err)
	}

	order := Toposort([]Node{hc})
	if len(order) != 4 {
		t.Fatalf("len(order) = %d, want 4", len(order))
	}
	pos := make(map[Node]int)
	for i, n := range order {
		pos[n] = i
	}
	if pos[in] >= pos[left] || pos[in] >= pos[right] {
		t.Errorf("in must precede both left and right")
	}
	if pos[left] >= pos[hc] || pos[right] >= pos[hc] {
		t.Errorf("left and right must precede hc")
	}
}
