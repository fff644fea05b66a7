package devgraph

// GridMode selects how a kernel launch's grid dimensions are derived
// (spec.md §9 "Known limitations": the reference hard-codes a 160x140
// grid, which silently truncates images larger than
// 160*block_width x 140*block_height; SPEC_FULL.md §5 resolves this open
// question by deriving the grid per launch by default).
type GridMode int

const (
	// GridModeDerived computes grid = ceil(width/blockW) x ceil(height/blockH),
	// correctly covering any image size. This is the default.
	GridModeDerived GridMode = iota
	// GridModeFixed reproduces the reference's hard-coded 160x140 block
	// grid, kept for parity testing only.
	GridModeFixed
)

// Reference fixed grid dimensions (spec.md §4.6, §9).
const (
	FixedGridWidth  = 160
	FixedGridHeight = 140
)

// Grid returns the [x, y, z] workgroup counts for a kernel covering an
// outWidth x outHeight output with the given block (workgroup) dimensions.
func Grid(mode GridMode, outWidth, outHeight, blockWidth, blockHeight int) [3]uint32 {
	if mode == GridModeFixed {
		return [3]uint32{FixedGridWidth, FixedGridHeight, 1}
	}
	return [3]uint32{
		uint32(ceilDiv(outWidth, blockWidth)),
		uint32(ceilDiv(outHeight, blockHeight)),
		1,
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// GridForPatch returns the grid for a map_patch kernel, whose per-block
// output region is smaller than the block itself by the halo on each side
// (spec.md §4.4: "output region covered by a block is
// (block_width - 2*padding) x (block_height - 2*padding)").
func GridForPatch(mode GridMode, outWidth, outHeight, blockWidth, blockHeight, padding int) [3]uint32 {
	if mode == GridModeFixed {
		return [3]uint32{FixedGridWidth, FixedGridHeight, 1}
	}
	innerW := blockWidth - 2*padding
	innerH := blockHeight - 2*padding
	return [3]uint32{
		uint32(ceilDiv(outWidth, innerW)),
		uint32(ceilDiv(outHeight, innerH)),
		1,
	}
}
