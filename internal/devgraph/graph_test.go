package devgraph

import (
	"testing"

	"github.com/gogpu/imgxform/internal/gpucore"
)

func TestAddAllocReturnsDistinctBuffers(t *testing.T) {
	g := New(NewCPUAdapter())

	idx1, buf1, err := g.AddAlloc(16, gpucore.BufferUsageStorage, "a")
	if err != nil {
		t.Fatal(err)
	}
	idx2, buf2, err := g.AddAlloc(16, gpucore.BufferUsageStorage, "b")
	if err != nil {
		t.Fatal(err)
	}
	if idx1 == idx2 {
		t.Fatal("expected distinct node indices")
	}
	if buf1 == buf2 {
		t.Fatal("expected distinct buffer IDs")
	}
}

func TestAddH2DCopyRejectsNonAllocTarget(t *testing.T) {
	g := New(NewCPUAdapter())
	allocIdx, _, err := g.AddAlloc(16, gpucore.BufferUsageStorage, "a")
	if err != nil {
		t.Fatal(err)
	}
	h2dIdx, err := g.AddH2DCopy(allocIdx, &HostBuffer{Data: make([]byte, 16)})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := g.AddH2DCopy(h2dIdx, &HostBuffer{Data: make([]byte, 16)}); err != ErrUnknownNode {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestInsertFreeNodesOnePerAlloc(t *testing.T) {
	g := New(NewCPUAdapter())
	a1, _, _ := g.AddAlloc(16, gpucore.BufferUsageStorage, "a")
	a2, _, _ := g.AddAlloc(16, gpucore.BufferUsageStorage, "b")
	if _, err := g.AddH2DCopy(a1, &HostBuffer{Data: make([]byte, 16)}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddH2DCopy(a2, &HostBuffer{Data: make([]byte, 16)}); err != nil {
		t.Fatal(err)
	}

	before := g.NodeCount()
	g.InsertFreeNodes()
	after := g.NodeCount()

	if after-before != 2 {
		t.Fatalf("expected 2 free nodes inserted (one per alloc), got %d", after-before)
	}

	var frees int
	for _, n := range g.nodes[before:] {
		if n.kind == KindFree {
			frees++
		}
	}
	if frees != 2 {
		t.Fatalf("expected 2 KindFree nodes, got %d", frees)
	}
}

func TestMakeExecutableRejectsWrongState(t *testing.T) {
	g := New(NewCPUAdapter())
	if _, _, err := g.AddAlloc(16, gpucore.BufferUsageStorage, "a"); err != nil {
		t.Fatal(err)
	}
	g.InsertFreeNodes()

	exec, err := g.MakeExecutable()
	if err != nil {
		t.Fatalf("MakeExecutable: %v", err)
	}
	if exec.State() != StateExecutable {
		t.Fatalf("expected StateExecutable, got %v", exec.State())
	}

	if _, _, err := g.AddAlloc(16, gpucore.BufferUsageStorage, "b"); err != ErrWrongState {
		t.Fatalf("expected ErrWrongState after MakeExecutable, got %v", err)
	}
	if _, err := g.MakeExecutable(); err != ErrWrongState {
		t.Fatalf("expected ErrWrongState on second MakeExecutable, got %v", err)
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	g := New(NewCPUAdapter())
	if _, _, err := g.AddAlloc(16, gpucore.BufferUsageStorage, "a"); err != nil {
		t.Fatal(err)
	}
	g.InsertFreeNodes()
	exec, err := g.MakeExecutable()
	if err != nil {
		t.Fatal(err)
	}

	exec.Destroy()
	if exec.State() != StateDestroyed {
		t.Fatalf("expected StateDestroyed, got %v", exec.State())
	}
	exec.Destroy() // must not panic
}

func TestGridDerivedCoversPartialBlocks(t *testing.T) {
	grid := Grid(GridModeDerived, 33, 17, 16, 16)
	if grid[0] != 3 || grid[1] != 2 || grid[2] != 1 {
		t.Fatalf("unexpected grid: %v", grid)
	}
}

func TestGridFixedIgnoresGeometry(t *testing.T) {
	grid := Grid(GridModeFixed, 4000, 4000, 16, 16)
	if grid[0] != FixedGridWidth || grid[1] != FixedGridHeight {
		t.Fatalf("unexpected fixed grid: %v", grid)
	}
}

func TestGridForPatchShrinksInnerRegion(t *testing.T) {
	grid := Grid(GridModeDerived, 16, 16, 16, 16)
	if grid[0] != 1 || grid[1] != 1 {
		t.Fatalf("sanity check failed: %v", grid)
	}

	patchGrid := GridForPatch(GridModeDerived, 16, 16, 16, 16, 1)
	// Inner region is 14x14 per block, so a 16x16 output needs 2 blocks per axis.
	if patchGrid[0] != 2 || patchGrid[1] != 2 {
		t.Fatalf("expected 2x2 patch grid, got %v", patchGrid)
	}
}
