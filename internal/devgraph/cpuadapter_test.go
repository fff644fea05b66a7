package devgraph

import (
	"testing"

	"github.com/gogpu/imgxform/internal/gpucore"
)

// TestCPUAdapterEndToEndLaunch exercises the full alloc/H2D/kernel/D2H/free
// lifecycle against the CPU software adapter: a kernel that doubles every
// byte of its input into its output.
func TestCPUAdapterEndToEndLaunch(t *testing.T) {
	adapter := NewCPUAdapter()
	g := New(adapter)

	const size = 8
	inIdx, inBuf, err := g.AddAlloc(size, gpucore.BufferUsageStorage|gpucore.BufferUsageCopyDst, "in")
	if err != nil {
		t.Fatal(err)
	}
	outIdx, outBuf, err := g.AddAlloc(size, gpucore.BufferUsageStorage|gpucore.BufferUsageCopySrc, "out")
	if err != nil {
		t.Fatal(err)
	}

	host := &HostBuffer{Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}}
	h2dIdx, err := g.AddH2DCopy(inIdx, host)
	if err != nil {
		t.Fatal(err)
	}

	doubled := false
	const label = "double"
	adapter.RegisterKernel(label, func(bindings map[uint32][]byte) {
		doubled = true
		in := bindings[0]
		out := bindings[1]
		for i := range in {
			out[i] = in[i] * 2
		}
	})

	spirv := []uint32{0} // CPUAdapter ignores the bytes, resolves by label
	shaderID, err := adapter.CreateShaderModule(spirv, label)
	if err != nil {
		t.Fatal(err)
	}
	layout, err := adapter.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{Label: label})
	if err != nil {
		t.Fatal(err)
	}
	pplLayout, err := adapter.CreatePipelineLayout([]gpucore.BindGroupLayoutID{layout})
	if err != nil {
		t.Fatal(err)
	}
	pipeline, err := adapter.CreateComputePipeline(&gpucore.ComputePipelineDesc{
		Label: label, Layout: pplLayout, ShaderModule: shaderID, EntryPoint: "kernel",
	})
	if err != nil {
		t.Fatal(err)
	}
	bindGroup, err := adapter.CreateBindGroup(layout, []gpucore.BindGroupEntry{
		{Binding: 0, Buffer: inBuf, Size: size},
		{Binding: 1, Buffer: outBuf, Size: size},
	})
	if err != nil {
		t.Fatal(err)
	}

	grid := Grid(GridModeDerived, 8, 1, 16, 16)
	launchIdx, err := g.AddKernelLaunch(pipeline, bindGroup, grid, inIdx, outIdx, h2dIdx)
	if err != nil {
		t.Fatal(err)
	}

	out := &HostBuffer{Data: make([]byte, size)}
	if _, err := g.AddD2HCopy(outIdx, out, launchIdx); err != nil {
		t.Fatal(err)
	}

	g.InsertFreeNodes()
	exec, err := g.MakeExecutable()
	if err != nil {
		t.Fatal(err)
	}
	defer exec.Destroy()

	if err := exec.Launch(); err != nil {
		t.Fatal(err)
	}
	if !doubled {
		t.Fatal("expected kernel to have run")
	}
	if err := exec.Synchronize(); err != nil {
		t.Fatal(err)
	}

	want := []byte{2, 4, 6, 8, 10, 12, 14, 16}
	for i, b := range want {
		if out.Data[i] != b {
			t.Fatalf("byte %d: want %d, got %d", i, b, out.Data[i])
		}
	}
}

func TestCPUAdapterCreateShaderModuleUnregisteredLabel(t *testing.T) {
	adapter := NewCPUAdapter()
	if _, err := adapter.CreateShaderModule([]uint32{0}, "nope"); err != ErrKernelNotRegistered {
		t.Fatalf("expected ErrKernelNotRegistered, got %v", err)
	}
}

func TestCPUAdapterReadBufferUnknownID(t *testing.T) {
	adapter := NewCPUAdapter()
	if _, err := adapter.ReadBuffer(9999, 0, 4); err == nil {
		t.Fatal("expected error reading unknown buffer")
	}
}

func TestCPUAdapterRelaunchReplaysWithoutReregistering(t *testing.T) {
	adapter := NewCPUAdapter()
	g := New(adapter)

	const size = 4
	inIdx, inBuf, _ := g.AddAlloc(size, gpucore.BufferUsageStorage, "in")
	outIdx, outBuf, _ := g.AddAlloc(size, gpucore.BufferUsageStorage, "out")
	host := &HostBuffer{Data: []byte{1, 1, 1, 1}}
	h2dIdx, _ := g.AddH2DCopy(inIdx, host)

	runs := 0
	adapter.RegisterKernel("incr", func(bindings map[uint32][]byte) {
		runs++
		in, out := bindings[0], bindings[1]
		for i := range in {
			out[i] = in[i] + byte(runs)
		}
	})
	shaderID, _ := adapter.CreateShaderModule(nil, "incr")
	layout, _ := adapter.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{})
	pplLayout, _ := adapter.CreatePipelineLayout([]gpucore.BindGroupLayoutID{layout})
	pipeline, _ := adapter.CreateComputePipeline(&gpucore.ComputePipelineDesc{Layout: pplLayout, ShaderModule: shaderID})
	bindGroup, _ := adapter.CreateBindGroup(layout, []gpucore.BindGroupEntry{
		{Binding: 0, Buffer: inBuf, Size: size},
		{Binding: 1, Buffer: outBuf, Size: size},
	})
	launchIdx, _ := g.AddKernelLaunch(pipeline, bindGroup, [3]uint32{1, 1, 1}, inIdx, outIdx, h2dIdx)
	out := &HostBuffer{Data: make([]byte, size)}
	if _, err := g.AddD2HCopy(outIdx, out, launchIdx); err != nil {
		t.Fatal(err)
	}
	g.InsertFreeNodes()
	exec, err := g.MakeExecutable()
	if err != nil {
		t.Fatal(err)
	}
	defer exec.Destroy()

	if err := exec.Launch(); err != nil {
		t.Fatal(err)
	}
	if err := exec.Synchronize(); err != nil {
		t.Fatal(err)
	}
	if out.Data[0] != 2 { // 1 + runs(1)
		t.Fatalf("first launch: want 2, got %d", out.Data[0])
	}

	if err := exec.Launch(); err != nil {
		t.Fatal(err)
	}
	if err := exec.Synchronize(); err != nil {
		t.Fatal(err)
	}
	if out.Data[0] != 3 { // 1 + runs(2), replaying the same fixed order
		t.Fatalf("second launch: want 3, got %d", out.Data[0])
	}
}
