package devgraph

import (
	"errors"
	"sync"

	"github.com/gogpu/imgxform/internal/gpucore"
)

// KernelFunc is the CPU-executable form of a kernel, invoked once per
// CPUAdapter.ComputePassEncoder.Dispatch call. bindings maps a binding
// index to that binding's backing buffer bytes (a direct reference into
// the adapter's storage, so writes to a read_write binding are visible to
// subsequent reads/ReadBuffer calls). CPUAdapter ignores grid/workgroup
// counts entirely: a KernelFunc is expected to process the whole image in
// one call, since it closes over the concrete width/height/pitch that
// spec.md §4.4's in-kernel bounds check would otherwise enforce per
// thread (SPEC_FULL.md §3: this is the software fallback that lets
// spec.md §8's end-to-end scenarios run without a real GPU).
type KernelFunc func(bindings map[uint32][]byte)

// ErrKernelNotRegistered is returned by CreateShaderModule when label does
// not match a kernel previously registered with RegisterKernel.
var ErrKernelNotRegistered = errors.New("devgraph: no CPU kernel registered for label")

// CPUAdapter is a software fallback implementing gpucore.GPUAdapter
// entirely in Go. It has no real SPIR-V interpreter: CreateShaderModule
// resolves the module to a KernelFunc previously registered under the
// same label, exactly the pattern the teacher pack uses for software
// rendering fallbacks (gg.SoftwareRenderer) and for GPUAdapter test fakes.
// Safe for concurrent use, matching gpucore.GPUAdapter's documented
// discipline.
type CPUAdapter struct {
	mu sync.Mutex

	kernels map[string]KernelFunc

	nextBuffer gpucore.BufferID
	buffers    map[gpucore.BufferID][]byte

	nextShader gpucore.ShaderModuleID
	shaders    map[gpucore.ShaderModuleID]KernelFunc

	nextPipeline gpucore.ComputePipelineID
	pipelines    map[gpucore.ComputePipelineID]gpucore.ShaderModuleID

	nextBindGroup gpucore.BindGroupID
	bindGroups    map[gpucore.BindGroupID][]gpucore.BindGroupEntry

	nextLayout        gpucore.BindGroupLayoutID
	nextPipelineLayout gpucore.PipelineLayoutID
}

// NewCPUAdapter returns an empty CPUAdapter.
func NewCPUAdapter() *CPUAdapter {
	return &CPUAdapter{
		kernels:   make(map[string]KernelFunc),
		buffers:   make(map[gpucore.BufferID][]byte),
		shaders:   make(map[gpucore.ShaderModuleID]KernelFunc),
		pipelines: make(map[gpucore.ComputePipelineID]gpucore.ShaderModuleID),
		bindGroups: make(map[gpucore.BindGroupID][]gpucore.BindGroupEntry),
	}
}

// RegisterKernel associates label with fn; a subsequent
// CreateShaderModule(_, label) resolves to fn. Must be called before the
// graph builder creates the corresponding shader module.
func (a *CPUAdapter) RegisterKernel(label string, fn KernelFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.kernels[label] = fn
}

func (a *CPUAdapter) SupportsCompute() bool            { return true }
func (a *CPUAdapter) MaxWorkgroupSize() [3]uint32      { return [3]uint32{1024, 1024, 64} }
func (a *CPUAdapter) MaxBufferSize() uint64            { return 1 << 34 }

func (a *CPUAdapter) CreateShaderModule(spirv []uint32, label string) (gpucore.ShaderModuleID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn, ok := a.kernels[label]
	if !ok {
		return 0, ErrKernelNotRegistered
	}
	a.nextShader++
	id := a.nextShader
	a.shaders[id] = fn
	return id, nil
}

func (a *CPUAdapter) DestroyShaderModule(id gpucore.ShaderModuleID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.shaders, id)
}

func (a *CPUAdapter) CreateBuffer(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextBuffer++
	id := a.nextBuffer
	a.buffers[id] = make([]byte, size)
	return id, nil
}

func (a *CPUAdapter) DestroyBuffer(id gpucore.BufferID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.buffers, id)
}

func (a *CPUAdapter) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf := a.buffers[id]
	copy(buf[offset:], data)
}

func (a *CPUAdapter) ReadBuffer(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.buffers[id]
	if !ok {
		return nil, errors.New("devgraph: read from unknown buffer")
	}
	out := make([]byte, size)
	copy(out, buf[offset:offset+size])
	return out, nil
}

func (a *CPUAdapter) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextLayout++
	return a.nextLayout, nil
}

func (a *CPUAdapter) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {}

func (a *CPUAdapter) CreatePipelineLayout(layouts []gpucore.BindGroupLayoutID) (gpucore.PipelineLayoutID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextPipelineLayout++
	return a.nextPipelineLayout, nil
}

func (a *CPUAdapter) DestroyPipelineLayout(id gpucore.PipelineLayoutID) {}

func (a *CPUAdapter) CreateComputePipeline(desc *gpucore.ComputePipelineDesc) (gpucore.ComputePipelineID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.shaders[desc.ShaderModule]; !ok {
		return 0, ErrKernelNotRegistered
	}
	a.nextPipeline++
	id := a.nextPipeline
	a.pipelines[id] = desc.ShaderModule
	return id, nil
}

func (a *CPUAdapter) DestroyComputePipeline(id gpucore.ComputePipelineID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.pipelines, id)
}

func (a *CPUAdapter) CreateBindGroup(layout gpucore.BindGroupLayoutID, entries []gpucore.BindGroupEntry) (gpucore.BindGroupID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextBindGroup++
	id := a.nextBindGroup
	a.bindGroups[id] = entries
	return id, nil
}

func (a *CPUAdapter) DestroyBindGroup(id gpucore.BindGroupID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.bindGroups, id)
}

func (a *CPUAdapter) BeginComputePass() gpucore.ComputePassEncoder {
	return &cpuComputePass{adapter: a}
}

func (a *CPUAdapter) Submit()   {}
func (a *CPUAdapter) WaitIdle() {}

var _ gpucore.GPUAdapter = (*CPUAdapter)(nil)

// cpuComputePass records SetPipeline/SetBindGroup/Dispatch calls and
// executes the bound KernelFunc synchronously on Dispatch, reproducing
// the effect of a real compute pass without any actual device queue.
type cpuComputePass struct {
	adapter   *CPUAdapter
	pipeline  gpucore.ComputePipelineID
	bindGroup gpucore.BindGroupID
}

func (p *cpuComputePass) SetPipeline(pipeline gpucore.ComputePipelineID) { p.pipeline = pipeline }

func (p *cpuComputePass) SetBindGroup(index uint32, group gpucore.BindGroupID) {
	p.bindGroup = group
}

func (p *cpuComputePass) Dispatch(x, y, z uint32) {
	a := p.adapter
	a.mu.Lock()
	shaderID, ok := a.pipelines[p.pipeline]
	if !ok {
		a.mu.Unlock()
		return
	}
	fn, ok := a.shaders[shaderID]
	if !ok {
		a.mu.Unlock()
		return
	}
	entries := a.bindGroups[p.bindGroup]
	bindings := make(map[uint32][]byte, len(entries))
	for _, e := range entries {
		buf := a.buffers[e.Buffer]
		size := e.Size
		if size == 0 {
			size = uint64(len(buf)) - e.Offset
		}
		bindings[e.Binding] = buf[e.Offset : e.Offset+size]
	}
	a.mu.Unlock()

	fn(bindings)
}

func (p *cpuComputePass) End() {}

var _ gpucore.ComputePassEncoder = (*cpuComputePass)(nil)
