package gpucore

// GPUAdapter abstracts over different GPU backend implementations.
//
// This interface is the core abstraction that lets the device graph wrapper
// (internal/devgraph) drive either a real gogpu/wgpu-backed device or an
// in-process CPU fallback (internal/devgraph's CPUAdapter) without
// changing a line of graph-walking code.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - Destroying a resource while in use is undefined behavior
//   - IDs become invalid after destruction and must not be reused
type GPUAdapter interface {
	// === Capabilities ===

	// SupportsCompute returns whether compute shaders are supported.
	SupportsCompute() bool

	// MaxWorkgroupSize returns the maximum workgroup size in each dimension.
	MaxWorkgroupSize() [3]uint32

	// MaxBufferSize returns the maximum buffer size in bytes.
	MaxBufferSize() uint64

	// === Shader Compilation ===

	// CreateShaderModule creates a shader module from SPIR-V bytecode.
	// The SPIR-V is produced by the device compiler (internal/devcompiler)
	// from generated WGSL source before being passed here.
	CreateShaderModule(spirv []uint32, label string) (ShaderModuleID, error)

	// DestroyShaderModule releases a shader module.
	DestroyShaderModule(id ShaderModuleID)

	// === Buffer Management ===

	// CreateBuffer creates a GPU buffer of the given size and usage.
	CreateBuffer(size int, usage BufferUsage) (BufferID, error)

	// DestroyBuffer releases a GPU buffer.
	DestroyBuffer(id BufferID)

	// WriteBuffer writes host data into a buffer at the given byte offset.
	// This is the host-to-device copy primitive (spec.md's H2D node).
	WriteBuffer(id BufferID, offset uint64, data []byte)

	// ReadBuffer reads size bytes from a buffer starting at offset. This is
	// the device-to-host copy primitive (spec.md's D2H node) and may cause
	// a GPU-CPU synchronization stall.
	ReadBuffer(id BufferID, offset, size uint64) ([]byte, error)

	// === Pipeline Management ===

	// CreateBindGroupLayout creates a bind group layout.
	CreateBindGroupLayout(desc *BindGroupLayoutDesc) (BindGroupLayoutID, error)

	// DestroyBindGroupLayout releases a bind group layout.
	DestroyBindGroupLayout(id BindGroupLayoutID)

	// CreatePipelineLayout combines bind group layouts into a pipeline layout.
	CreatePipelineLayout(layouts []BindGroupLayoutID) (PipelineLayoutID, error)

	// DestroyPipelineLayout releases a pipeline layout.
	DestroyPipelineLayout(id PipelineLayoutID)

	// CreateComputePipeline creates a compute pipeline, i.e. a compiled kernel.
	CreateComputePipeline(desc *ComputePipelineDesc) (ComputePipelineID, error)

	// DestroyComputePipeline releases a compute pipeline.
	DestroyComputePipeline(id ComputePipelineID)

	// CreateBindGroup binds concrete buffers to a bind group layout.
	CreateBindGroup(layout BindGroupLayoutID, entries []BindGroupEntry) (BindGroupID, error)

	// DestroyBindGroup releases a bind group.
	DestroyBindGroup(id BindGroupID)

	// === Command Recording and Execution ===

	// BeginComputePass begins a compute pass, returning an encoder for
	// recording kernel-launch commands. The encoder must be ended with
	// ComputePassEncoder.End().
	BeginComputePass() ComputePassEncoder

	// Submit submits recorded commands to the GPU. Call after ending all
	// compute passes to execute them; this is the single command stream a
	// Device exposes (spec.md's single-threaded host scheduling model).
	Submit()

	// WaitIdle waits for all GPU operations to complete. Use sparingly; a
	// full GPU-CPU synchronization point, called once per Transformation.Call.
	WaitIdle()
}

// ComputePassEncoder records compute commands within a single pass.
//
// Usage:
//  1. Obtain via GPUAdapter.BeginComputePass()
//  2. SetPipeline, SetBindGroup, Dispatch (one kernel launch node)
//  3. Call End() to finish recording
//  4. Call GPUAdapter.Submit() to execute
//
// The encoder is single-use and cannot be reused after End().
type ComputePassEncoder interface {
	// SetPipeline sets the active compute pipeline.
	SetPipeline(pipeline ComputePipelineID)

	// SetBindGroup sets a bind group at the specified index.
	SetBindGroup(index uint32, group BindGroupID)

	// Dispatch dispatches compute workgroups. x, y, z are the number of
	// workgroups in each dimension; total threads = x*y*z*workgroup_size.
	Dispatch(x, y, z uint32)

	// End finishes the compute pass. After this call the encoder cannot be
	// used again.
	End()
}
