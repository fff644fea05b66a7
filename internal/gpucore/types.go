// Package gpucore defines the backend-agnostic GPU adapter abstraction the
// device graph wrapper is built on: opaque resource handles, buffer usage
// flags, and compute pipeline descriptors. It mirrors the vocabulary the
// gogpu/wgpu + gogpu/gputypes stack already uses, trimmed to the buffer and
// compute-pipeline concerns an image-kernel graph actually needs -- texture
// resources are not part of this domain and are not modeled here.
package gpucore

// Resource IDs are opaque handles; each GPUAdapter implementation maintains
// its own mapping between IDs and backend resources.

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// ShaderModuleID is an opaque handle to a compiled shader module.
type ShaderModuleID uint64

// ComputePipelineID is an opaque handle to a compute pipeline.
type ComputePipelineID uint64

// BindGroupLayoutID is an opaque handle to a bind group layout.
type BindGroupLayoutID uint64

// BindGroupID is an opaque handle to a bind group.
type BindGroupID uint64

// PipelineLayoutID is an opaque handle to a pipeline layout.
type PipelineLayoutID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageMapRead indicates the buffer can be mapped for reading.
	BufferUsageMapRead BufferUsage = 1 << 0

	// BufferUsageMapWrite indicates the buffer can be mapped for writing.
	BufferUsageMapWrite BufferUsage = 1 << 1

	// BufferUsageCopySrc indicates the buffer can be used as a copy source.
	BufferUsageCopySrc BufferUsage = 1 << 2

	// BufferUsageCopyDst indicates the buffer can be used as a copy destination.
	BufferUsageCopyDst BufferUsage = 1 << 3

	// BufferUsageStorage indicates the buffer can be used as a storage buffer.
	BufferUsageStorage BufferUsage = 1 << 4

	// BufferUsageUniform indicates the buffer can be bound as a uniform
	// buffer, e.g. a kernel's launch-parameters struct.
	BufferUsageUniform BufferUsage = 1 << 5
)

// Contains reports whether u has all bits of other set.
func (u BufferUsage) Contains(other BufferUsage) bool {
	return u&other == other
}

// BindingType specifies the type of a shader binding.
type BindingType uint32

// Binding types.
const (
	// BindingTypeStorageBuffer is a read-write storage buffer binding.
	BindingTypeStorageBuffer BindingType = iota + 1

	// BindingTypeReadOnlyStorageBuffer is a read-only storage buffer binding.
	BindingTypeReadOnlyStorageBuffer

	// BindingTypeUniformBuffer is a uniform buffer binding, used for launch
	// parameters (width, height, pitch) passed to a kernel.
	BindingTypeUniformBuffer
)

// BindGroupLayoutEntry describes a single binding in a bind group layout.
type BindGroupLayoutEntry struct {
	// Binding is the binding index.
	Binding uint32

	// Type is the type of resource bound at this index.
	Type BindingType

	// MinBindingSize is the minimum buffer size for this binding.
	MinBindingSize uint64
}

// BindGroupLayoutDesc describes a bind group layout.
type BindGroupLayoutDesc struct {
	// Label is an optional debug label.
	Label string

	// Entries defines the bindings in this layout.
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry describes a single binding in a bind group.
type BindGroupEntry struct {
	// Binding is the binding index.
	Binding uint32

	// Buffer is the buffer bound at this index.
	Buffer BufferID

	// Offset is the byte offset into the buffer.
	Offset uint64

	// Size is the size of the bound range; 0 binds from Offset to the end.
	Size uint64
}

// BindGroupDesc describes a bind group.
type BindGroupDesc struct {
	// Label is an optional debug label.
	Label string

	// Layout is the bind group layout this group conforms to.
	Layout BindGroupLayoutID

	// Entries are the resource bindings.
	Entries []BindGroupEntry
}

// ComputePipelineDesc describes a compute pipeline.
type ComputePipelineDesc struct {
	// Label is an optional debug label.
	Label string

	// Layout is the pipeline layout.
	Layout PipelineLayoutID

	// ShaderModule contains the compute shader.
	ShaderModule ShaderModuleID

	// EntryPoint is the name of the shader entry point function.
	EntryPoint string
}

// AdapterCapabilities describes GPU adapter capabilities.
type AdapterCapabilities struct {
	// SupportsCompute indicates compute shader support.
	SupportsCompute bool

	// MaxWorkgroupSizeX is the maximum workgroup size in the X dimension.
	MaxWorkgroupSizeX uint32

	// MaxWorkgroupSizeY is the maximum workgroup size in the Y dimension.
	MaxWorkgroupSizeY uint32

	// MaxBufferSize is the maximum buffer size in bytes.
	MaxBufferSize uint64
}
