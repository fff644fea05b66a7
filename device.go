// Package imgxform implements an image-processing transformation compiler
// that builds a declarative pipeline of per-pixel, per-patch, per-image,
// geometric, and concatenation operations over typed 2D images into a
// single executable GPU dependency graph (spec.md §1).
//
// A caller builds a typed DAG of Node[P] values (the CDG, internal/graph),
// registers a subset as named outputs, and calls New to compile the graph
// into a Transformation: every operation is lowered to a WGSL kernel
// (internal/codegen), compiled to SPIR-V (internal/devcompiler), and wired
// into a device graph of alloc/copy/kernel/free nodes (internal/devgraph).
// Transformation.Call then fills input buffers, launches the graph,
// synchronizes, and reads output buffers back as DynamicImages.
package imgxform

import (
	"errors"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/imgxform/internal/devcompiler"
	"github.com/gogpu/imgxform/internal/devgraph"
	"github.com/gogpu/imgxform/internal/gpucore"
)

// DefaultCompileCacheCapacity is the per-shard capacity of a Device's
// Compiler cache: each of the cache's 16 shards keeps up to this many
// compiled kernels before evicting its least-recently-used entry
// (spec.md §9, SPEC_FULL.md §5). A Transformation compiles a
// small, fixed number of kernels once at build time, so this only matters
// for a process that builds many distinct Transformations.
const DefaultCompileCacheCapacity = 256

// DefaultPitchAlignment is used when DeviceOptions.PitchAlignment is 0.
// gpucore.GPUAdapter does not expose a queryable storage-buffer alignment
// (unlike a real CUDA device context, which spec.md §4.7 step 2 has the
// pipeline compiler query once), so this module fixes the WebGPU-typical
// minimum storage buffer offset alignment instead of querying the
// adapter -- a reasonable default for any backend built on the
// gogpu/wgpu stack (SPEC_FULL.md §2).
const DefaultPitchAlignment = 256

// ErrProviderRequiresAdapter is returned by NewDevice when Provider is set
// without an explicit Adapter. Translating a gpucontext.DeviceProvider into
// a concrete gpucore.GPUAdapter means driving the real gogpu/wgpu HAL
// (buffer/shader/pipeline creation against hal.Device) -- a genuine GPU
// backend, not something this module can responsibly fabricate without a
// real device to validate against. Callers with a live gpucontext.Device
// should supply their own gpucore.GPUAdapter implementation bound to it via
// Adapter; DeviceOptions.Provider exists to carry the shared-device handle
// alongside it, matching the teacher's DeviceHandle/DeviceProvider wiring.
var ErrProviderRequiresAdapter = errors.New("imgxform: Provider set without an explicit Adapter")

// DeviceOptions configures Device construction, mirroring the teacher's
// "apply defaults over an options struct" pattern (e.g.
// gpucore.PipelineConfig) rather than a chain of functional options.
type DeviceOptions struct {
	// Adapter is the gpucore.GPUAdapter to drive. Nil selects the
	// in-process CPU software fallback (devgraph.CPUAdapter), which is
	// what every test and the spec.md §8 end-to-end scenarios in this
	// module run against.
	Adapter gpucore.GPUAdapter

	// Provider optionally carries a shared GPU device/queue/adapter handle
	// via the teacher's gpucontext.DeviceProvider indirection (see
	// render.DeviceHandle in the teacher pack). It is accepted for API
	// parity with that convention; NewDevice never stores or uses it, and
	// returns ErrProviderRequiresAdapter when it is set without Adapter.
	Provider gpucontext.DeviceProvider

	// PitchAlignment overrides DefaultPitchAlignment.
	PitchAlignment int
}

func (o DeviceOptions) withDefaults() (DeviceOptions, error) {
	if o.Provider != nil && o.Adapter == nil {
		return o, ErrProviderRequiresAdapter
	}
	if o.PitchAlignment <= 0 {
		o.PitchAlignment = DefaultPitchAlignment
	}
	if o.Adapter == nil {
		o.Adapter = devgraph.NewCPUAdapter()
	}
	return o, nil
}

// Device is the process-wide GPU context handle spec.md §5 calls "Cuda": a
// reference-counted singleton. At most one Device is active at a time;
// creating a new one after the previous has been fully Closed
// re-initializes the context, exactly as spec.md §5 specifies ("creating a
// new handle after the previous has been destroyed re-initializes the
// context").
type Device struct {
	adapter        gpucore.GPUAdapter
	pitchAlignment int
	compiler       *devcompiler.Compiler
}

var (
	deviceMu       sync.Mutex
	activeDevice   *Device
	deviceRefCount int
)

// NewDevice acquires the process-wide Device. The first call in a process
// (or after the last reference was Closed) constructs it from opts; every
// subsequent call while a Device is active ignores opts and returns the
// same instance with an incremented reference count, matching spec.md §5's
// "reference-counted across Cuda instances".
func NewDevice(opts DeviceOptions) (*Device, error) {
	deviceMu.Lock()
	defer deviceMu.Unlock()

	if activeDevice != nil {
		deviceRefCount++
		return activeDevice, nil
	}

	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	d := &Device{
		adapter:        opts.Adapter,
		pitchAlignment: opts.PitchAlignment,
		compiler:       devcompiler.New(DefaultCompileCacheCapacity),
	}
	activeDevice = d
	deviceRefCount = 1
	return d, nil
}

// Close releases this reference to the process-wide Device. The underlying
// context is only torn down once every outstanding reference has been
// Closed; a mismatched Close on an already-superseded Device is a no-op.
func (d *Device) Close() {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	if activeDevice != d {
		return
	}
	deviceRefCount--
	if deviceRefCount <= 0 {
		activeDevice = nil
		deviceRefCount = 0
	}
}

// PitchAlignment returns the device's pitch alignment in bytes, queried
// once per spec.md §4.7 step 2 (here: fixed at construction, see
// DefaultPitchAlignment).
func (d *Device) PitchAlignment() int { return d.pitchAlignment }
