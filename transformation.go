package imgxform

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/imgxform/internal/codegen"
	"github.com/gogpu/imgxform/internal/devgraph"
	"github.com/gogpu/imgxform/internal/gpucore"
	"github.com/gogpu/imgxform/internal/graph"
	"github.com/gogpu/imgxform/internal/image"
	"github.com/gogpu/imgxform/internal/pixel"
)

// ErrDuplicateOutputName is returned by New when two Output values share a
// name.
var ErrDuplicateOutputName = errors.New("imgxform: duplicate output name")

// ErrNoOutputs is returned by New when called with zero outputs; a
// Transformation with nothing to compute has no useful Call.
var ErrNoOutputs = errors.New("imgxform: at least one output is required")

// nodeInfo records the compiled state of one CDG node: the device-graph
// alloc node that backs it, the node that last wrote it (for dependency
// wiring), and its device-buffer geometry.
type nodeInfo struct {
	allocIdx    int
	producerIdx int // H2D-copy node for inputs, kernel-launch node for operations
	bufferID    gpucore.BufferID
	width       int
	height      int
	pitch       int
	pixelType   pixel.Type
	size        int
}

type inputBinding struct {
	host      *devgraph.HostBuffer
	width     int
	height    int
	pitch     int
	pixelType pixel.Type
}

type outputBinding struct {
	host      *devgraph.HostBuffer
	width     int
	height    int
	pitch     int
	pixelType pixel.Type
}

// Transformation is a compiled, launch-ready pipeline (spec.md C7/C8): the
// result of lowering a CDG rooted at one or more Outputs into a device
// graph. Call may be invoked repeatedly without any recompilation (spec.md
// §1 non-goal).
type Transformation struct {
	device *Device
	exec   *devgraph.ExecutableGraph
	inputs map[string]inputBinding
	outputs map[string]outputBinding
}

// New compiles outputs (and every node they transitively depend on) into a
// Transformation bound to device. Every operation's kernel is synthesized
// to WGSL (internal/codegen), compiled to SPIR-V (the device's Compiler),
// and wired into device's adapter as a buffer/bind-group/pipeline plus a
// device-graph kernel-launch node (spec.md §4.7).
func New(device *Device, outputs ...Output) (*Transformation, error) {
	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}
	seenNames := make(map[string]bool, len(outputs))
	roots := make([]graph.Node, len(outputs))
	for i, o := range outputs {
		if seenNames[o.name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateOutputName, o.name)
		}
		seenNames[o.name] = true
		roots[i] = o.node
	}

	order := graph.Toposort(roots)

	g := devgraph.New(device.adapter)
	info := make(map[graph.Node]nodeInfo, len(order))
	inputs := make(map[string]inputBinding)

	for _, n := range order {
		pt := n.PixelType()
		pitch := pt.Pitch(n.Width(), device.pitchAlignment)
		size := pitch * n.Height()
		allocIdx, bufID, err := g.AddAlloc(size, gpucore.BufferUsageStorage|gpucore.BufferUsageCopySrc|gpucore.BufferUsageCopyDst, nodeLabel(len(info), n))
		if err != nil {
			return nil, &DeviceError{Op: "alloc", Err: err}
		}

		ni := nodeInfo{allocIdx: allocIdx, bufferID: bufID, width: n.Width(), height: n.Height(), pitch: pitch, pixelType: pt, size: size}

		switch tn := n.(type) {
		case *graph.InputNode:
			host := &devgraph.HostBuffer{Data: make([]byte, size)}
			h2dIdx, err := g.AddH2DCopy(allocIdx, host)
			if err != nil {
				return nil, &DeviceError{Op: "h2d-copy", Err: err}
			}
			ni.producerIdx = h2dIdx
			inputs[tn.Name] = inputBinding{host: host, width: ni.width, height: ni.height, pitch: pitch, pixelType: pt}

		case *graph.MapPixelNode:
			dep := info[tn.Dep]
			source := codegen.MapPixel(codegen.MapPixelParams{
				Width: ni.width, Height: ni.height,
				InPitch: dep.pitch, OutPitch: pitch,
				InType: dep.pixelType, OutType: pt,
				Body: tn.Source,
			})
			fn := mapPixelKernelFunc(tn.Applier, ni.width, ni.height, dep.pitch, pitch, dep.pixelType.Layout().Size, pt.Layout().Size)
			grid := devgraph.Grid(devgraph.GridModeDerived, ni.width, ni.height, graph.BlockWidth, graph.BlockHeight)
			paramsData := encodeParams(uint32(ni.width), uint32(ni.height))
			launchIdx, err := buildSimpleKernelNode(g, device, allocIdx, nodeLabel(len(info), n), source, fn,
				[]bindingSpec{{dep.bufferID, dep.size}, {bufID, size}}, paramsData, grid,
				[]int{dep.allocIdx, dep.producerIdx})
			if err != nil {
				return nil, err
			}
			ni.producerIdx = launchIdx

		case *graph.MapPatchNode:
			dep := info[tn.Dep]
			padding := tn.Dimension / 2
			source := codegen.MapPatch(codegen.MapPatchParams{
				Width: ni.width, Height: ni.height,
				InPitch: dep.pitch, OutPitch: pitch,
				InType: dep.pixelType, OutType: pt,
				Dimension: tn.Dimension,
				Body:      tn.Source,
			})
			fn := mapPatchKernelFunc(tn.Applier, dep.pixelType, ni.width, ni.height, dep.pitch, pitch, pt.Layout().Size)
			grid := devgraph.GridForPatch(devgraph.GridModeDerived, ni.width, ni.height, graph.BlockWidth, graph.BlockHeight, padding)
			paramsData := encodeParams(uint32(ni.width), uint32(ni.height))
			launchIdx, err := buildSimpleKernelNode(g, device, allocIdx, nodeLabel(len(info), n), source, fn,
				[]bindingSpec{{dep.bufferID, dep.size}, {bufID, size}}, paramsData, grid,
				[]int{dep.allocIdx, dep.producerIdx})
			if err != nil {
				return nil, err
			}
			ni.producerIdx = launchIdx

		case *graph.MapImageNode:
			dep := info[tn.Dep]
			source := codegen.MapImage(codegen.MapImageParams{
				InWidth: dep.width, InHeight: dep.height, InPitch: dep.pitch,
				OutWidth: ni.width, OutHeight: ni.height, OutPitch: pitch,
				InType: dep.pixelType, OutType: pt,
				Body: tn.Source,
			})
			fn := mapImageKernelFunc(tn.Applier, dep.pixelType, dep.width, dep.height, dep.pitch, ni.width, ni.height, pitch, pt.Layout().Size)
			grid := devgraph.Grid(devgraph.GridModeDerived, ni.width, ni.height, graph.BlockWidth, graph.BlockHeight)
			paramsData := encodeParams(uint32(dep.width), uint32(dep.height), uint32(ni.width), uint32(ni.height))
			launchIdx, err := buildSimpleKernelNode(g, device, allocIdx, nodeLabel(len(info), n), source, fn,
				[]bindingSpec{{dep.bufferID, dep.size}, {bufID, size}}, paramsData, grid,
				[]int{dep.allocIdx, dep.producerIdx})
			if err != nil {
				return nil, err
			}
			ni.producerIdx = launchIdx

		case *graph.FlipNode:
			dep := info[tn.Dep]
			source := codegen.Flip(codegen.FlipParams{Width: ni.width, Height: ni.height, Pitch: pitch, PixelType: pt})
			fn := flipKernelFunc(ni.width, ni.height, dep.pitch, pitch, pt.Layout().Size)
			grid := devgraph.Grid(devgraph.GridModeDerived, ni.width, ni.height, graph.BlockWidth, graph.BlockHeight)
			paramsData := encodeParams(uint32(ni.width), uint32(ni.height))
			launchIdx, err := buildSimpleKernelNode(g, device, allocIdx, nodeLabel(len(info), n), source, fn,
				[]bindingSpec{{dep.bufferID, dep.size}, {bufID, size}}, paramsData, grid,
				[]int{dep.allocIdx, dep.producerIdx})
			if err != nil {
				return nil, err
			}
			ni.producerIdx = launchIdx

		case *graph.HConcatNode:
			left := info[tn.Left]
			right := info[tn.Right]
			source := codegen.HConcat(codegen.HConcatParams{
				Height:     ni.height,
				LeftWidth:  left.width, RightWidth: right.width,
				LeftPitch: left.pitch, RightPitch: right.pitch,
				OutPitch:  pitch,
				PixelType: pt,
			})
			fn := hConcatKernelFunc(left.width, right.width, ni.height, left.pitch, right.pitch, pitch, pt.Layout().Size)
			grid := devgraph.Grid(devgraph.GridModeDerived, ni.width, ni.height, graph.BlockWidth, graph.BlockHeight)
			paramsData := encodeParams(uint32(left.width), uint32(right.width), uint32(ni.height))
			launchIdx, err := buildSimpleKernelNode(g, device, allocIdx, nodeLabel(len(info), n), source, fn,
				[]bindingSpec{{left.bufferID, left.size}, {right.bufferID, right.size}, {bufID, size}}, paramsData, grid,
				[]int{left.allocIdx, left.producerIdx, right.allocIdx, right.producerIdx})
			if err != nil {
				return nil, err
			}
			ni.producerIdx = launchIdx

		case *graph.VConcatNode:
			top := info[tn.Top]
			bottom := info[tn.Bottom]
			source := codegen.VConcat(codegen.VConcatParams{
				Width:      ni.width,
				TopHeight:  top.height, BottomHeight: bottom.height,
				TopPitch: top.pitch, BottomPitch: bottom.pitch,
				OutPitch:  pitch,
				PixelType: pt,
			})
			fn := vConcatKernelFunc(ni.width, top.height, bottom.height, top.pitch, bottom.pitch, pitch, pt.Layout().Size)
			grid := devgraph.Grid(devgraph.GridModeDerived, ni.width, ni.height, graph.BlockWidth, graph.BlockHeight)
			paramsData := encodeParams(uint32(ni.width), uint32(top.height), uint32(bottom.height))
			launchIdx, err := buildSimpleKernelNode(g, device, allocIdx, nodeLabel(len(info), n), source, fn,
				[]bindingSpec{{top.bufferID, top.size}, {bottom.bufferID, bottom.size}, {bufID, size}}, paramsData, grid,
				[]int{top.allocIdx, top.producerIdx, bottom.allocIdx, bottom.producerIdx})
			if err != nil {
				return nil, err
			}
			ni.producerIdx = launchIdx

		default:
			return nil, fmt.Errorf("imgxform: unrecognized node type %T", n)
		}

		info[n] = ni
	}

	outBindings := make(map[string]outputBinding, len(outputs))
	for _, o := range outputs {
		ni := info[o.node]
		host := &devgraph.HostBuffer{Data: make([]byte, ni.size)}
		if _, err := g.AddD2HCopy(ni.allocIdx, host, ni.producerIdx); err != nil {
			return nil, &DeviceError{Op: "d2h-copy", Err: err}
		}
		outBindings[o.name] = outputBinding{host: host, width: ni.width, height: ni.height, pitch: ni.pitch, pixelType: ni.pixelType}
	}

	g.InsertFreeNodes()
	exec, err := g.MakeExecutable()
	if err != nil {
		return nil, &DeviceError{Op: "make-executable", Err: err}
	}

	return &Transformation{device: device, exec: exec, inputs: inputs, outputs: outBindings}, nil
}

// bindingSpec pairs a buffer's resource ID with its byte size, used to
// build a bind group.
type bindingSpec struct {
	bufferID gpucore.BufferID
	size     int
}

// buildSimpleKernelNode compiles source, creates the shader/pipeline/bind
// group for one kernel, registers fn with a CPU adapter if present, and
// records a kernel-launch node depending on outAllocIdx plus extraDeps.
func buildSimpleKernelNode(
	g *devgraph.Graph, device *Device, outAllocIdx int, label string,
	source string, fn devgraph.KernelFunc, bindings []bindingSpec, paramsData []byte, grid [3]uint32,
	extraDeps []int,
) (int, error) {
	spirv, err := device.compiler.Compile(source)
	if err != nil {
		return 0, &DeviceError{Op: "compile", Err: err}
	}

	if cpu, ok := device.adapter.(*devgraph.CPUAdapter); ok {
		cpu.RegisterKernel(label, fn)
	}

	shaderID, err := device.adapter.CreateShaderModule(spirv, label)
	if err != nil {
		return 0, &DeviceError{Op: "create-shader-module", Err: err}
	}

	layoutEntries := make([]gpucore.BindGroupLayoutEntry, 0, len(bindings)+1)
	for i, b := range bindings {
		bindingType := gpucore.BindingTypeStorageBuffer
		if i < len(bindings)-1 {
			bindingType = gpucore.BindingTypeReadOnlyStorageBuffer
		}
		layoutEntries = append(layoutEntries, gpucore.BindGroupLayoutEntry{Binding: uint32(i), Type: bindingType, MinBindingSize: uint64(b.size)})
	}
	layoutEntries = append(layoutEntries, gpucore.BindGroupLayoutEntry{Binding: 9, Type: gpucore.BindingTypeUniformBuffer, MinBindingSize: uint64(len(paramsData))})

	layout, err := device.adapter.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{Label: label, Entries: layoutEntries})
	if err != nil {
		return 0, &DeviceError{Op: "create-bind-group-layout", Err: err}
	}
	pplLayout, err := device.adapter.CreatePipelineLayout([]gpucore.BindGroupLayoutID{layout})
	if err != nil {
		return 0, &DeviceError{Op: "create-pipeline-layout", Err: err}
	}
	pipeline, err := device.adapter.CreateComputePipeline(&gpucore.ComputePipelineDesc{Label: label, Layout: pplLayout, ShaderModule: shaderID, EntryPoint: "kernel"})
	if err != nil {
		return 0, &DeviceError{Op: "create-compute-pipeline", Err: err}
	}

	paramsAllocIdx, paramsBufID, err := g.AddAlloc(len(paramsData), gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst, label+"_params")
	if err != nil {
		return 0, &DeviceError{Op: "alloc-params", Err: err}
	}
	paramsH2DIdx, err := g.AddH2DCopy(paramsAllocIdx, &devgraph.HostBuffer{Data: paramsData})
	if err != nil {
		return 0, &DeviceError{Op: "h2d-params", Err: err}
	}

	entries := make([]gpucore.BindGroupEntry, 0, len(bindings)+1)
	for i, b := range bindings {
		entries = append(entries, gpucore.BindGroupEntry{Binding: uint32(i), Buffer: b.bufferID, Size: uint64(b.size)})
	}
	entries = append(entries, gpucore.BindGroupEntry{Binding: 9, Buffer: paramsBufID, Size: uint64(len(paramsData))})

	bindGroup, err := device.adapter.CreateBindGroup(layout, entries)
	if err != nil {
		return 0, &DeviceError{Op: "create-bind-group", Err: err}
	}

	deps := append([]int{outAllocIdx, paramsH2DIdx}, extraDeps...)
	launchIdx, err := g.AddKernelLaunch(pipeline, bindGroup, grid, deps...)
	if err != nil {
		return 0, &DeviceError{Op: "kernel-launch", Err: err}
	}
	return launchIdx, nil
}

// nodeLabel produces a short, stable debug label for a CDG node's
// compiled artifacts.
func nodeLabel(ordinal int, n graph.Node) string {
	return fmt.Sprintf("node-%d-%T", ordinal, n)
}

// encodeParams packs a sequence of uint32 launch-parameter fields into the
// little-endian byte layout the synthesized WGSL LaunchParams uniform
// expects.
func encodeParams(fields ...uint32) []byte {
	buf := make([]byte, len(fields)*4)
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:], f)
	}
	return buf
}

// Call fills every declared input from inputs, launches the device graph,
// waits for completion, and returns one DynamicImage per registered
// output (spec.md §4.8). Call may be invoked repeatedly on the same
// Transformation.
func (t *Transformation) Call(inputs map[string]*image.DynamicImage) (map[string]*image.DynamicImage, error) {
	for name, binding := range t.inputs {
		img, ok := inputs[name]
		if !ok {
			return nil, &MissingInput{Name: name}
		}
		if img.Width() != binding.width || img.Height() != binding.height || img.PixelType() != binding.pixelType {
			return nil, &ShapeMismatch{
				Name:          name,
				WantWidth:     binding.width, WantHeight: binding.height,
				GotWidth: img.Width(), GotHeight: img.Height(),
				WantPixelType: binding.pixelType.String(), GotPixelType: img.PixelType().String(),
			}
		}
		binding.host.Data = tightToPitched(img.Bytes(), binding.width, binding.height, binding.pitch, binding.pixelType.Layout().Size)
	}

	if err := t.exec.Launch(); err != nil {
		return nil, &DeviceError{Op: "launch", Err: err}
	}
	if err := t.exec.Synchronize(); err != nil {
		return nil, &DeviceError{Op: "synchronize", Err: err}
	}

	results := make(map[string]*image.DynamicImage, len(t.outputs))
	for name, binding := range t.outputs {
		tight := pitchedToTight(binding.host.Data, binding.width, binding.height, binding.pitch, binding.pixelType.Layout().Size)
		var img *image.DynamicImage
		var err error
		switch binding.pixelType {
		case pixel.RGB8:
			img, err = image.FromRawRGB8(tight, binding.width, binding.height)
		case pixel.RGBF32:
			img, err = image.FromRawRGB32F(tight, binding.width, binding.height)
		default:
			err = fmt.Errorf("imgxform: unrecognized pixel type %v", binding.pixelType)
		}
		if err != nil {
			return nil, &DeviceError{Op: "decode-output", Err: err}
		}
		results[name] = img
	}
	return results, nil
}

// Stats reports the underlying device Compiler's compile-cache hit/miss
// counts (SPEC_FULL.md §5's supplemented Transformation.Stats()).
func (t *Transformation) Stats() TransformationStats {
	cs := t.device.compiler.Stats()
	return TransformationStats{CompileCacheHits: cs.Hits, CompileCacheMisses: cs.Misses}
}

// TransformationStats summarizes compile cache usage. The counters are
// those of the Device's Compiler, which every Transformation built on that
// Device shares.
type TransformationStats struct {
	CompileCacheHits   uint64
	CompileCacheMisses uint64
}

// Close destroys the underlying device graph, freeing every device buffer
// the Transformation allocated. The Transformation must not be used after
// Close.
func (t *Transformation) Close() {
	t.exec.Destroy()
}
