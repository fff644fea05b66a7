package devgraph

import "github.com/gogpu/imgxform/internal/gpucore"

// ExecutableGraph is an instantiated, launch-ready device graph (spec.md
// §4.6 "Executable graph"). Launch may be called repeatedly -- spec.md §1
// explicitly rules out recompilation across calls -- each call replaying
// the same fixed node order. Device buffers allocated during Building are
// kept alive across every Launch/Synchronize cycle; free nodes only run
// at Destroy, tearing the whole graph down at once (see the Graph type's
// doc comment in graph.go for why alloc/free are not re-run per call).
type ExecutableGraph struct {
	adapter gpucore.GPUAdapter
	nodes   []node
	order   []int
	state   State
}

// Launch records and submits one pass of kernel/H2D-copy commands in
// dependency order (spec.md §4.8 step 2). D2H copies and frees are
// deferred: D2H to Synchronize (spec.md §5's aliasing rule -- the host
// never reads an output buffer while the graph is executing), frees to
// Destroy.
func (e *ExecutableGraph) Launch() error {
	if e.state != StateExecutable {
		return ErrWrongState
	}
	pass := e.adapter.BeginComputePass()
	for _, idx := range e.order {
		n := &e.nodes[idx]
		switch n.kind {
		case KindAlloc, KindD2HCopy, KindFree:
			// Alloc already performed at Building time; D2H and Free are
			// deferred to Synchronize/Destroy respectively.
		case KindH2DCopy:
			e.adapter.WriteBuffer(e.nodes[n.allocNode].bufferID, 0, n.host.Data)
		case KindKernelLaunch:
			pass.SetPipeline(n.pipeline)
			pass.SetBindGroup(0, n.bindGroup)
			pass.Dispatch(n.grid[0], n.grid[1], n.grid[2])
		}
	}
	pass.End()
	e.adapter.Submit()
	return nil
}

// Synchronize waits for all submitted work to complete, then performs
// every D2H copy node's read (spec.md §4.8 steps 3-4). This is the only
// blocking point after Launch, and upholds spec.md §5: the host never
// reads an output buffer while the graph is executing, only after this
// call returns.
func (e *ExecutableGraph) Synchronize() error {
	if e.state != StateExecutable {
		return ErrWrongState
	}
	e.adapter.WaitIdle()
	for _, idx := range e.order {
		n := &e.nodes[idx]
		if n.kind != KindD2HCopy {
			continue
		}
		data, err := e.adapter.ReadBuffer(e.nodes[n.allocNode].bufferID, 0, uint64(len(n.host.Data)))
		if err != nil {
			return err
		}
		copy(n.host.Data, data)
	}
	return nil
}

// Destroy runs every free node (releasing all device buffers) and
// transitions the graph to Destroyed. Safe to call multiple times; only
// the first call has an effect.
func (e *ExecutableGraph) Destroy() {
	if e.state == StateDestroyed {
		return
	}
	for _, idx := range e.order {
		n := &e.nodes[idx]
		if n.kind == KindFree {
			e.adapter.DestroyBuffer(e.nodes[n.freeAlloc].bufferID)
		}
	}
	e.state = StateDestroyed
}

// State returns the graph's current lifecycle stage.
func (e *ExecutableGraph) State() State { return e.state }
