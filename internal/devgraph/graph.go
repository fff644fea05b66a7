// Package devgraph implements the device graph API wrapper (spec.md C6):
// a value-typed facade over gpucore.GPUAdapter with alloc / host-device
// copy / kernel-launch / free node kinds, automatic free-node insertion,
// and a Building -> Executable -> Destroyed lifecycle.
//
// spec.md describes this collaborator against a CUDA driver graph API
// (cuGraphAddMemAllocNode, cuGraphAddMemcpyNode, cuGraphAddKernelNode,
// cuGraphAddMemFreeNode, cuGraphInstantiate). The teacher pack has no CUDA
// bindings; its GPU surface is the immediate-mode gpucore.GPUAdapter
// (buffer create/write/read, compute pipeline dispatch, submit/wait-idle).
// This package reconstructs the CUDA graph's record-then-instantiate shape
// on top of that immediate-mode adapter: nodes are recorded with explicit
// dependency edges during Building, and MakeExecutable topologically
// orders them once so Launch replays that fixed order every call (spec.md
// §1 non-goal: "no recompilation across calls").
package devgraph

import (
	"errors"

	"github.com/gogpu/imgxform/internal/gpucore"
)

// State is a Graph's or ExecutableGraph's lifecycle stage (spec.md §4.6
// "Building -> Executable -> Destroyed").
type State int

const (
	StateBuilding State = iota
	StateExecutable
	StateDestroyed
)

// Errors returned by Graph/ExecutableGraph operations.
var (
	ErrWrongState  = errors.New("devgraph: operation not valid in current state")
	ErrUnknownNode = errors.New("devgraph: node index out of range")
	ErrCycle       = errors.New("devgraph: dependency cycle detected")
)

// Kind distinguishes the device-graph node kinds: alloc, host-to-device
// copy, kernel launch, device-to-host copy, and free (the host/device copy
// kind of spec.md §4.6 is split by direction).
type Kind int

const (
	KindAlloc Kind = iota
	KindH2DCopy
	KindKernelLaunch
	KindD2HCopy
	KindFree
)

// HostBuffer is a host-shared byte region copied to/from a device buffer
// by an H2DCopy or D2HCopy node (spec.md §3 "Buffer", §5 aliasing policy).
// The same HostBuffer value may be the target of exactly one H2D or D2H
// node; callers must not mutate Data while a Launch/Synchronize cycle is
// in flight (spec.md §5).
type HostBuffer struct {
	Data []byte
}

// node is the internal record for one device-graph node. Only the fields
// relevant to its Kind are populated.
type node struct {
	kind Kind
	deps []int // node indices that must complete before this node

	// KindAlloc
	bufferID gpucore.BufferID
	size     int
	label    string

	// KindH2DCopy / KindD2HCopy
	allocNode int // index of the alloc node this copy targets
	host      *HostBuffer

	// KindKernelLaunch
	pipeline  gpucore.ComputePipelineID
	bindGroup gpucore.BindGroupID
	grid      [3]uint32

	// KindFree
	freeAlloc int // index of the alloc node being freed
}

// Graph is a device graph under construction (spec.md §4.6 "Building").
// Buffer allocation happens eagerly at AddAlloc time (gpucore.GPUAdapter
// has no deferred/record-only allocation primitive), but every other node
// kind is purely recorded until MakeExecutable orders and freezes them;
// this mirrors how a CUDA graph's memory nodes allocate from a pool that
// exists independently of graph instantiation, while kernel/copy nodes
// only become a fixed command sequence at cuGraphInstantiate.
type Graph struct {
	adapter gpucore.GPUAdapter
	state   State
	nodes   []node
}

// New returns an empty Graph in the Building state, driving adapter for
// any resource creation performed during construction.
func New(adapter gpucore.GPUAdapter) *Graph {
	return &Graph{adapter: adapter, state: StateBuilding}
}

// NodeCount returns the number of nodes recorded so far, including any
// free nodes already inserted.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// AddAlloc allocates sizeBytes on the device and records an alloc node.
// Returns the node index (for use as a dependency/allocNode reference)
// and the allocated BufferID.
func (g *Graph) AddAlloc(sizeBytes int, usage gpucore.BufferUsage, label string) (int, gpucore.BufferID, error) {
	if g.state != StateBuilding {
		return 0, 0, ErrWrongState
	}
	id, err := g.adapter.CreateBuffer(sizeBytes, usage)
	if err != nil {
		return 0, 0, err
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, node{kind: KindAlloc, bufferID: id, size: sizeBytes, label: label})
	return idx, id, nil
}

// AddH2DCopy records a host-to-device copy node writing host.Data into the
// buffer allocated by allocNode. The copy depends on allocNode (the buffer
// must exist) plus any additional deps the caller supplies.
func (g *Graph) AddH2DCopy(allocNode int, host *HostBuffer, deps ...int) (int, error) {
	if g.state != StateBuilding {
		return 0, ErrWrongState
	}
	if allocNode < 0 || allocNode >= len(g.nodes) || g.nodes[allocNode].kind != KindAlloc {
		return 0, ErrUnknownNode
	}
	idx := len(g.nodes)
	all := append([]int{allocNode}, deps...)
	g.nodes = append(g.nodes, node{kind: KindH2DCopy, deps: all, allocNode: allocNode, host: host})
	return idx, nil
}

// AddD2HCopy records a device-to-host copy node reading the buffer
// allocated by allocNode into host.Data, depending on deps (typically the
// producing kernel's launch node) plus allocNode itself.
func (g *Graph) AddD2HCopy(allocNode int, host *HostBuffer, deps ...int) (int, error) {
	if g.state != StateBuilding {
		return 0, ErrWrongState
	}
	if allocNode < 0 || allocNode >= len(g.nodes) || g.nodes[allocNode].kind != KindAlloc {
		return 0, ErrUnknownNode
	}
	idx := len(g.nodes)
	all := append(append([]int{}, deps...), allocNode)
	g.nodes = append(g.nodes, node{kind: KindD2HCopy, deps: all, allocNode: allocNode, host: host})
	return idx, nil
}

// AddKernelLaunch records a kernel launch node. deps must include the
// operation's own alloc node (the output buffer) plus, for every CDG
// dependency the kernel reads from, both that dependency's alloc node
// (the kernel binds its buffer directly) and its producing node (so the
// buffer is populated before this kernel reads it) -- spec.md §4.7 step 4.
func (g *Graph) AddKernelLaunch(pipeline gpucore.ComputePipelineID, bindGroup gpucore.BindGroupID, grid [3]uint32, deps ...int) (int, error) {
	if g.state != StateBuilding {
		return 0, ErrWrongState
	}
	for _, d := range deps {
		if d < 0 || d >= len(g.nodes) {
			return 0, ErrUnknownNode
		}
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, node{
		kind:      KindKernelLaunch,
		deps:      append([]int{}, deps...),
		pipeline:  pipeline,
		bindGroup: bindGroup,
		grid:      grid,
	})
	return idx, nil
}

// InsertFreeNodes appends exactly one free node per alloc node currently in
// the graph (spec.md §4.6). For alloc node A, its free node's predecessors
// are the set of nodes that directly depend on A (every node whose deps
// list contains A's index) -- "the dependents are exactly the nodes that
// may touch the allocation". Call once, after all alloc/copy/kernel nodes
// have been added; calling it twice would double-free.
func (g *Graph) InsertFreeNodes() {
	dependents := make(map[int][]int)
	existing := len(g.nodes)
	for i := 0; i < existing; i++ {
		for _, d := range g.nodes[i].deps {
			if g.nodes[d].kind == KindAlloc {
				dependents[d] = append(dependents[d], i)
			}
		}
	}
	for i := 0; i < existing; i++ {
		if g.nodes[i].kind != KindAlloc {
			continue
		}
		g.nodes = append(g.nodes, node{
			kind:      KindFree,
			deps:      append([]int{}, dependents[i]...),
			freeAlloc: i,
		})
	}
}

// MakeExecutable consumes the Building graph, topologically orders its
// nodes, and returns an instantiated ExecutableGraph (spec.md §4.6
// "make_executable consumes the building form and returns an instantiated
// graph").
func (g *Graph) MakeExecutable() (*ExecutableGraph, error) {
	if g.state != StateBuilding {
		return nil, ErrWrongState
	}
	order, err := topoOrder(g.nodes)
	if err != nil {
		return nil, err
	}
	g.state = StateExecutable
	return &ExecutableGraph{adapter: g.adapter, nodes: g.nodes, order: order, state: StateExecutable}, nil
}

// topoOrder returns a node-index order respecting every dependency edge,
// via Kahn's algorithm. Returns ErrCycle if the recorded edges are not a
// DAG (a build-time bug in the caller, since spec.md's CDG itself is
// acyclic by construction).
func topoOrder(nodes []node) ([]int, error) {
	n := len(nodes)
	indegree := make([]int, n)
	dependents := make([][]int, n)
	for i, nd := range nodes {
		for _, d := range nd.deps {
			dependents[d] = append(dependents[d], i)
			indegree[i]++
		}
	}
	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}
	order := make([]int, 0, n)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		for _, dep := range dependents[i] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if len(order) != n {
		return nil, ErrCycle
	}
	return order, nil
}
