// Package devcompiler implements the device compiler bridge (spec.md C5):
// it drives an external device-source compiler over a synthesized
// WGSL kernel and returns a SPIR-V artifact, or a CompileError carrying
// the compiler's diagnostics on failure.
//
// spec.md describes this collaborator in CUDA terms (a device-source
// compiler emitting PTX text at a fixed compute-capability target); this
// module realizes it on the teacher's gogpu/naga WGSL-to-SPIR-V compiler,
// exactly as internal/native.CompileShaderToSPIRV in the teacher pack
// invokes it (see DESIGN.md).
package devcompiler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/imgxform/cache"
)

// CompileError wraps a failure from the external device-source compiler
// (spec.md §7 "CompileError { stderr }"). Fatal to Transformation.New.
type CompileError struct {
	// Source is the WGSL source text that failed to compile, kept for
	// diagnostics (e.g. dumping to a temp file for inspection).
	Source string
	// Stderr carries naga's compiler diagnostics.
	Stderr string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("devcompiler: compile failed: %s", e.Stderr)
}

// CompileError carries no underlying error value and has no Unwrap
// method; callers match on *CompileError directly (errors.As works through
// any wrapper that does unwrap to it).

// Target is the fixed compile target recorded once, mirroring spec.md
// §4.5's "fixed target (PTX 64-bit, device compute capability 7.5,
// optimization enabled, no LTO)" — translated to the WGSL/SPIR-V stack as
// a fixed naga invocation with no per-call configuration surface. There is
// nothing to parameterize: naga.Compile takes no options, so Target exists
// to document the fixed target rather than to carry fields.
type Target struct{}

// DefaultTarget is the only supported compile target.
var DefaultTarget = Target{}

// Compiler compiles WGSL device-source text to SPIR-V, caching by a
// content hash of the source (spec.md §9: "caching by hash of the source
// text is permitted but not required" — SPEC_FULL.md §5 supplements this
// as implemented).
//
// Compiler is safe for concurrent use; the underlying cache is the
// sharded, hit/miss-counting top-level cache.ShardedCache keyed by hex
// SHA-256, giving Transformation.Stats() real cache hit/miss counters.
type Compiler struct {
	cache   *cache.ShardedCache[string, []uint32]
	compile func(source string) ([]byte, error)
}

// New returns a Compiler with a compile cache of the given per-shard
// capacity (see cache.NewSharded); a capacity <= 0 selects
// cache.DefaultCapacity. A process compiles a small, fixed set of kernels
// once per Transformation build, so the default is ample headroom.
func New(cacheCapacity int) *Compiler {
	return &Compiler{
		cache:   cache.NewSharded[string, []uint32](cacheCapacity, cache.StringHasher),
		compile: naga.Compile,
	}
}

// Compile translates WGSL source to SPIR-V words, or a *CompileError on
// failure. Two calls with textually identical source return the cached
// artifact without re-invoking naga (spec.md §4.4's purity requirement on
// codegen output is what makes this safe: identical geometry/body always
// synthesizes identical source).
func (c *Compiler) Compile(source string) ([]uint32, error) {
	key := hashSource(source)
	if words, ok := c.cache.Get(key); ok {
		return words, nil
	}

	spirvBytes, err := c.compile(source)
	if err != nil {
		return nil, &CompileError{Source: source, Stderr: err.Error()}
	}

	words := bytesToSPIRVWords(spirvBytes)
	c.cache.Set(key, words)
	return words, nil
}

// Stats returns the compile cache's hit/miss statistics.
func (c *Compiler) Stats() cache.Stats {
	return c.cache.Stats()
}

// newWithCompileFunc returns a Compiler backed by fn instead of
// naga.Compile, for tests that need to assert cache behavior or error
// propagation without depending on a real WGSL compiler's acceptance of
// specific source text.
func newWithCompileFunc(cacheCapacity int, fn func(string) ([]byte, error)) *Compiler {
	c := New(cacheCapacity)
	c.compile = fn
	return c
}

func hashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// bytesToSPIRVWords packs a little-endian SPIR-V byte stream into 32-bit
// words, the form gpucore.GPUAdapter.CreateShaderModule expects — the
// exact conversion internal/native.CompileShaderToSPIRV performs in the
// teacher pack.
func bytesToSPIRVWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}
