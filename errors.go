package imgxform

import (
	"errors"
	"fmt"

	"github.com/gogpu/imgxform/internal/devcompiler"
	"github.com/gogpu/imgxform/internal/graph"
)

// CompileError reports that a kernel's device-source body failed to
// compile to SPIR-V. New returns it wrapped in a DeviceError with Op
// "compile", so callers retrieve it with errors.As. It is a re-export of
// internal/devcompiler's error type so callers outside this module never
// need to import an internal package to match on it.
type CompileError = devcompiler.CompileError

// InvariantViolation wraps one of the CDG construction-time invariant
// errors (spec.md §3, §7 "construction-time errors") with the offending
// operation's kind, for callers building graphs dynamically.
type InvariantViolation struct {
	Op  string // the operation kind being constructed, e.g. "h_concat"
	Err error  // one of the graph package's sentinel errors
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("imgxform: %s: %v", e.Op, e.Err)
}

func (e *InvariantViolation) Unwrap() error { return e.Err }

// MissingInput is returned by Transformation.Call when the supplied input
// map omits an input the Transformation was compiled with.
type MissingInput struct {
	Name string
}

func (e *MissingInput) Error() string {
	return fmt.Sprintf("imgxform: missing input %q", e.Name)
}

// ShapeMismatch is returned by Transformation.Call when a supplied input
// image's dimensions or pixel type do not match what the Transformation
// was compiled for (spec.md §3 invariant 5: "declared input pixel type
// must match the dependency's pixel type").
type ShapeMismatch struct {
	Name                  string
	WantWidth, WantHeight int
	GotWidth, GotHeight   int
	WantPixelType         string
	GotPixelType          string
}

func (e *ShapeMismatch) Error() string {
	return fmt.Sprintf(
		"imgxform: input %q shape mismatch: want %dx%d %s, got %dx%d %s",
		e.Name, e.WantWidth, e.WantHeight, e.WantPixelType,
		e.GotWidth, e.GotHeight, e.GotPixelType,
	)
}

// DeviceError wraps a failure surfaced by the underlying device graph
// (buffer allocation, shader compilation, launch, or synchronization).
type DeviceError struct {
	Op  string // e.g. "compile", "launch", "synchronize"
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("imgxform: device %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// wrapInvariant translates one of the graph package's construction
// sentinels into an InvariantViolation tagged with op, leaving any other
// error (e.g. a nil) untouched.
func wrapInvariant(op string, err error) error {
	if err == nil {
		return nil
	}
	var known = []error{
		graph.ErrInvalidDimensions,
		graph.ErrPixelTypeMismatch,
		graph.ErrHeightMismatch,
		graph.ErrWidthMismatch,
		graph.ErrInvalidPatchDimension,
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return &InvariantViolation{Op: op, Err: err}
		}
	}
	return err
}
