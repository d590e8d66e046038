package graph

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Error kinds. ShapeMismatch, Cycle, and AllocationFailure are
// data-dependent and meant to be recoverable by the caller. StructuralViolation
// and AllocAfterRealize indicate misuse the core treats as a programming
// error: they are asserted at boundaries rather than threaded through as
// ordinary control flow.
var (
	ErrStructuralViolation = errors.New("graph: structural violation")
	ErrShapeMismatch       = errors.New("graph: shape mismatch")
	ErrCycle               = errors.New("graph: cycle detected")
	ErrAllocAfterRealize   = errors.New("graph: alloc/free requested after realize")
	ErrAllocationFailure   = errors.New("graph: backing allocation failed")
)

// assertStructural panics with a stack-carrying cause when an invariant this
// package itself is responsible for maintaining doesn't hold. It is not for
// validating caller input — CheckValid returns a plain error for that.
func assertStructural(cond bool, format string, args ...any) {
	if cond {
		return
	}
	cause := pkgerrors.Errorf(format, args...)
	panic(fmt.Sprintf("%v: %+v", ErrStructuralViolation, cause))
}

// assertNotRealized panics with a stack-carrying cause wrapping
// ErrAllocAfterRealize when the allocator's backing buffer has already
// been realized and verb is attempted against it anyway.
func assertNotRealized(realized bool, verb string) {
	if !realized {
		return
	}
	cause := pkgerrors.Errorf("%s called after Realize", verb)
	panic(fmt.Sprintf("%v: %+v", ErrAllocAfterRealize, cause))
}
