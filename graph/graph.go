// Package graph provides the public API for building, shape-inferring,
// rewriting, and memory-planning a computation graph.
//
// The package exposes a bipartite tensor/operator graph: tensors hold
// shape and dtype metadata, operators hold opcode-specific parameters and
// a shape-inference rule. A typical sequence is:
//
//	g := graph.New(host.New())
//	x := g.NewTensor(graph.Shape{2, 3, 4}, graph.Float32)
//	y := g.NewTensor(graph.Shape{2, 4, 3}, graph.Float32)
//	tr, _ := graph.NewTranspose(x, y, []int{0, 2, 1})
//	g.AddOperator(tr)
//	if err := g.ShapeInfer(); err != nil {
//		// handle
//	}
//	g.Optimize()
//	if err := g.DataMalloc(); err != nil {
//		// handle
//	}
package graph

import (
	"github.com/weft-ml/weft/internal/graph"
)

// Shape is an ordered sequence of non-negative axis lengths.
type Shape = graph.Shape

// DataType describes the byte size of a tensor's element type.
type DataType = graph.DataType

// Preset scalar types.
var (
	Float32 DataType = graph.Float32
	Float64 DataType = graph.Float64
	Int32   DataType = graph.Int32
	Int64   DataType = graph.Int64
	Uint8   DataType = graph.Uint8
	Bool    DataType = graph.Bool
)

// Broadcast computes the ONNX-style bidirectional broadcast of two shapes.
func Broadcast(a, b Shape) (Shape, error) { return graph.Broadcast(a, b) }

// RealAxis normalizes a possibly-negative axis against rank.
func RealAxis(axis, rank int) (int, error) { return graph.RealAxis(axis, rank) }

// Locate converts a flat row-major index into a per-axis multi-index.
func Locate(n int, shape Shape) Shape { return graph.Locate(n, shape) }

// Delocate converts a multi-index back into a flat offset given strides.
func Delocate(index, shape Shape, stride []int) int {
	return graph.Delocate(index, shape, stride)
}

// Opcode tags the closed set of operator kinds this package understands.
type Opcode = graph.Opcode

const (
	OpcodeTranspose = graph.OpcodeTranspose
	OpcodeMatMul    = graph.OpcodeMatMul
	OpcodeOpaque    = graph.OpcodeOpaque
)

// Operator is the abstract graph-level contract every operator kind
// satisfies.
type Operator = graph.Operator

// Tensor is a node in the bipartite tensor/operator graph.
type Tensor = graph.Tensor

// Transpose permutes a tensor's axes.
type Transpose = graph.Transpose

// NewTranspose constructs a Transpose operator over input producing output.
func NewTranspose(input, output *Tensor, permute []int) (*Transpose, error) {
	return graph.NewTranspose(input, output, permute)
}

// MatMul multiplies two tensors with optional implicit transposition and
// batch broadcasting.
type MatMul = graph.MatMul

// NewMatMul constructs a MatMul operator over inputs a, b producing c.
func NewMatMul(a, b, c *Tensor, transA, transB bool) *MatMul {
	return graph.NewMatMul(a, b, c, transA, transB)
}

// ShapeInferFunc computes output shapes from an opaque operator's inputs.
type ShapeInferFunc = graph.ShapeInferFunc

// Opaque represents any operator kind outside this package's built-in
// catalog.
type Opaque = graph.Opaque

// NewOpaque constructs an opaque operator tagged for diagnostics.
func NewOpaque(tag string, inputs, outputs []*Tensor, infer ShapeInferFunc) *Opaque {
	return graph.NewOpaque(tag, inputs, outputs, infer)
}

// Runtime is the backing-allocator collaborator a Graph realizes tensor
// storage through.
type Runtime = graph.Runtime

// Device tags a runtime's execution target.
type Device = graph.Device

const DeviceCPU = graph.DeviceCPU

// Blob is the non-owning view a tensor binds to once its graph's backing
// buffer has been realized.
type Blob = graph.Blob

// Graph owns every tensor and operator in a computation, plus the
// allocator and runtime that back its tensors with real memory.
type Graph = graph.Graph

// New constructs an empty graph backed by rt.
func New(rt Runtime) *Graph { return graph.New(rt) }

// Error kinds returned by graph operations.
var (
	ErrStructuralViolation = graph.ErrStructuralViolation
	ErrShapeMismatch       = graph.ErrShapeMismatch
	ErrCycle               = graph.ErrCycle
	ErrAllocAfterRealize   = graph.ErrAllocAfterRealize
	ErrAllocationFailure   = graph.ErrAllocationFailure
)
