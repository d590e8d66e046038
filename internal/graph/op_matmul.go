package graph

import "fmt"

// MatMul multiplies two tensors with optional implicit transposition of
// either operand and full ONNX-style batch broadcasting of any leading axes.
type MatMul struct {
	opBase
	TransA, TransB bool
	// M, N, K are cached after a successful InferShape, for diagnostics only.
	M, N, K int
}

// NewMatMul constructs a MatMul operator over inputs a, b producing c.
func NewMatMul(a, b, c *Tensor, transA, transB bool) *MatMul {
	return &MatMul{
		opBase: newOpBase([]*Tensor{a, b}, []*Tensor{c}),
		TransA: transA,
		TransB: transB,
	}
}

// Opcode identifies this operator kind.
func (m *MatMul) Opcode() Opcode { return OpcodeMatMul }

// InferShape requires both inputs to have rank >= 2 and matching inner
// dimensions (after applying TransA/TransB), broadcasts any leading batch
// axes, and caches the derived M, N, K.
func (m *MatMul) InferShape(inputs []*Tensor) ([]Shape, bool) {
	if len(inputs) != 2 {
		return nil, false
	}
	aShape := inputs[0].Shape()
	bShape := inputs[1].Shape()
	if len(aShape) < 2 || len(bShape) < 2 {
		return nil, false
	}

	mDim, kA := matmulDims(aShape, m.TransA)
	kB, nDim := matmulDims(bShape, m.TransB)
	if kA != kB {
		return nil, false
	}

	batch, err := Broadcast(aShape[:len(aShape)-2], bShape[:len(bShape)-2])
	if err != nil {
		return nil, false
	}

	out := make(Shape, 0, len(batch)+2)
	out = append(out, batch...)
	out = append(out, mDim, nDim)

	m.M, m.N, m.K = mDim, nDim, kA
	return []Shape{out}, true
}

// matmulDims returns (M, K)-style dimensions for a matmul operand: the last
// two axes of shape, swapped if trans is set.
func matmulDims(shape Shape, trans bool) (int, int) {
	r := len(shape)
	first, second := shape[r-2], shape[r-1]
	if trans {
		return second, first
	}
	return first, second
}

// String renders a diagnostic summary including the cached M/N/K.
func (m *MatMul) String() string {
	return fmt.Sprintf("MatMul[%s](transA=%v,transB=%v,A=%s,B=%s,C=%s,mnk=[%d,%d,%d])",
		m.guid, m.TransA, m.TransB, m.inputs[0].guid, m.inputs[1].guid, m.outputs[0].guid, m.M, m.N, m.K)
}
