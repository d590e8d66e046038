package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTranspose(t *testing.T, g *Graph, in *Tensor, permute []int, outShape Shape) (*Tensor, *Transpose) {
	t.Helper()
	out := g.NewTensor(outShape, in.DType())
	tr, err := NewTranspose(in, out, permute)
	require.NoError(t, err)
	g.AddOperator(tr)
	return out, tr
}

func TestGraphCheckValidEmpty(t *testing.T) {
	g := New(NewHostRuntime())
	assert.NoError(t, g.CheckValid())
}

func TestGraphAddOperatorWiring(t *testing.T) {
	g := New(NewHostRuntime())
	x := g.NewTensor(Shape{2, 3}, Float32)
	y, tr := buildTranspose(t, g, x, []int{1, 0}, Shape{3, 2})

	require.NoError(t, g.CheckValid())
	assert.Equal(t, Operator(tr), x.Targets()[0])
	assert.Equal(t, Operator(tr), y.Source())
}

func TestGraphTopoSortDeterministic(t *testing.T) {
	g := New(NewHostRuntime())
	x := g.NewTensor(Shape{2, 3}, Float32)
	y, tr1 := buildTranspose(t, g, x, []int{1, 0}, Shape{3, 2})
	_, tr2 := buildTranspose(t, g, y, []int{1, 0}, Shape{2, 3})

	require.NoError(t, g.TopoSort())
	order := g.Operators()
	require.Len(t, order, 2)
	assert.Same(t, tr1, order[0])
	assert.Same(t, tr2, order[1])
}

func TestGraphTopoSortCycle(t *testing.T) {
	g := New(NewHostRuntime())
	x := g.NewTensor(Shape{2, 3}, Float32)
	y := g.NewTensor(Shape{3, 2}, Float32)
	tr1, err := NewTranspose(x, y, []int{1, 0})
	require.NoError(t, err)
	tr2, err := NewTranspose(y, x, []int{1, 0})
	require.NoError(t, err)
	g.AddOperator(tr1)
	g.AddOperator(tr2)

	before := append([]Operator(nil), g.Operators()...)
	err = g.TopoSort()
	assert.ErrorIs(t, err, ErrCycle)
	assert.Equal(t, before, g.Operators(), "operator order must be untouched on cycle failure")
}

func TestGraphShapeInfer(t *testing.T) {
	g := New(NewHostRuntime())
	x := g.NewTensor(Shape{2, 3, 4}, Float32)
	y, _ := buildTranspose(t, g, x, []int{0, 2, 1}, Shape{0, 0, 0})

	require.NoError(t, g.ShapeInfer())
	assert.True(t, y.Shape().Equal(Shape{2, 4, 3}))
}

func TestGraphMatMulBatchBroadcast(t *testing.T) {
	g := New(NewHostRuntime())
	a := g.NewTensor(Shape{8, 1, 6, 4}, Float32)
	b := g.NewTensor(Shape{1, 7, 4, 5}, Float32)
	c := g.NewTensor(Shape{0}, Float32)
	mm := NewMatMul(a, b, c, false, false)
	g.AddOperator(mm)

	require.NoError(t, g.ShapeInfer())
	assert.True(t, c.Shape().Equal(Shape{8, 7, 6, 5}))
	assert.Equal(t, 6, mm.M)
	assert.Equal(t, 5, mm.N)
	assert.Equal(t, 4, mm.K)
}

func TestGraphMatMulTransposedOperands(t *testing.T) {
	g := New(NewHostRuntime())
	a := g.NewTensor(Shape{4, 6}, Float32) // transA -> (6, 4)
	b := g.NewTensor(Shape{5, 4}, Float32) // transB -> (4, 5)
	c := g.NewTensor(Shape{0}, Float32)
	mm := NewMatMul(a, b, c, true, true)
	g.AddOperator(mm)

	require.NoError(t, g.ShapeInfer())
	assert.True(t, c.Shape().Equal(Shape{6, 5}))
}

func TestOptimizeEliminatesInverseTransposePair(t *testing.T) {
	g := New(NewHostRuntime())
	x := g.NewTensor(Shape{2, 3}, Float32)
	mid := g.NewTensor(Shape{3, 2}, Float32)
	y := g.NewTensor(Shape{2, 3}, Float32)
	out := g.NewTensor(Shape{2, 3}, Float32)

	tr1, err := NewTranspose(x, mid, []int{1, 0})
	require.NoError(t, err)
	tr2, err := NewTranspose(mid, y, []int{1, 0})
	require.NoError(t, err)
	relu := NewOpaque("relu", []*Tensor{y}, []*Tensor{out}, nil)
	g.AddOperator(tr1)
	g.AddOperator(tr2)
	g.AddOperator(relu)

	require.NoError(t, g.ShapeInfer())
	g.Optimize()
	require.NoError(t, g.CheckValid())

	assert.Len(t, g.Operators(), 1)
	assert.Same(t, Operator(relu), g.Operators()[0])
	assert.Equal(t, Operator(relu), x.Targets()[0])
	assert.Same(t, relu.Inputs()[0], x)
}

func TestOptimizeAbsorbsTransposeIntoMatMul(t *testing.T) {
	g := New(NewHostRuntime())
	a := g.NewTensor(Shape{4, 6}, Float32)
	aT := g.NewTensor(Shape{6, 4}, Float32)
	b := g.NewTensor(Shape{4, 5}, Float32)
	c := g.NewTensor(Shape{0}, Float32)

	tr, err := NewTranspose(a, aT, []int{1, 0})
	require.NoError(t, err)
	mm := NewMatMul(aT, b, c, false, false)
	g.AddOperator(tr)
	g.AddOperator(mm)

	require.NoError(t, g.ShapeInfer())
	g.Optimize()
	require.NoError(t, g.CheckValid())

	assert.Len(t, g.Operators(), 1)
	assert.Same(t, Operator(mm), g.Operators()[0])
	assert.True(t, mm.TransA)
	assert.Same(t, mm.Inputs()[0], a)
}

func TestOptimizeDoesNotAbsorbSharedTranspose(t *testing.T) {
	g := New(NewHostRuntime())
	a := g.NewTensor(Shape{4, 6}, Float32)
	aT := g.NewTensor(Shape{6, 4}, Float32)
	b := g.NewTensor(Shape{4, 5}, Float32)
	c := g.NewTensor(Shape{0}, Float32)
	other := g.NewTensor(Shape{0}, Float32)

	tr, err := NewTranspose(a, aT, []int{1, 0})
	require.NoError(t, err)
	mm := NewMatMul(aT, b, c, false, false)
	sink := NewOpaque("sink", []*Tensor{aT}, []*Tensor{other}, nil)
	g.AddOperator(tr)
	g.AddOperator(mm)
	g.AddOperator(sink)

	require.NoError(t, g.ShapeInfer())
	g.Optimize()
	require.NoError(t, g.CheckValid())

	assert.Len(t, g.Operators(), 3, "absorption must not fire when the transpose output has another consumer")
	assert.False(t, mm.TransA)
}

func TestOptimizeIsIdempotent(t *testing.T) {
	g := New(NewHostRuntime())
	x := g.NewTensor(Shape{2, 3}, Float32)
	midT, _ := buildTranspose(t, g, x, []int{1, 0}, Shape{3, 2})
	buildTranspose(t, g, midT, []int{1, 0}, Shape{2, 3})

	require.NoError(t, g.ShapeInfer())
	g.Optimize()
	firstCount := len(g.Operators())
	g.Optimize()
	assert.Len(t, g.Operators(), firstCount, "a second Optimize pass over a fixpoint graph must be a no-op")
}

func TestGraphDataMallocBindsBlobs(t *testing.T) {
	g := New(NewHostRuntime())
	x := g.NewTensor(Shape{2, 3}, Float32)
	y, _ := buildTranspose(t, g, x, []int{1, 0}, Shape{0, 0})

	require.NoError(t, g.ShapeInfer())
	require.NoError(t, g.DataMalloc())

	_, ok := x.Blob()
	assert.True(t, ok)
	_, ok = y.Blob()
	assert.True(t, ok)
}
