package graph

// Tensor is a node in the bipartite tensor/operator graph. It carries a
// stable diagnostic identity (guid), a stable functional identity that
// survives shape edits (fuid), a shape, a dtype, at most one producing
// operator, an unordered set of consuming operators, and an optional bound
// buffer view. Tensors are owned exclusively by the Graph that created them;
// source/targets are non-owning back-references.
type Tensor struct {
	guid    string
	fuid    uint64
	shape   Shape
	dtype   DataType
	source  Operator
	targets []Operator
	blob    *Blob
}

func newTensor(fuid uint64, shape Shape, dtype DataType) *Tensor {
	return &Tensor{
		guid:  newGUID(),
		fuid:  fuid,
		shape: shape.Clone(),
		dtype: dtype,
	}
}

// GUID returns the tensor's diagnostic-only identity.
func (t *Tensor) GUID() string { return t.guid }

// FUID returns the tensor's functional identity, stable across shape edits.
func (t *Tensor) FUID() uint64 { return t.fuid }

// Shape returns the tensor's current shape.
func (t *Tensor) Shape() Shape { return t.shape }

// SetShape replaces the tensor's shape.
func (t *Tensor) SetShape(s Shape) { t.shape = s.Clone() }

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType { return t.dtype }

// Source returns the operator that produces this tensor, or nil for a leaf
// (graph-input) tensor.
func (t *Tensor) Source() Operator { return t.source }

// SetSource binds the tensor's producing operator.
func (t *Tensor) SetSource(op Operator) { t.source = op }

// Targets returns the set of operators that consume this tensor.
func (t *Tensor) Targets() []Operator { return t.targets }

// AddTarget registers op as a consumer of this tensor, if not already present.
func (t *Tensor) AddTarget(op Operator) {
	if !containsOperator(t.targets, op) {
		t.targets = append(t.targets, op)
	}
}

// RemoveTarget unregisters op as a consumer of this tensor.
func (t *Tensor) RemoveTarget(op Operator) {
	t.targets = removeOperator(t.targets, op)
}

// Blob returns the tensor's bound buffer view, if data_malloc has run.
func (t *Tensor) Blob() (Blob, bool) {
	if t.blob == nil {
		return Blob{}, false
	}
	return *t.blob, true
}

// SetBlob binds the tensor to a realized buffer window.
func (t *Tensor) SetBlob(b Blob) { t.blob = &b }

// ByteSize returns the number of bytes this tensor occupies: element size
// times element count.
func (t *Tensor) ByteSize() int { return t.dtype.ElemSize() * t.shape.NumElements() }

// ReplaceConsumerInput rewires op's input slot from this tensor to newT,
// keeping both tensors' target sets in sync. Used by the graph's rewrite
// engine when splicing operators out of the graph.
func (t *Tensor) ReplaceConsumerInput(op Operator, newT *Tensor) {
	ok := op.replaceInput(t, newT)
	assertStructural(ok, "replace_input_on: operator %s has no input slot bound to tensor %s", op.GUID(), t.guid)
	t.RemoveTarget(op)
	newT.AddTarget(op)
}
