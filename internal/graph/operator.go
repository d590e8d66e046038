package graph

// Opcode tags the closed set of operator kinds this core understands: a
// tagged union, not open subclassing.
type Opcode int

const (
	OpcodeTranspose Opcode = iota
	OpcodeMatMul
	OpcodeOpaque
)

// String returns a human-readable opcode name.
func (o Opcode) String() string {
	switch o {
	case OpcodeTranspose:
		return "Transpose"
	case OpcodeMatMul:
		return "MatMul"
	case OpcodeOpaque:
		return "Opaque"
	default:
		return "Unknown"
	}
}

// Operator is the abstract graph-level contract every operator kind
// satisfies: opcode, ordered input/output tensors, predecessor and
// successor sets, and a shape-inference hook. The unexported methods
// are the graph's wiring surface — only Graph and the rewrite engine call
// them, never client code.
type Operator interface {
	Opcode() Opcode
	Inputs() []*Tensor
	Outputs() []*Tensor
	Predecessors() []Operator
	Successors() []Operator
	InferShape(inputs []*Tensor) ([]Shape, bool)
	GUID() string

	addPredecessor(op Operator)
	addSuccessor(op Operator)
	removePredecessor(op Operator)
	removeSuccessor(op Operator)
	replaceInput(old, newT *Tensor) bool
}

// opBase implements the shared bookkeeping every concrete operator kind
// embeds: identity, input/output lists, and predecessor/successor sets.
type opBase struct {
	guid    string
	inputs  []*Tensor
	outputs []*Tensor
	preds   []Operator
	succs   []Operator
}

func newOpBase(inputs, outputs []*Tensor) opBase {
	return opBase{guid: newGUID(), inputs: inputs, outputs: outputs}
}

func (b *opBase) GUID() string             { return b.guid }
func (b *opBase) Inputs() []*Tensor        { return b.inputs }
func (b *opBase) Outputs() []*Tensor       { return b.outputs }
func (b *opBase) Predecessors() []Operator { return b.preds }
func (b *opBase) Successors() []Operator   { return b.succs }

func (b *opBase) addPredecessor(op Operator) {
	if !containsOperator(b.preds, op) {
		b.preds = append(b.preds, op)
	}
}

func (b *opBase) addSuccessor(op Operator) {
	if !containsOperator(b.succs, op) {
		b.succs = append(b.succs, op)
	}
}

func (b *opBase) removePredecessor(op Operator) {
	b.preds = removeOperator(b.preds, op)
}

func (b *opBase) removeSuccessor(op Operator) {
	b.succs = removeOperator(b.succs, op)
}

func (b *opBase) replaceInput(old, newT *Tensor) bool {
	for i, t := range b.inputs {
		if t == old {
			b.inputs[i] = newT
			return true
		}
	}
	return false
}

func containsOperator(list []Operator, op Operator) bool {
	for _, o := range list {
		if o == op {
			return true
		}
	}
	return false
}

func removeOperator(list []Operator, op Operator) []Operator {
	out := list[:0]
	for _, o := range list {
		if o != op {
			out = append(out, o)
		}
	}
	return out
}
