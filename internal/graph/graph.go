package graph

import "fmt"

// Graph owns every tensor and operator in a computation, plus the
// allocator and runtime that will eventually back its tensors with real
// memory. Tensors and operators are exclusively owned by the graph that
// created them; callers reach them only through the Graph API.
type Graph struct {
	tensors   []*Tensor
	operators []Operator
	sorted    bool
	allocator *Allocator
	runtime   Runtime
	nextFUID  uint64
}

// New constructs an empty graph backed by rt.
func New(rt Runtime) *Graph {
	return &Graph{
		runtime:   rt,
		allocator: NewAllocator(rt),
	}
}

// NewTensor allocates a fresh leaf tensor with no producer, registers it
// with the graph, and returns it. If an operator that produces it is added
// later, ShapeInfer may replace its shape.
func (g *Graph) NewTensor(shape Shape, dtype DataType) *Tensor {
	t := newTensor(g.nextFUID, shape, dtype)
	g.nextFUID++
	g.tensors = append(g.tensors, t)
	return t
}

// AddOperator registers op with the graph and wires its predecessor,
// successor, source, and target links from its already-bound input and
// output tensors. Any tensor referenced by op's inputs or outputs that the
// graph does not already own is adopted into it.
func (g *Graph) AddOperator(op Operator) {
	for _, in := range op.Inputs() {
		g.adopt(in)
		in.AddTarget(op)
		if pred := in.Source(); pred != nil {
			pred.addSuccessor(op)
			op.addPredecessor(pred)
		}
	}
	for _, out := range op.Outputs() {
		g.adopt(out)
		out.SetSource(op)
		for _, consumer := range out.Targets() {
			op.addSuccessor(consumer)
			consumer.addPredecessor(op)
		}
	}
	g.operators = append(g.operators, op)
	g.sorted = false
}

func (g *Graph) adopt(t *Tensor) {
	for _, existing := range g.tensors {
		if existing == t {
			return
		}
	}
	g.tensors = append(g.tensors, t)
}

// Tensors returns every tensor the graph owns, in creation order.
func (g *Graph) Tensors() []*Tensor { return g.tensors }

// Operators returns every operator the graph owns, in insertion order
// (or topological order, once TopoSort has run and no rewrite has since
// invalidated it).
func (g *Graph) Operators() []Operator { return g.operators }

// TensorByFUID looks up a tensor by its functional identity.
func (g *Graph) TensorByFUID(fuid uint64) (*Tensor, bool) {
	for _, t := range g.tensors {
		if t.fuid == fuid {
			return t, true
		}
	}
	return nil, false
}

// CheckValid re-derives every structural invariant this package promises
// to maintain: every tensor has at most one source, every producer/consumer
// edge is mirrored at the operator level, and fuids are unique. It returns
// a wrapped ErrStructuralViolation on the first inconsistency found rather
// than panicking, since this is meant to be callable defensively (e.g. from
// tests) against a graph whose invariants are in doubt.
func (g *Graph) CheckValid() error {
	seenFUID := make(map[uint64]bool, len(g.tensors))
	for _, t := range g.tensors {
		if seenFUID[t.fuid] {
			return fmt.Errorf("%w: duplicate fuid %d", ErrStructuralViolation, t.fuid)
		}
		seenFUID[t.fuid] = true

		if src := t.Source(); src != nil {
			if !hasOutput(src, t) {
				return fmt.Errorf("%w: tensor %s claims source %s but is not among its outputs",
					ErrStructuralViolation, t.guid, src.GUID())
			}
		}
		for _, consumer := range t.Targets() {
			if !hasInput(consumer, t) {
				return fmt.Errorf("%w: tensor %s claims target %s but is not among its inputs",
					ErrStructuralViolation, t.guid, consumer.GUID())
			}
		}
	}

	for _, op := range g.operators {
		for _, in := range op.Inputs() {
			if pred := in.Source(); pred != nil {
				if !containsOperator(op.Predecessors(), pred) {
					return fmt.Errorf("%w: operator %s consumes tensor %s from %s but predecessor edge is missing",
						ErrStructuralViolation, op.GUID(), in.guid, pred.GUID())
				}
			}
		}
		for _, out := range op.Outputs() {
			for _, consumer := range out.Targets() {
				if !containsOperator(op.Successors(), consumer) {
					return fmt.Errorf("%w: operator %s produces tensor %s consumed by %s but successor edge is missing",
						ErrStructuralViolation, op.GUID(), out.guid, consumer.GUID())
				}
			}
		}
		for _, pred := range op.Predecessors() {
			if !containsOperator(pred.Successors(), op) {
				return fmt.Errorf("%w: operator %s lists predecessor %s that does not list it as a successor",
					ErrStructuralViolation, op.GUID(), pred.GUID())
			}
		}
		for _, succ := range op.Successors() {
			if !containsOperator(succ.Predecessors(), op) {
				return fmt.Errorf("%w: operator %s lists successor %s that does not list it as a predecessor",
					ErrStructuralViolation, op.GUID(), succ.GUID())
			}
		}
	}
	return nil
}

func hasOutput(op Operator, t *Tensor) bool {
	for _, o := range op.Outputs() {
		if o == t {
			return true
		}
	}
	return false
}

func hasInput(op Operator, t *Tensor) bool {
	for _, i := range op.Inputs() {
		if i == t {
			return true
		}
	}
	return false
}

func hasTensorEdge(producer, consumer Operator) bool {
	for _, out := range producer.Outputs() {
		for _, in := range consumer.Inputs() {
			if out == in {
				return true
			}
		}
	}
	return false
}

// TopoSort orders the graph's operators via Kahn's algorithm, breaking
// ties by original insertion order for determinism. On success it
// reorders g.operators in place and marks the graph sorted; on a cycle it
// returns a wrapped ErrCycle and leaves g.operators untouched.
func (g *Graph) TopoSort() error {
	if g.sorted {
		return nil
	}

	indegree := make(map[Operator]int, len(g.operators))
	for _, op := range g.operators {
		indegree[op] = len(op.Predecessors())
	}

	queue := make([]Operator, 0, len(g.operators))
	for _, op := range g.operators {
		if indegree[op] == 0 {
			queue = append(queue, op)
		}
	}

	order := make([]Operator, 0, len(g.operators))
	for len(queue) > 0 {
		op := queue[0]
		queue = queue[1:]
		order = append(order, op)
		for _, succ := range op.Successors() {
			indegree[succ]--
			if indegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(order) != len(g.operators) {
		return fmt.Errorf("%w: %d of %d operators are reachable from a zero-indegree root",
			ErrCycle, len(order), len(g.operators))
	}

	g.operators = order
	g.sorted = true
	return nil
}

// ShapeInfer topologically sorts the graph if needed, then computes every
// operator's output shapes in order, propagating each result to its
// output tensors before the next operator runs.
func (g *Graph) ShapeInfer() error {
	if err := g.TopoSort(); err != nil {
		return err
	}
	for _, op := range g.operators {
		shapes, ok := op.InferShape(op.Inputs())
		if !ok {
			return fmt.Errorf("%w: shape inference failed for operator %s", ErrShapeMismatch, op.GUID())
		}
		outputs := op.Outputs()
		if len(shapes) != len(outputs) {
			return fmt.Errorf("%w: operator %s produced %d shapes for %d outputs",
				ErrShapeMismatch, op.GUID(), len(shapes), len(outputs))
		}
		for i, out := range outputs {
			out.SetShape(shapes[i])
		}
	}
	return nil
}

// Optimize runs the graph's algebraic rewrite passes to fixpoint.
func (g *Graph) Optimize() {
	g.optimize()
}

// DataMalloc allocates every tensor the graph owns, in tensor-list order,
// then realizes the single backing buffer and binds each tensor's Blob.
// It never frees: every tensor gets its own disjoint region of the arena,
// so no two tensors ever alias the same bytes. The allocator's free-list
// machinery exists for a future liveness-aware pass to build on; this
// pass doesn't exercise it.
func (g *Graph) DataMalloc() error {
	if err := g.TopoSort(); err != nil {
		return err
	}

	offsets := make([]int, len(g.tensors))
	for i, t := range g.tensors {
		off, err := g.allocator.Alloc(t.ByteSize())
		if err != nil {
			return err
		}
		offsets[i] = off
	}

	base, err := g.allocator.Realize()
	if err != nil {
		return err
	}
	for i, t := range g.tensors {
		t.SetBlob(Blob{runtime: g.runtime, base: base, offset: offsets[i]})
	}
	return nil
}

// AllocatorStats reports the backing allocator's current used and
// peak byte counts.
func (g *Graph) AllocatorStats() (used, peak int) {
	return g.allocator.Stats()
}

// String renders every operator in the graph in order, one per line.
func (g *Graph) String() string {
	s := fmt.Sprintf("Graph{tensors=%d, operators=%d}", len(g.tensors), len(g.operators))
	for _, op := range g.operators {
		s += "\n  " + fmt.Sprint(op)
	}
	return s
}

func (g *Graph) removeOperators(ops ...Operator) {
	for _, op := range ops {
		g.operators = removeOperator(g.operators, op)
	}
}

func (g *Graph) removeTensors(ts ...*Tensor) {
	for _, t := range ts {
		for i, existing := range g.tensors {
			if existing == t {
				g.tensors = append(g.tensors[:i], g.tensors[i+1:]...)
				break
			}
		}
	}
}
