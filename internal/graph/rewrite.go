package graph

// optimize runs both rewrite passes to fixpoint, each pass repeating until
// it makes no further change, since eliminating one match can expose
// another.
func (g *Graph) optimize() {
	for g.eliminateInverseTransposes() {
	}
	for g.absorbTransposeIntoMatMul() {
	}
}

// eliminateInverseTransposes finds a Transpose U whose sole consumer is a
// Transpose V whose permutation undoes U's, and splices both out of the
// graph, reconnecting U's producer directly to V's consumers. Returns
// whether it made at least one change.
func (g *Graph) eliminateInverseTransposes() bool {
	changed := false
	snapshot := append([]Operator(nil), g.operators...)
	for _, op := range snapshot {
		u, ok := op.(*Transpose)
		if !ok || !containsOperator(g.operators, u) {
			continue
		}
		mid := u.Outputs()[0]
		if len(mid.Targets()) != 1 {
			continue
		}
		v, ok := mid.Targets()[0].(*Transpose)
		if !ok {
			continue
		}
		if !isLeftInverse(u.Permute, v.Permute) {
			continue
		}
		g.spliceInverseTransposePair(u, v)
		changed = true
	}
	return changed
}

// isLeftInverse reports whether applying permute q after permute p returns
// every axis to its original position: q[p[i]] == i for all i.
func isLeftInverse(p, q []int) bool {
	if len(p) != len(q) {
		return false
	}
	for i, pi := range p {
		if pi < 0 || pi >= len(q) || q[pi] != i {
			return false
		}
	}
	return true
}

// spliceInverseTransposePair removes u and v, whose composition is the
// identity, rewiring v's consumers to read directly from u's producer.
func (g *Graph) spliceInverseTransposePair(u, v *Transpose) {
	x := u.Inputs()[0]
	mid := u.Outputs()[0]
	y := v.Outputs()[0]
	pred := x.Source()

	consumers := append([]Operator(nil), y.Targets()...)
	for _, w := range consumers {
		y.ReplaceConsumerInput(w, x)
	}
	x.RemoveTarget(u)

	successors := append([]Operator(nil), v.Successors()...)
	for _, s := range successors {
		s.removePredecessor(v)
		if pred != nil {
			pred.addSuccessor(s)
			s.addPredecessor(pred)
		}
	}
	if pred != nil {
		pred.removeSuccessor(u)
	}

	g.removeOperators(u, v)
	g.removeTensors(mid, y)
	g.sorted = false
}

// absorbTransposeIntoMatMul finds a MatMul operand that is the sole output
// of a Transpose swapping only the last two axes, and folds that swap into
// the MatMul's TransA/TransB flag instead of materializing it. Returns
// whether it made at least one change.
func (g *Graph) absorbTransposeIntoMatMul() bool {
	changed := false
	snapshot := append([]Operator(nil), g.operators...)
	for _, op := range snapshot {
		m, ok := op.(*MatMul)
		if !ok {
			continue
		}
		if g.tryAbsorbInput(m, 0) {
			changed = true
		}
		if g.tryAbsorbInput(m, 1) {
			changed = true
		}
	}
	return changed
}

// tryAbsorbInput attempts the absorption for the given input slot (0 = A,
// 1 = B) of m, returning whether it fired.
func (g *Graph) tryAbsorbInput(m *MatMul, slot int) bool {
	t := m.Inputs()[slot]
	tr, ok := t.Source().(*Transpose)
	if !ok {
		return false
	}
	if len(t.Targets()) != 1 || t.Targets()[0] != Operator(m) {
		return false
	}
	rank := len(t.Shape())
	if rank < 2 || !isLastTwoSwap(tr.Permute, rank) {
		return false
	}

	u := tr.Inputs()[0]
	predOfU := u.Source()

	ok = m.replaceInput(t, u)
	assertStructural(ok, "absorbTransposeIntoMatMul: matmul %s has no input slot bound to tensor %s", m.GUID(), t.guid)
	t.RemoveTarget(m)
	u.RemoveTarget(tr)
	u.AddTarget(m)

	m.removePredecessor(tr)
	if predOfU != nil {
		predOfU.removeSuccessor(tr)
		predOfU.addSuccessor(m)
		m.addPredecessor(predOfU)
	}

	if slot == 0 {
		m.TransA = !m.TransA
	} else {
		m.TransB = !m.TransB
	}

	g.removeOperators(tr)
	g.removeTensors(t)
	g.sorted = false
	return true
}

// isLastTwoSwap reports whether permute is the identity on every axis
// except the last two, which it swaps.
func isLastTwoSwap(permute []int, rank int) bool {
	if len(permute) != rank {
		return false
	}
	for i := 0; i < rank-2; i++ {
		if permute[i] != i {
			return false
		}
	}
	return permute[rank-2] == rank-1 && permute[rank-1] == rank-2
}
