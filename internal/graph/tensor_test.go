package graph

import "testing"

func TestTensorByteSize(t *testing.T) {
	tr := newTensor(0, Shape{2, 3, 4}, Float32)
	if got, want := tr.ByteSize(), 24*4; got != want {
		t.Errorf("ByteSize() = %d, want %d", got, want)
	}
}

func TestTensorTargets(t *testing.T) {
	x := newTensor(0, Shape{4}, Float32)
	y := newTensor(1, Shape{4}, Float32)
	tr, err := NewTranspose(x, y, nil)
	if err != nil {
		t.Fatalf("NewTranspose returned error: %v", err)
	}

	x.AddTarget(tr)
	if len(x.Targets()) != 1 || x.Targets()[0] != Operator(tr) {
		t.Fatalf("expected x to target tr, got %v", x.Targets())
	}
	x.AddTarget(tr) // idempotent
	if len(x.Targets()) != 1 {
		t.Fatalf("AddTarget should be idempotent, got %d targets", len(x.Targets()))
	}

	x.RemoveTarget(tr)
	if len(x.Targets()) != 0 {
		t.Fatalf("expected no targets after RemoveTarget, got %v", x.Targets())
	}
}

func TestTensorReplaceConsumerInput(t *testing.T) {
	x := newTensor(0, Shape{4}, Float32)
	y := newTensor(1, Shape{4}, Float32)
	z := newTensor(2, Shape{4}, Float32)
	tr, err := NewTranspose(x, y, nil)
	if err != nil {
		t.Fatalf("NewTranspose returned error: %v", err)
	}
	x.AddTarget(tr)

	x.ReplaceConsumerInput(tr, z)

	if tr.Inputs()[0] != z {
		t.Fatalf("expected tr's input to become z, got %v", tr.Inputs()[0])
	}
	if len(x.Targets()) != 0 {
		t.Fatalf("expected x to lose tr as a target, got %v", x.Targets())
	}
	if len(z.Targets()) != 1 || z.Targets()[0] != Operator(tr) {
		t.Fatalf("expected z to gain tr as a target, got %v", z.Targets())
	}
}
