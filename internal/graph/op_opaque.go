package graph

import "fmt"

// ShapeInferFunc computes output shapes from an opaque operator's inputs,
// returning ok=false for a semantically invalid configuration.
type ShapeInferFunc func(inputs []*Tensor) ([]Shape, bool)

// Opaque represents any operator kind outside this core's catalog, an
// extension point for callers who need to embed operators the rewrite
// engine has no rules for. The rewrite engine never matches on
// OpcodeOpaque — it passes such operators through untouched. A nil infer
// function defaults to an identity pass-through: one output per input,
// same shape.
type Opaque struct {
	opBase
	Tag   string
	infer ShapeInferFunc
}

// NewOpaque constructs an opaque operator tagged for diagnostics.
func NewOpaque(tag string, inputs, outputs []*Tensor, infer ShapeInferFunc) *Opaque {
	return &Opaque{
		opBase: newOpBase(inputs, outputs),
		Tag:    tag,
		infer:  infer,
	}
}

// Opcode identifies this operator kind.
func (o *Opaque) Opcode() Opcode { return OpcodeOpaque }

// InferShape delegates to the supplied function, or passes shapes through
// unchanged one-to-one if none was given.
func (o *Opaque) InferShape(inputs []*Tensor) ([]Shape, bool) {
	if o.infer != nil {
		return o.infer(inputs)
	}
	if len(inputs) != len(o.outputs) {
		return nil, false
	}
	shapes := make([]Shape, len(inputs))
	for i, t := range inputs {
		shapes[i] = t.Shape()
	}
	return shapes, true
}

// String renders a diagnostic summary.
func (o *Opaque) String() string {
	return fmt.Sprintf("Opaque[%s](%s)", o.guid, o.Tag)
}
