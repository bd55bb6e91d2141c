package trace

// Value is one tensor produced by an operator.
type Value struct {
	// ID is the tensor-slot identifier, unique within one trace.
	ID int `json:"id" yaml:"id"`
	// Repr is the tracer's textual dump of the value, e.g.
	// "%5 : Float(1, 64, 112, 112) = onnx::Conv[...]". It is the only
	// source of shape information.
	Repr string `json:"repr,omitempty" yaml:"repr,omitempty"`
}

// Operator is one operator instance in a raw trace. Operators are read-only
// input to the importer.
type Operator struct {
	// Kind is the namespaced operator type, e.g. "onnx::Conv".
	Kind string `json:"kind" yaml:"kind"`
	// Scope is the module hierarchy the operator was invoked in. Siblings in
	// the same module share it.
	Scope string `json:"scope" yaml:"scope"`
	// Inputs are the tensor-slot identifiers consumed, in declared order.
	Inputs []int `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	// Outputs are the tensors produced, in declared order.
	Outputs []Value `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	// Repr is the textual dump of the whole operator.
	Repr string `json:"repr,omitempty" yaml:"repr,omitempty"`
	// Attributes are structured operator parameters, when the tracer
	// exposes them. Most tracers do not.
	Attributes map[string]float64 `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// OutputIDs returns the tensor-slot identifiers of the operator's outputs in
// declared order.
func (op Operator) OutputIDs() []int {
	ids := make([]int, len(op.Outputs))
	for i, o := range op.Outputs {
		ids[i] = o.ID
	}
	return ids
}

// FirstOutput returns the first declared output and true, or a zero Value and
// false when the operator has no outputs.
func (op Operator) FirstOutput() (Value, bool) {
	if len(op.Outputs) == 0 {
		return Value{}, false
	}
	return op.Outputs[0], true
}

// Trace is a recording of the operators executed by one forward pass.
type Trace struct {
	// Operators in execution order.
	Operators []Operator `json:"operators" yaml:"operators"`
	// InputNames optionally names the model inputs.
	InputNames []string `json:"input_names,omitempty" yaml:"input_names,omitempty"`
}

// Len returns the number of operators in the trace.
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Operators)
}
