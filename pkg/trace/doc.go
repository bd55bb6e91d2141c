// Package trace models the raw operator list recorded by a model tracer.
//
// # Overview
//
// A tracer runs a model forward pass once and records every operator it
// executes. Each [Operator] names its kind ("onnx::Conv"), the module scope
// it ran in, the tensor-slot identifiers it consumed, and the tensors it
// produced. There is no explicit edge list: data flow is implied by slot
// identity, and shapes are only available inside free-form text.
//
// The tracer itself is an external collaborator behind the [Tracer]
// interface. Two implementations ship with this package:
//
//   - [Recorded] returns an in-memory trace
//   - [FileTracer] replays a trace recorded to a JSON or YAML file
//
// # File Format
//
// Recorded traces use the same schema in JSON and YAML:
//
//	operators:
//	  - kind: onnx::Conv
//	    scope: Net/Conv2d[conv1]
//	    inputs: [0, 1, 2]
//	    outputs:
//	      - id: 5
//	        repr: "%5 : Float(1, 8, 4, 4) = onnx::Conv(%0, %1, %2)"
//	    repr: "%5 : Float(1, 8, 4, 4) = onnx::Conv[kernel_shape=[3, 3]](%0, %1, %2)"
//	input_names: [image]
//
// Use [ReadFile] to load either format by extension, or [ReadJSON] and
// [ReadYAML] for readers.
//
// # Diagnostics
//
// [Dump] prints a fixed-width table of every operator's kind, scope and
// slot identifiers. It is what the importer writes in verbose mode.
package trace
