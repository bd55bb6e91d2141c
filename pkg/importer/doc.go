// Package importer converts a raw operator trace into a [graph.Graph].
//
// # Overview
//
// [Import] invokes a [trace.Tracer] once, then walks the recorded operators
// and builds one node per operator and one edge per data dependency:
//
//   - Identity: [NodeID] joins the operator's scope with its output slot ids,
//     so operators that share a scope still get distinct IDs.
//   - Shape: a [ShapeExtractor] reads the first output's shape. The default
//     [ReprShape] scrapes "Float(...)" from the tracer's text dump and yields
//     nil when nothing parses.
//   - Parameters: a [ParamExtractor] fills a fresh map per node. The default
//     [GemmParams] handles onnx::Gemm (alpha, beta, transB) only.
//   - Edges: [InferEdges] links a producer to a consumer whenever one of the
//     producer's output slots is among the consumer's inputs. Each such pair
//     yields exactly one edge carrying the producer's shape.
//
// # Failure Semantics
//
// Shape extraction never fails. Parameter extraction fails only for a Gemm
// whose attribute block is missing or malformed. A tracer error is returned
// to the caller unchanged.
//
// An operator whose ID is already taken, typically a second output-less
// operator in the same scope, is kept under the ID suffixed with "#" and its
// operator index, and a warning is logged.
//
// # Usage
//
//	g, err := importer.Import(ctx, trace.FileTracer{}, "resnet18.json", nil, nil, importer.Options{
//	    InputNames: []string{"image"},
//	})
//	if err != nil {
//	    return err
//	}
//	transform.Apply(g, transform.FrameworkTransforms()...)
//
// [graph.Graph]: github.com/matzehuels/tracegraph/pkg/graph.Graph
package importer
