// Package pkg provides the core libraries for tracegraph operator graphs.
//
// # Overview
//
// tracegraph turns a recorded model trace into a directed graph of operators:
// one node per traced operator, one edge wherever an operator consumes a value
// another operator produced. Operator names are then normalized by a list of
// rename rules and the graph is written as JSON, DOT or SVG.
//
// # Architecture
//
// The typical data flow:
//
//	Recorded trace (JSON/YAML)
//	         ↓
//	    [trace] package (operators, value slots, tracers)
//	         ↓
//	    [importer] package (node ids, shapes, params, edge inference)
//	         ↓
//	    [transform] package (rename rules)
//	         ↓
//	    [io] / [render/nodelink] packages (JSON, DOT, SVG)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "os"
//	    "github.com/matzehuels/tracegraph/pkg/importer"
//	    "github.com/matzehuels/tracegraph/pkg/io"
//	    "github.com/matzehuels/tracegraph/pkg/trace"
//	    "github.com/matzehuels/tracegraph/pkg/transform"
//	)
//
//	// 1. Import a recorded trace
//	g, _ := importer.Import(context.Background(), trace.FileTracer{}, "convnet.json", nil, nil, importer.Options{})
//
//	// 2. Normalize operator names
//	transform.Apply(g, transform.FrameworkTransforms()...)
//
//	// 3. Write node-link JSON
//	io.WriteJSON(g, os.Stdout)
//
// # Main Packages
//
// [graph] - Ordered directed multigraph of operator nodes with shaped edges.
//
// [trace] - Trace data model, JSON/YAML codecs, the [trace.Tracer] seam and
// the diagnostic operator dump.
//
// [importer] - Builds a graph from a trace: node ids, shape and Gemm param
// extraction, intersection-based edge inference.
//
// [transform] - Full-match rename rules, the canonical framework rule list
// and TOML rule files.
//
// [io] - Node-link JSON import and export.
//
// [render/nodelink] - DOT generation and SVG rendering through Graphviz.
//
// [pipeline] - Load → build → render orchestration with content-addressed
// caching, shared by the CLI and the HTTP server.
//
// [cache] - File, Redis and null cache backends plus key derivation.
//
// [observability] - Hook interfaces for pipeline, cache and HTTP events.
//
// [errors] - Coded errors and input validation.
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/tracegraph/pkg/graph
// [trace]: https://pkg.go.dev/github.com/matzehuels/tracegraph/pkg/trace
// [importer]: https://pkg.go.dev/github.com/matzehuels/tracegraph/pkg/importer
// [transform]: https://pkg.go.dev/github.com/matzehuels/tracegraph/pkg/transform
// [io]: https://pkg.go.dev/github.com/matzehuels/tracegraph/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/tracegraph/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tracegraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/tracegraph/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/tracegraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/tracegraph/pkg/errors
package pkg
