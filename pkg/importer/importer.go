package importer

import (
	"context"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tracegraph/pkg/errors"
	"github.com/matzehuels/tracegraph/pkg/graph"
	"github.com/matzehuels/tracegraph/pkg/trace"
)

// MetaInputNames is the graph metadata key holding the model input names.
const MetaInputNames = "input_names"

// Options configures an import.
type Options struct {
	// InputNames are human-readable names for the model inputs. They are
	// attached in order to the source nodes (no incoming edges) and stored
	// in graph metadata. When empty, names recorded in the trace are used.
	InputNames []string

	// Verbose writes a diagnostic dump of every traced operator to DumpTo
	// before the graph is built. It has no effect on the result.
	Verbose bool
	// DumpTo receives the verbose dump. Defaults to os.Stderr.
	DumpTo io.Writer

	// Indexed selects [InferEdgesIndexed] instead of the pairwise
	// [InferEdges]. Both produce the same edges.
	Indexed bool

	// Shapes and Params override the default text-scraping extractors.
	Shapes ShapeExtractor
	Params ParamExtractor

	// Logger receives per-operator debug output. Defaults to a discarding logger.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.DumpTo == nil {
		o.DumpTo = os.Stderr
	}
	if o.Shapes == nil {
		o.Shapes = ReprShape{}
	}
	if o.Params == nil {
		o.Params = GemmParams{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Import runs tracer once on model and args and populates g with the
// resulting operators and data dependencies. If g is nil a new graph is
// created. The populated graph is returned.
//
// An error from the tracer is returned unchanged.
func Import(ctx context.Context, tracer trace.Tracer, model any, args []any, g *graph.Graph, opts Options) (*graph.Graph, error) {
	t, err := tracer.Trace(ctx, model, args)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.New(errors.ErrCodeInvalidTrace, "tracer returned no trace")
	}
	if len(opts.InputNames) == 0 {
		opts.InputNames = t.InputNames
	}
	return Build(t.Operators, g, opts)
}

// Build populates g from an already recorded operator list. See [Import].
//
// Every node is added before any edge so that edges only ever reference
// existing nodes.
func Build(ops []trace.Operator, g *graph.Graph, opts Options) (*graph.Graph, error) {
	opts.setDefaults()
	if g == nil {
		g = graph.New(nil)
	}

	if opts.Verbose {
		if err := trace.Dump(opts.DumpTo, ops); err != nil {
			opts.Logger.Warn("trace dump failed", "err", err)
		}
	}

	ids := make([]string, len(ops))
	shapes := make([]graph.Shape, len(ops))
	for i, op := range ops {
		id := NodeID(op)
		if unique := uniqueID(g, id, i); unique != id {
			opts.Logger.Warn("duplicate node id, keeping operator under a suffixed id",
				"operator", i, "kind", op.Kind, "id", unique)
			id = unique
		}
		shape := opts.Shapes.Shape(op)
		params, err := opts.Params.Params(op)
		if err != nil {
			return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInvalidAttributes), err,
				"operator %d (%s %s)", i, op.Kind, id)
		}
		if params == nil {
			params = map[string]any{}
		}

		n := graph.Node{ID: id, Op: op.Kind, OutputShape: shape, Params: params}
		if err := g.AddNode(n); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "operator %d (%s)", i, op.Kind)
		}
		ids[i], shapes[i] = id, shape

		opts.Logger.Debug("imported operator", "kind", op.Kind, "id", id, "shape", shape.String())
	}

	infer := InferEdges
	if opts.Indexed {
		infer = InferEdgesIndexed
	}
	for _, l := range infer(ops) {
		if err := g.AddEdgeByID(ids[l.From], ids[l.To], shapes[l.From]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "edge %s -> %s", ids[l.From], ids[l.To])
		}
	}

	attachInputNames(g, opts.InputNames)

	opts.Logger.Debug("import complete", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}

// attachInputNames labels source nodes with input names, pairing them in
// order. Surplus names are kept in metadata only.
func attachInputNames(g *graph.Graph, names []string) {
	if len(names) == 0 {
		return
	}
	g.Meta()[MetaInputNames] = slices.Clone(names)
	for i, n := range g.Sources() {
		if i >= len(names) {
			break
		}
		n.Name = names[i]
	}
}
