package importer

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tracegraph/pkg/errors"
	"github.com/matzehuels/tracegraph/pkg/graph"
	"github.com/matzehuels/tracegraph/pkg/trace"
)

func out(id int, repr string) trace.Value { return trace.Value{ID: id, Repr: repr} }

func convNet() []trace.Operator {
	return []trace.Operator{
		{
			Kind: "onnx::Conv", Scope: "Net/Conv2d[conv1]", Inputs: []int{0, 1, 2},
			Outputs: []trace.Value{out(10, "%10 : Float(1, 8, 30, 30) = onnx::Conv(%0, %1, %2)")},
		},
		{
			Kind: "onnx::BatchNormalization", Scope: "Net/BatchNorm2d[bn1]", Inputs: []int{10, 3, 4},
			Outputs: []trace.Value{out(11, "%11 : Float(1, 8, 30, 30) = onnx::BatchNormalization(%10, %3, %4)")},
		},
		{
			Kind: "onnx::Relu", Scope: "Net", Inputs: []int{11},
			Outputs: []trace.Value{out(12, "%12 : Float(1, 8, 30, 30) = onnx::Relu(%11)")},
		},
		{
			Kind: "onnx::Flatten", Scope: "Net", Inputs: []int{12},
			Outputs: []trace.Value{out(13, "%13 : Float(1, 7200) = onnx::Flatten[axis=1](%12)")},
		},
		{
			Kind: "onnx::Gemm", Scope: "Net/Linear[fc]", Inputs: []int{13, 7, 8},
			Outputs: []trace.Value{out(14, "%14 : Float(1, 10) = onnx::Gemm[alpha=1., beta=1., transB=1](%13, %7, %8)")},
			Repr:    "%14 : Float(1, 10) = onnx::Gemm[alpha=1., beta=1., transB=1](%13, %7, %8), scope: Net/Linear[fc]",
		},
	}
}

type edgeKey struct{ From, To string }

func edgeKeys(g *graph.Graph) []edgeKey {
	var keys []edgeKey
	for _, e := range g.Edges() {
		keys = append(keys, edgeKey{e.From, e.To})
	}
	return keys
}

func TestBuildConvNet(t *testing.T) {
	g, err := Build(convNet(), nil, Options{})
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}

	wantIDs := []string{
		"Net/Conv2d[conv1]/outputs/10",
		"Net/BatchNorm2d[bn1]/outputs/11",
		"Net/outputs/12",
		"Net/outputs/13",
		"Net/Linear[fc]/outputs/14",
	}
	var gotIDs []string
	for _, n := range g.Nodes() {
		gotIDs = append(gotIDs, n.ID)
	}
	if diff := cmp.Diff(wantIDs, gotIDs); diff != "" {
		t.Errorf("node IDs mismatch (-want +got):\n%s", diff)
	}

	wantEdges := []edgeKey{
		{wantIDs[0], wantIDs[1]},
		{wantIDs[1], wantIDs[2]},
		{wantIDs[2], wantIDs[3]},
		{wantIDs[3], wantIDs[4]},
	}
	if diff := cmp.Diff(wantEdges, edgeKeys(g)); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}

	if got := g.Edges()[3].Shape; !got.Equal(graph.Shape{1, 7200}) {
		t.Errorf("flatten->gemm edge shape = %v, want 1x7200", got)
	}

	fc, _ := g.Node(wantIDs[4])
	wantParams := map[string]any{"alpha": 1.0, "beta": 1.0, "transB": 1}
	if diff := cmp.Diff(wantParams, fc.Params); diff != "" {
		t.Errorf("gemm params mismatch (-want +got):\n%s", diff)
	}
	if fc.Op != "onnx::Gemm" {
		t.Errorf("Op = %q, want untransformed onnx::Gemm", fc.Op)
	}

	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestSameScopeDistinctIDs(t *testing.T) {
	ops := []trace.Operator{
		{Kind: "onnx::Relu", Scope: "Net/Block", Outputs: []trace.Value{{ID: 3}}},
		{Kind: "onnx::Relu", Scope: "Net/Block", Outputs: []trace.Value{{ID: 4}}},
	}
	g, err := Build(ops, nil, Options{})
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	for _, id := range []string{"Net/Block/outputs/3", "Net/Block/outputs/4"} {
		if _, ok := g.Node(id); !ok {
			t.Errorf("node %q missing", id)
		}
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2", g.NodeCount())
	}
}

func TestSingleSharedSlotYieldsOneEdge(t *testing.T) {
	ops := []trace.Operator{
		{Kind: "onnx::Conv", Scope: "p", Outputs: []trace.Value{out(7, "Float(2, 3)")}},
		{Kind: "onnx::Relu", Scope: "c", Inputs: []int{1, 7, 9}, Outputs: []trace.Value{{ID: 8}}},
	}
	g, err := Build(ops, nil, Options{})
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}

	edges := g.Edges()
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	want := graph.Edge{From: "p/outputs/7", To: "c/outputs/8", Shape: graph.Shape{2, 3}}
	if diff := cmp.Diff(want, edges[0]); diff != "" {
		t.Errorf("edge mismatch (-want +got):\n%s", diff)
	}
}

func TestEdgeWithUnknownShape(t *testing.T) {
	ops := []trace.Operator{
		{Kind: "onnx::Shape", Scope: "p", Outputs: []trace.Value{out(7, "%7 : Long(4) = onnx::Shape(%0)")}},
		{Kind: "onnx::Reshape", Scope: "c", Inputs: []int{7}, Outputs: []trace.Value{{ID: 8}}},
	}
	g, err := Build(ops, nil, Options{})
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	if s := g.Edges()[0].Shape; s != nil {
		t.Errorf("edge shape = %v, want nil", s)
	}
}

func TestMultipleSharedSlotsYieldOneEdge(t *testing.T) {
	ops := []trace.Operator{
		{Kind: "prim::ListUnpack", Scope: "p", Outputs: []trace.Value{{ID: 1}, {ID: 2}}},
		{Kind: "onnx::Add", Scope: "c", Inputs: []int{1, 2}, Outputs: []trace.Value{{ID: 3}}},
	}
	g, err := Build(ops, nil, Options{})
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
	if _, ok := g.Node("p/outputs/1/2"); !ok {
		t.Error("multi-output node id should join outputs in declared order")
	}
}

func TestFreshParamsPerNode(t *testing.T) {
	ops := []trace.Operator{
		{Kind: "onnx::Gemm", Scope: "fc", Outputs: []trace.Value{{ID: 1}}, Repr: "onnx::Gemm[alpha=2., transB=0]"},
		{Kind: "onnx::Relu", Scope: "act", Inputs: []int{1}, Outputs: []trace.Value{{ID: 2}}},
		{Kind: "onnx::Gemm", Scope: "fc2", Inputs: []int{2}, Outputs: []trace.Value{{ID: 3}}, Repr: "onnx::Gemm[beta=0.5]"},
	}
	g, err := Build(ops, nil, Options{})
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}

	relu, _ := g.Node("act/outputs/2")
	if len(relu.Params) != 0 {
		t.Errorf("relu params = %v, want empty", relu.Params)
	}
	fc2, _ := g.Node("fc2/outputs/3")
	if diff := cmp.Diff(map[string]any{"beta": 0.5}, fc2.Params); diff != "" {
		t.Errorf("fc2 params leaked from fc (-want +got):\n%s", diff)
	}
}

func TestGemmWithoutRecognizedAttributes(t *testing.T) {
	ops := []trace.Operator{
		{Kind: "onnx::Gemm", Scope: "fc", Outputs: []trace.Value{{ID: 1}}, Repr: "onnx::Gemm[transA=0]"},
	}
	g, err := Build(ops, nil, Options{})
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	n, _ := g.Node("fc/outputs/1")
	if len(n.Params) != 0 {
		t.Errorf("params = %v, want empty", n.Params)
	}
}

func TestGemmWithoutAttributeBlock(t *testing.T) {
	ops := []trace.Operator{
		{Kind: "onnx::Gemm", Scope: "fc", Outputs: []trace.Value{{ID: 1}}, Repr: "onnx::Gemm(%0, %1)"},
	}
	_, err := Build(ops, nil, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidAttributes) {
		t.Errorf("Build() error = %v, want INVALID_ATTRIBUTES", err)
	}
}

func TestDuplicateNodeID(t *testing.T) {
	tests := []struct {
		name  string
		ops   []trace.Operator
		ids   []string
		edges []edgeKey
	}{
		{
			name: "sibling sinks",
			ops: []trace.Operator{
				{Kind: "onnx::Conv", Scope: "Net", Outputs: []trace.Value{{ID: 1}}},
				{Kind: "prim::Print", Scope: "Net", Inputs: []int{1}},
				{Kind: "prim::Print", Scope: "Net", Inputs: []int{1}},
			},
			ids:   []string{"Net/outputs/1", "Net/outputs/", "Net/outputs/#2"},
			edges: []edgeKey{{"Net/outputs/1", "Net/outputs/"}, {"Net/outputs/1", "Net/outputs/#2"}},
		},
		{
			name: "three without outputs",
			ops: []trace.Operator{
				{Kind: "prim::Print", Scope: "Net"},
				{Kind: "prim::Print", Scope: "Net"},
				{Kind: "prim::Print", Scope: "Net"},
			},
			ids: []string{"Net/outputs/", "Net/outputs/#1", "Net/outputs/#2"},
		},
		{
			name: "repeated output slot",
			ops: []trace.Operator{
				{Kind: "onnx::Relu", Scope: "Net", Outputs: []trace.Value{{ID: 4}}},
				{Kind: "onnx::Relu", Scope: "Net", Outputs: []trace.Value{{ID: 4}}},
			},
			ids: []string{"Net/outputs/4", "Net/outputs/4#1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.ops, nil, Options{})
			if err != nil {
				t.Fatalf("Build() = %v, want duplicates kept", err)
			}
			var ids []string
			for _, n := range g.Nodes() {
				ids = append(ids, n.ID)
			}
			if diff := cmp.Diff(tt.ids, ids); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.edges, edgeKeys(g)); diff != "" {
				t.Errorf("edges mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDuplicateIDAgainstExistingGraph(t *testing.T) {
	g := graph.New(nil)
	if err := g.AddNode(graph.Node{ID: "Net/outputs/", Op: "Input"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(graph.Node{ID: "Net/outputs/#0", Op: "Input"}); err != nil {
		t.Fatal(err)
	}

	_, err := Build([]trace.Operator{{Kind: "prim::Print", Scope: "Net"}}, g, Options{})
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	if _, ok := g.Node("Net/outputs/#0.1"); !ok {
		t.Errorf("ids = %v, want Net/outputs/#0.1 added", g.Ops())
	}
}

func TestNoEdgesIsNotAnError(t *testing.T) {
	ops := []trace.Operator{
		{Kind: "onnx::Constant", Scope: "a", Outputs: []trace.Value{{ID: 1}}},
		{Kind: "onnx::Constant", Scope: "b", Outputs: []trace.Value{{ID: 2}}},
	}
	g, err := Build(ops, nil, Options{})
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	if g.EdgeCount() != 0 || len(g.Sources()) != 2 || len(g.Sinks()) != 2 {
		t.Errorf("got %d edges, %d sources, %d sinks", g.EdgeCount(), len(g.Sources()), len(g.Sinks()))
	}
}

func TestInputNames(t *testing.T) {
	ops := []trace.Operator{
		{Kind: "onnx::Conv", Scope: "a", Inputs: []int{0}, Outputs: []trace.Value{{ID: 1}}},
		{Kind: "onnx::Conv", Scope: "b", Inputs: []int{100}, Outputs: []trace.Value{{ID: 2}}},
		{Kind: "onnx::Add", Scope: "c", Inputs: []int{1, 2}, Outputs: []trace.Value{{ID: 3}}},
	}
	g, err := Build(ops, nil, Options{InputNames: []string{"image", "mask", "extra"}})
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}

	a, _ := g.Node("a/outputs/1")
	b, _ := g.Node("b/outputs/2")
	c, _ := g.Node("c/outputs/3")
	if a.Name != "image" || b.Name != "mask" || c.Name != "" {
		t.Errorf("names = %q, %q, %q; want image, mask, empty", a.Name, b.Name, c.Name)
	}
	if diff := cmp.Diff([]string{"image", "mask", "extra"}, g.Meta()[MetaInputNames]); diff != "" {
		t.Errorf("input_names meta mismatch (-want +got):\n%s", diff)
	}
}

func TestVerboseDump(t *testing.T) {
	var buf bytes.Buffer
	g1, err := Build(convNet(), nil, Options{Verbose: true, DumpTo: &buf})
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != len(convNet())+1 {
		t.Errorf("dump has %d lines, want %d", lines, len(convNet())+1)
	}
	if !strings.Contains(buf.String(), "[10, 3, 4] -> [11]") {
		t.Errorf("dump missing batchnorm slots:\n%s", buf.String())
	}

	g2, _ := Build(convNet(), nil, Options{})
	if diff := cmp.Diff(edgeKeys(g2), edgeKeys(g1)); diff != "" {
		t.Errorf("verbose changed the graph (-quiet +verbose):\n%s", diff)
	}
}

func TestBuildIntoExistingGraph(t *testing.T) {
	g := graph.New(graph.Metadata{"model": "convnet"})
	got, err := Build(convNet(), g, Options{})
	if err != nil {
		t.Fatalf("Build() = %v", err)
	}
	if got != g {
		t.Error("Build should populate and return the given graph")
	}
	if got.Meta()["model"] != "convnet" {
		t.Error("existing metadata should be preserved")
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	t.Run("recorded", func(t *testing.T) {
		tr := &trace.Trace{Operators: convNet(), InputNames: []string{"image"}}
		g, err := Import(ctx, trace.Recorded{T: tr}, nil, nil, nil, Options{})
		if err != nil {
			t.Fatalf("Import() = %v", err)
		}
		if g.NodeCount() != 5 || g.EdgeCount() != 4 {
			t.Errorf("got %d nodes, %d edges; want 5, 4", g.NodeCount(), g.EdgeCount())
		}
		conv, _ := g.Node("Net/Conv2d[conv1]/outputs/10")
		if conv.Name != "image" {
			t.Errorf("trace input names not applied: Name = %q", conv.Name)
		}
	})

	t.Run("explicit input names win", func(t *testing.T) {
		tr := &trace.Trace{Operators: convNet(), InputNames: []string{"image"}}
		g, err := Import(ctx, trace.Recorded{T: tr}, nil, nil, nil, Options{InputNames: []string{"x"}})
		if err != nil {
			t.Fatalf("Import() = %v", err)
		}
		conv, _ := g.Node("Net/Conv2d[conv1]/outputs/10")
		if conv.Name != "x" {
			t.Errorf("Name = %q, want x", conv.Name)
		}
	})

	t.Run("tracer failure is returned unchanged", func(t *testing.T) {
		boom := stderrors.New("forward pass failed")
		tracer := trace.TracerFunc(func(context.Context, any, []any) (*trace.Trace, error) {
			return nil, boom
		})
		_, err := Import(ctx, tracer, nil, nil, nil, Options{})
		if err != boom {
			t.Errorf("Import() error = %v, want the tracer error itself", err)
		}
	})

	t.Run("nil trace", func(t *testing.T) {
		tracer := trace.TracerFunc(func(context.Context, any, []any) (*trace.Trace, error) {
			return nil, nil
		})
		_, err := Import(ctx, tracer, nil, nil, nil, Options{})
		if !errors.Is(err, errors.ErrCodeInvalidTrace) {
			t.Errorf("Import() error = %v, want INVALID_TRACE", err)
		}
	})

	t.Run("tracer receives model and args", func(t *testing.T) {
		var gotModel any
		var gotArgs []any
		tracer := trace.TracerFunc(func(_ context.Context, model any, args []any) (*trace.Trace, error) {
			gotModel, gotArgs = model, args
			return &trace.Trace{}, nil
		})
		if _, err := Import(ctx, tracer, "resnet", []any{1, 2}, nil, Options{}); err != nil {
			t.Fatalf("Import() = %v", err)
		}
		if gotModel != "resnet" || len(gotArgs) != 2 {
			t.Errorf("tracer got model=%v args=%v", gotModel, gotArgs)
		}
	})
}
