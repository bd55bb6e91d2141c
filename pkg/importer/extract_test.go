package importer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tracegraph/pkg/errors"
	"github.com/matzehuels/tracegraph/pkg/graph"
	"github.com/matzehuels/tracegraph/pkg/trace"
)

func TestNodeID(t *testing.T) {
	tests := []struct {
		name string
		op   trace.Operator
		want string
	}{
		{"single output", trace.Operator{Scope: "Net/Conv2d[conv1]", Outputs: []trace.Value{{ID: 5}}}, "Net/Conv2d[conv1]/outputs/5"},
		{"declared order kept", trace.Operator{Scope: "Net", Outputs: []trace.Value{{ID: 9}, {ID: 2}}}, "Net/outputs/9/2"},
		{"no outputs", trace.Operator{Scope: "Net"}, "Net/outputs/"},
		{"empty scope", trace.Operator{Outputs: []trace.Value{{ID: 1}}}, "/outputs/1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NodeID(tt.op); got != tt.want {
				t.Errorf("NodeID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		in   string
		want graph.Shape
	}{
		{"%5 : Float(1, 64, 112, 112) = onnx::Conv(%0, %1)", graph.Shape{1, 64, 112, 112}},
		{"Float(10)", graph.Shape{10}},
		{"Float(1,2,3)", graph.Shape{1, 2, 3}},
		{"Float( 4 , 5 )", graph.Shape{4, 5}},
		{"Float(0, 3)", graph.Shape{0, 3}},
		{"Float(1, 2) and later Float(7, 8)", graph.Shape{7, 8}},
		{"%3 : Long(1, 8) = onnx::Shape(%2)", nil},
		{"%3 : Tensor = onnx::Relu(%2)", nil},
		{"Float()", nil},
		{"Float(1, , 2)", nil},
		{"Float(1, 2,)", nil},
		{"Float(1 2)", nil},
		{"Float(1, 64, strides=[64, 1], requires_grad=0, device=cpu)", nil},
		{"", nil},
		{"Float(99999999999999999999999)", nil},
		{"line one\nFloat(1, 2)", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseShape(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("ParseShape(%q) = %v, want %v", tt.in, []int(got), []int(tt.want))
			}
			if again := ParseShape(tt.in); !again.Equal(got) {
				t.Errorf("ParseShape(%q) not idempotent: %v then %v", tt.in, got, again)
			}
		})
	}
}

func FuzzParseShape(f *testing.F) {
	for _, seed := range []string{
		"%5 : Float(1, 64, 112, 112) = onnx::Conv(%0, %1)",
		"Float(1, , 2)",
		"Float()",
		"Float(99999999999999999999999)",
		"%3 : Long(1, 8)",
		"",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, s string) {
		got := ParseShape(s)
		if got == nil {
			return
		}
		if len(got) == 0 {
			t.Fatalf("ParseShape(%q) = empty non-nil shape", s)
		}
		for _, d := range got {
			if d < 0 {
				t.Fatalf("ParseShape(%q) = %v, has negative dimension", s, []int(got))
			}
		}
		if again := ParseShape(s); !again.Equal(got) {
			t.Fatalf("ParseShape(%q) not deterministic: %v then %v", s, []int(got), []int(again))
		}
	})
}

func TestReprShape(t *testing.T) {
	op := trace.Operator{Outputs: []trace.Value{
		{ID: 1, Repr: "%1 : Float(2, 3) = aten::max_pool2d_with_indices(%0)"},
		{ID: 2, Repr: "%2 : Long(9, 9) = aten::max_pool2d_with_indices(%0)"},
	}}
	if got := (ReprShape{}).Shape(op); !got.Equal(graph.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want first output 2x3", got)
	}
	if got := (ReprShape{}).Shape(trace.Operator{}); got != nil {
		t.Errorf("Shape() without outputs = %v, want nil", got)
	}
}

func TestGemmParams(t *testing.T) {
	tests := []struct {
		name    string
		op      trace.Operator
		want    map[string]any
		wantErr bool
	}{
		{
			name: "non gemm",
			op:   trace.Operator{Kind: "onnx::Conv", Repr: "onnx::Conv[alpha=1.]"},
			want: map[string]any{},
		},
		{
			name: "all keys",
			op:   trace.Operator{Kind: KindGemm, Repr: "%3 : Float(1, 10) = onnx::Gemm[alpha=1., beta=0.5, transB=1](%1, %2)"},
			want: map[string]any{"alpha": 1.0, "beta": 0.5, "transB": 1},
		},
		{
			name: "unknown keys ignored",
			op:   trace.Operator{Kind: KindGemm, Repr: "onnx::Gemm[transA=1, alpha=2]"},
			want: map[string]any{"alpha": 2.0},
		},
		{
			name: "falls back to output repr",
			op:   trace.Operator{Kind: KindGemm, Outputs: []trace.Value{{ID: 1, Repr: "onnx::Gemm[beta=3.]"}}},
			want: map[string]any{"beta": 3.0},
		},
		{
			name: "structured attributes preferred",
			op: trace.Operator{
				Kind:       KindGemm,
				Repr:       "onnx::Gemm[alpha=9.]",
				Attributes: map[string]float64{"alpha": 1, "transB": 1, "transA": 0},
			},
			want: map[string]any{"alpha": 1.0, "transB": 1},
		},
		{
			name:    "missing block",
			op:      trace.Operator{Kind: KindGemm, Repr: "onnx::Gemm(%1, %2)"},
			wantErr: true,
		},
		{
			name:    "item without value",
			op:      trace.Operator{Kind: KindGemm, Repr: "onnx::Gemm[alpha]"},
			wantErr: true,
		},
		{
			name:    "bad float",
			op:      trace.Operator{Kind: KindGemm, Repr: "onnx::Gemm[alpha=abc]"},
			wantErr: true,
		},
		{
			name:    "bad int",
			op:      trace.Operator{Kind: KindGemm, Repr: "onnx::Gemm[transB=1.5]"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GemmParams{}.Params(tt.op)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidAttributes) {
					t.Errorf("Params() error = %v, want INVALID_ATTRIBUTES", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Params() = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Params() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGemmParamsReturnsFreshMaps(t *testing.T) {
	op := trace.Operator{Kind: "onnx::Relu"}
	a, _ := GemmParams{}.Params(op)
	a["leak"] = true
	b, _ := GemmParams{}.Params(op)
	if len(b) != 0 {
		t.Errorf("second call saw %v", b)
	}
}
