package importer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/tracegraph/pkg/errors"
	"github.com/matzehuels/tracegraph/pkg/graph"
	"github.com/matzehuels/tracegraph/pkg/trace"
)

// ShapeExtractor derives an operator's output shape. Implementations must be
// total: a shape that cannot be determined is reported as nil, never as an
// error.
type ShapeExtractor interface {
	Shape(op trace.Operator) graph.Shape
}

// ParamExtractor derives an operator's parameters. It must return a new map
// on every call.
type ParamExtractor interface {
	Params(op trace.Operator) (map[string]any, error)
}

// ReprShape reads the shape of the first output from its textual dump. Only
// floating-point tensors ("Float(1, 3, 224, 224)") are recognized.
//
// TODO: secondary outputs of multi-output operators (e.g. the indices of
// max_pool2d_with_indices) are never inspected, so their edges carry the
// first output's shape.
type ReprShape struct{}

// Shape implements ShapeExtractor.
func (ReprShape) Shape(op trace.Operator) graph.Shape {
	out, ok := op.FirstOutput()
	if !ok {
		return nil
	}
	return ParseShape(out.Repr)
}

// Greedy prefix: the last Float(...) on the first line wins.
var floatShapeRe = regexp.MustCompile(`^.*Float\(([\d\s,]+)\)`)

// ParseShape extracts the dimensions from a "Float(d0, d1, ...)" annotation
// in s. It returns nil if there is no annotation or any dimension is not a
// non-negative integer.
func ParseShape(s string) graph.Shape {
	m := floatShapeRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], ",")
	shape := make(graph.Shape, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || d < 0 {
			return nil
		}
		shape = append(shape, d)
	}
	return shape
}

// KindGemm is the interchange format's general matrix multiply, which is how
// linear layers appear in a trace.
const KindGemm = "onnx::Gemm"

var gemmAttrsRe = regexp.MustCompile(`onnx::Gemm\[([^\[\]]+)`)

// GemmParams extracts alpha, beta and transB for [KindGemm] operators and
// returns an empty map for every other kind.
//
// Structured Attributes are used when the tracer supplied them. Otherwise the
// bracketed attribute block is scraped from the operator's repr; a Gemm
// without that block is an error.
type GemmParams struct{}

// Params implements ParamExtractor.
func (GemmParams) Params(op trace.Operator) (map[string]any, error) {
	params := map[string]any{}
	if op.Kind != KindGemm {
		return params, nil
	}
	if op.Attributes != nil {
		for k, v := range op.Attributes {
			switch k {
			case "alpha", "beta":
				params[k] = v
			case "transB":
				params[k] = int(v)
			}
		}
		return params, nil
	}

	text := op.Repr
	if text == "" {
		if out, ok := op.FirstOutput(); ok {
			text = out.Repr
		}
	}
	m := gemmAttrsRe.FindStringSubmatch(text)
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidAttributes, "no attribute block in %s repr", KindGemm)
	}

	for _, item := range strings.Split(m[1], ",") {
		k, v, ok := strings.Cut(item, "=")
		if !ok || strings.Contains(v, "=") {
			return nil, errors.New(errors.ErrCodeInvalidAttributes, "malformed attribute %q", strings.TrimSpace(item))
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		switch k {
		case "alpha", "beta":
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidAttributes, err, "attribute %s", k)
			}
			params[k] = f
		case "transB":
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidAttributes, err, "attribute %s", k)
			}
			params[k] = n
		}
	}
	return params, nil
}

var (
	_ ShapeExtractor = ReprShape{}
	_ ParamExtractor = GemmParams{}
)
