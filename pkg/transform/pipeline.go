package transform

import "github.com/matzehuels/tracegraph/pkg/graph"

// FrameworkTransforms returns the canonical rename rules for traces exported
// through the ONNX operator set. Order matters: later rules expect the
// "onnx::" prefix to be gone already.
func FrameworkTransforms() []Rule {
	return []Rule{
		// Hide the onnx:: namespace.
		MustRename(`onnx::(.*)`, `${1}`),
		// Gemm (general matrix multiply) is how linear layers are exported.
		MustRename(`Gemm`, `Linear`),
		// Framework op with no ONNX counterpart.
		MustRename(`aten::max_pool2d_with_indices`, `MaxPool`),
		MustRename(`BatchNormalization`, `BatchNorm`),
	}
}

// RuleResult records how many nodes one rule changed.
type RuleResult struct {
	Rule    string
	Changed int
}

// Result contains metrics about the rules applied by [Apply].
type Result struct {
	// Rules lists every applied rule in order.
	Rules []RuleResult
	// Changed is the total number of node rewrites across all rules. A node
	// rewritten by two rules counts twice.
	Changed int
}

// Apply runs rules against g in order. Each rule completes a full pass over
// every node before the next rule starts.
func Apply(g *graph.Graph, rules ...Rule) Result {
	res := Result{Rules: make([]RuleResult, 0, len(rules))}
	for _, r := range rules {
		n := r.Apply(g)
		res.Rules = append(res.Rules, RuleResult{Rule: r.Name(), Changed: n})
		res.Changed += n
	}
	return res
}
