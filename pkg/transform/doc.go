// Package transform provides rewrite rules that normalize an imported
// operator graph.
//
// # Overview
//
// Traced graphs name operators the way the exporter does: namespaced
// ("onnx::Relu"), interchange-format jargon ("Gemm"), or framework internals
// ("aten::max_pool2d_with_indices"). This package rewrites those names into
// a short canonical vocabulary before rendering.
//
// A [Rule] is applied as one complete pass over every node. [Apply] runs an
// ordered list of rules, finishing each pass before the next rule starts, so
// later rules see the output of earlier ones.
//
// # Rename
//
// [Rename] replaces Node.Op when it fully matches a regular expression. The
// replacement may reference captured groups:
//
//	transform.MustRename(`onnx::(.*)`, `${1}`) // onnx::Relu -> Relu
//
// [FrameworkTransforms] is the canonical, order-sensitive rule list:
//
//  1. onnx::X -> X
//  2. Gemm -> Linear
//  3. aten::max_pool2d_with_indices -> MaxPool
//  4. BatchNormalization -> BatchNorm
//
// Renamed ops no longer match any source pattern, so applying the list
// twice gives the same result as applying it once.
//
// # Rule Files
//
// Extra rename rules can be kept in TOML and loaded with [LoadRules]:
//
//	[[rename]]
//	op = "aten::(.*)"
//	to = "${1}"
//
// Rules never change topology, shapes or params.
package transform
