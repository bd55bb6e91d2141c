// Package nodelink renders operator graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Nodes are labeled with their op (and name, when the node is a named graph
// input). With Detailed set, labels also carry the output shape and params,
// and edges are labeled with the shape of the tensor they carry.
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded box
// nodes. It can also be saved and processed with external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is required.
package nodelink
