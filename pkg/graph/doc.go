// Package graph provides the simplified operator graph produced by importing
// a traced model.
//
// # Overview
//
// A [Graph] holds one [Node] per traced operator and one [Edge] per inferred
// data dependency. Nodes carry a canonical operator name ([Node.Op]), the
// shape of their first output, and a small parameter map. Edges carry the
// shape of the tensor that flows from producer to consumer.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [Graph.AddNode] and edges with
// [Graph.AddEdgeByID]. Edges may only reference nodes that already exist:
//
//	g := graph.New(nil)
//	g.AddNode(graph.Node{ID: "conv1/outputs/3", Op: "Conv", OutputShape: graph.Shape{1, 64, 112, 112}})
//	g.AddNode(graph.Node{ID: "relu/outputs/4", Op: "Relu"})
//	g.AddEdgeByID("conv1/outputs/3", "relu/outputs/4", graph.Shape{1, 64, 112, 112})
//
// # Ordering
//
// Unlike a plain map-backed graph, [Graph.Nodes], [Graph.Edges],
// [Graph.Sources] and [Graph.Sinks] return results in insertion order. The
// importer inserts nodes in trace order, so the same trace always yields the
// same node and edge sequence.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Callers must synchronize
// access if multiple goroutines read or modify the same graph.
package graph
