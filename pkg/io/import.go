package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/tracegraph/pkg/errors"
	"github.com/matzehuels/tracegraph/pkg/graph"
)

// ReadJSON decodes a JSON graph from r.
//
// The input must be an object with "nodes" and "edges" arrays:
//
//	{
//	  "nodes": [{"id": "a", "op": "Conv"}, {"id": "b", "op": "Relu"}],
//	  "edges": [{"from": "a", "to": "b", "shape": [1, 8, 30, 30]}]
//	}
//
// ReadJSON returns an INVALID_FORMAT error if the JSON is malformed, a node
// id is empty or repeated, or an edge references an unknown node. The graph
// is validated for cycles before it is returned.
//
// Params and metadata come back with the types [WriteJSON] wrote them
// with: integers as int, floats as float64, string lists as []string.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}

	g := graph.New(graph.Metadata(data.Meta))
	for _, n := range data.Nodes {
		nd := graph.Node{ID: n.ID, Op: n.Op, Name: n.Name, Params: n.Params}
		if n.Shape != nil {
			nd.OutputShape = graph.Shape(n.Shape)
		}
		if err := g.AddNode(nd); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %s", n.ID)
		}
	}
	for _, e := range data.Edges {
		var shape graph.Shape
		if e.Shape != nil {
			shape = graph.Shape(e.Shape)
		}
		if err := g.AddEdgeByID(e.From, e.To, shape); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "edge %s->%s", e.From, e.To)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "validate graph")
	}
	return g, nil
}

// ImportJSON reads a JSON graph file at path.
func ImportJSON(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
