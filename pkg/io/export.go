package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/tracegraph/pkg/errors"
	"github.com/matzehuels/tracegraph/pkg/graph"
)

type document struct {
	Meta  valueMap `json:"meta,omitempty"`
	Nodes []node   `json:"nodes"`
	Edges []edge   `json:"edges"`
}

type node struct {
	ID     string   `json:"id"`
	Op     string   `json:"op"`
	Name   string   `json:"name,omitempty"`
	Shape  []int    `json:"shape,omitempty"`
	Params valueMap `json:"params,omitempty"`
}

type edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Shape []int  `json:"shape,omitempty"`
}

// WriteJSON encodes g as JSON and writes it to w.
// Nodes and edges are written in graph order, so the output is stable for a
// fixed graph. The result can be re-imported with [ReadJSON].
func WriteJSON(g *graph.Graph, w io.Writer) error {
	nodes := g.Nodes()
	edges := g.Edges()
	out := document{
		Meta:  valueMap(g.Meta()),
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, len(edges)),
	}

	for i, n := range nodes {
		out.Nodes[i] = node{
			ID:     n.ID,
			Op:     n.Op,
			Name:   n.Name,
			Shape:  n.OutputShape,
			Params: valueMap(n.Params),
		}
	}
	for i, e := range edges {
		out.Edges[i] = edge{From: e.From, To: e.To, Shape: e.Shape}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode graph")
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
