package graph

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdgeByID] when the From
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdgeByID] when the To
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrGraphHasCycle is returned by [Graph.Validate] when a directed cycle
	// is detected.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to the graph.
type Metadata map[string]any

// Shape is the dimensions of a tensor. A nil Shape means the shape is unknown.
type Shape []int

// String formats the shape as "1x3x224x224". Unknown shapes format as "".
func (s Shape) String() string {
	if s == nil {
		return ""
	}
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, "x")
}

// Equal reports whether two shapes have the same dimensions.
// A nil shape is only equal to another nil shape.
func (s Shape) Equal(o Shape) bool {
	if (s == nil) != (o == nil) {
		return false
	}
	return slices.Equal(s, o)
}

// Node is one operator in the simplified graph.
//
// The zero value is not usable - ID must be set before adding to a Graph.
type Node struct {
	ID          string         // Unique identifier within one import
	Op          string         // Operator name, rewritten in place by transforms
	Name        string         // Optional human-readable label
	OutputShape Shape          // Shape of the first output, nil when unknown
	Params      map[string]any // Operator parameters (never nil after AddNode)
}

// Label returns Name if set, otherwise Op.
func (n Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.Op
}

// Edge is a directed data dependency between two nodes, annotated with the
// shape of the tensor flowing across it.
type Edge struct {
	From  string
	To    string
	Shape Shape
}

// Graph is a directed graph of operator nodes.
//
// Nodes and edges are kept in insertion order so that iteration, export and
// rendering are reproducible for a fixed input. Multiple edges between the
// same pair of nodes are permitted.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
	meta     Metadata
}

// New creates an empty graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map. It is never nil.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the ID is empty, or ErrDuplicateNodeID if a
// node with the same ID already exists. Params is initialized to an empty
// map if nil.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Params == nil {
		n.Params = map[string]any{}
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdgeByID adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if either endpoint is
// missing.
func (g *Graph) AddEdgeByID(from, to string, shape Shape) error {
	if _, ok := g.nodes[from]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[to]; !ok {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, Edge{From: from, To: to, Shape: slices.Clone(shape)})
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return nil
}

// Nodes returns all nodes in insertion order. The returned slice contains
// pointers to the actual nodes, so modifications affect the graph.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Children returns the IDs of the consumers of the node, one entry per edge.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the IDs of the producers feeding the node, one entry per edge.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// InDegree returns the number of incoming edges to the node.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// OutDegree returns the number of outgoing edges from the node.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// Sources returns nodes with no incoming edges, in insertion order.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			sources = append(sources, g.nodes[id])
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, in insertion order.
func (g *Graph) Sinks() []*Node {
	var sinks []*Node
	for _, id := range g.order {
		if len(g.outgoing[id]) == 0 {
			sinks = append(sinks, g.nodes[id])
		}
	}
	return sinks
}

// Ops returns the Op of every node in insertion order.
func (g *Graph) Ops() []string {
	ops := make([]string, len(g.order))
	for i, id := range g.order {
		ops[i] = g.nodes[id].Op
	}
	return ops
}

// Validate checks that every edge references existing nodes and that the
// graph is acyclic. Returns ErrInvalidEdgeEndpoint or ErrGraphHasCycle.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		_, okS := g.nodes[e.From]
		_, okD := g.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
	}
	return g.detectCycles()
}

func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}
