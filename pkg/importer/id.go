package importer

import (
	"strconv"
	"strings"

	"github.com/matzehuels/tracegraph/pkg/graph"
	"github.com/matzehuels/tracegraph/pkg/trace"
)

// NodeID returns the graph node ID for a traced operator:
//
//	scope + "/outputs/" + output slot ids joined by "/", in declared order
//
// Scope names alone collide once the tracer attributes several operators to
// the same module, but no two operators produce the same tensor slot, so the
// suffix makes the ID unique while keeping it readable.
func NodeID(op trace.Operator) string {
	var b strings.Builder
	b.WriteString(op.Scope)
	b.WriteString("/outputs/")
	for i, o := range op.Outputs {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(strconv.Itoa(o.ID))
	}
	return b.String()
}

// uniqueID returns id if g has no node with that ID. Otherwise it appends
// "#" and the operator index, which cannot collide with a NodeID since
// those end in slot ids. Operators in one scope that declare no outputs are
// the usual source of collisions.
func uniqueID(g *graph.Graph, id string, index int) string {
	candidate := id
	for n := 0; ; n++ {
		if _, ok := g.Node(candidate); !ok {
			return candidate
		}
		candidate = id + "#" + strconv.Itoa(index)
		if n > 0 {
			candidate += "." + strconv.Itoa(n)
		}
	}
}
