package transform

import (
	"fmt"
	"regexp"

	"github.com/matzehuels/tracegraph/pkg/errors"
	"github.com/matzehuels/tracegraph/pkg/graph"
)

// Rule rewrites a graph in place. Apply makes one complete pass over the
// graph and returns the number of nodes it changed.
type Rule interface {
	Name() string
	Apply(g *graph.Graph) int
}

// Rename replaces the Op of every node whose Op fully matches a pattern.
// Captured groups can be referenced from the replacement as ${1}, ${name}.
// Nodes that do not match are left alone.
//
// Rename only touches Node.Op; topology, shapes and params are never
// modified.
type Rename struct {
	op string
	re *regexp.Regexp
	to string
}

// NewRename compiles a rename rule. The pattern is anchored at both ends.
func NewRename(op, to string) (*Rename, error) {
	re, err := regexp.Compile(`^(?:` + op + `)$`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRule, err, "rename pattern %q", op)
	}
	return &Rename{op: op, re: re, to: to}, nil
}

// MustRename is like NewRename but panics if the pattern does not compile.
// It is meant for rule tables built from constants.
func MustRename(op, to string) *Rename {
	r, err := NewRename(op, to)
	if err != nil {
		panic(err)
	}
	return r
}

// Name describes the rule as "rename <pattern> -> <replacement>".
func (r *Rename) Name() string {
	return fmt.Sprintf("rename %s -> %s", r.op, r.to)
}

// Pattern returns the unanchored source pattern.
func (r *Rename) Pattern() string { return r.op }

// Replacement returns the replacement template.
func (r *Rename) Replacement() string { return r.to }

// Match reports whether op fully matches the rule's pattern.
func (r *Rename) Match(op string) bool { return r.re.MatchString(op) }

// Rewrite returns the renamed op and true, or op unchanged and false when it
// does not match.
func (r *Rename) Rewrite(op string) (string, bool) {
	m := r.re.FindStringSubmatchIndex(op)
	if m == nil {
		return op, false
	}
	return string(r.re.ExpandString(nil, r.to, op, m)), true
}

// Apply implements Rule.
func (r *Rename) Apply(g *graph.Graph) int {
	changed := 0
	for _, n := range g.Nodes() {
		if op, ok := r.Rewrite(n.Op); ok && op != n.Op {
			n.Op = op
			changed++
		}
	}
	return changed
}

var _ Rule = (*Rename)(nil)
