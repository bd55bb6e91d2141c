package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tracegraph/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds output shapes and params to node labels and shapes to
	// edge labels. When false, only the node label is shown.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format. The resulting DOT string can
// be rendered with [RenderSVG].
//
// Source nodes (graph inputs) are drawn with a grey fill.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := fmtAttrs(*n, fmtLabel(*n, opts.Detailed), g.InDegree(n.ID) == 0)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if opts.Detailed && e.Shape != nil {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, e.Shape.String())
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := n.Op
	if n.Name != "" {
		label = n.Name + "\n" + n.Op
	}
	if !detailed {
		return label
	}

	var parts []string
	if n.OutputShape != nil {
		parts = append(parts, n.OutputShape.String())
	}
	for _, k := range slices.Sorted(maps.Keys(n.Params)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Params[k]))
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n graph.Node, label string, source bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if source {
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the SVG scales with its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
