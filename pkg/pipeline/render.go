package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/tracegraph/pkg/graph"
	"github.com/matzehuels/tracegraph/pkg/render/nodelink"
)

// Render encodes g in the requested format. graphJSON is the graph's JSON
// encoding and is returned as-is for FormatJSON.
func Render(ctx context.Context, g *graph.Graph, graphJSON []byte, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatJSON:
		return graphJSON, nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed})), nil
	case FormatSVG:
		dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed})
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
		return svg, nil
	default:
		return nil, ValidateFormat(opts.Format)
	}
}
