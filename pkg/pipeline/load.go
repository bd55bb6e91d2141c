package pipeline

import (
	"context"

	"github.com/matzehuels/tracegraph/pkg/trace"
)

// Load returns the trace named by opts: the in-memory trace if set,
// otherwise the recorded trace file at opts.TracePath.
func Load(ctx context.Context, opts Options) (*trace.Trace, error) {
	if opts.Trace != nil {
		return trace.Recorded{T: opts.Trace}.Trace(ctx, nil, nil)
	}
	return trace.FileTracer{}.Trace(ctx, opts.TracePath, nil)
}
