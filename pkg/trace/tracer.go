package trace

import (
	"context"

	"github.com/matzehuels/tracegraph/pkg/errors"
)

// Tracer runs a model forward pass once under instrumentation and returns
// the operators it executed. Implementations may run arbitrary model code;
// Trace is called at most once per import and its error is surfaced to the
// caller unchanged.
type Tracer interface {
	Trace(ctx context.Context, model any, args []any) (*Trace, error)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(ctx context.Context, model any, args []any) (*Trace, error)

// Trace calls f(ctx, model, args).
func (f TracerFunc) Trace(ctx context.Context, model any, args []any) (*Trace, error) {
	return f(ctx, model, args)
}

// Recorded is a Tracer that returns a trace captured earlier. The model and
// args passed to Trace are ignored.
type Recorded struct {
	T *Trace
}

// Trace returns the recorded trace.
func (r Recorded) Trace(ctx context.Context, _ any, _ []any) (*Trace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.T == nil {
		return nil, errors.New(errors.ErrCodeInvalidTrace, "no recorded trace")
	}
	return r.T, nil
}

// FileTracer replays traces recorded to disk by an out-of-process tracer.
// The model passed to Trace must be the path of a JSON or YAML trace file.
type FileTracer struct{}

// Trace reads the trace file named by model.
func (FileTracer) Trace(ctx context.Context, model any, _ []any) (*Trace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, ok := model.(string)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "file tracer expects a path, got %T", model)
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	return ReadFile(path)
}

var (
	_ Tracer = TracerFunc(nil)
	_ Tracer = Recorded{}
	_ Tracer = FileTracer{}
)
