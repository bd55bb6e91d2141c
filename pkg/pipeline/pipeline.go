// Package pipeline provides the trace → graph → artifact pipeline shared by
// the CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a recorded trace from a file, or take one from memory
//  2. Build: import the trace into a graph and apply the rename rules
//  3. Render: encode the graph as JSON, DOT or SVG
//
// Build and Render results are cached, keyed by content hashes of their
// inputs, so re-running an unchanged trace is a pair of cache reads.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    TracePath: "convnet.json",
//	    Format:    pipeline.FormatSVG,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("convnet.svg", result.Artifact, 0o644)
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tracegraph/pkg/cache"
	"github.com/matzehuels/tracegraph/pkg/errors"
	"github.com/matzehuels/tracegraph/pkg/graph"
	"github.com/matzehuels/tracegraph/pkg/trace"
	"github.com/matzehuels/tracegraph/pkg/transform"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// DefaultFormat is the output format used when none is given.
const DefaultFormat = FormatJSON

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// Options contains all configuration for one pipeline run.
type Options struct {
	// Load options. Exactly one of Trace and TracePath must be set.
	Trace     *trace.Trace
	TracePath string

	// Build options
	InputNames []string
	Indexed    bool
	// Rules run after the framework transforms, in order.
	Rules []transform.Rule
	// Dump writes the diagnostic operator dump to DumpTo. A dump is only
	// produced when the graph is actually built, so it bypasses the cache.
	Dump   bool
	DumpTo io.Writer

	// Render options
	Format   string
	Detailed bool

	// Refresh skips cache reads; results are still written.
	Refresh bool

	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	switch {
	case o.Trace == nil && o.TracePath == "":
		return errors.New(errors.ErrCodeInvalidInput, "a trace or trace path is required")
	case o.Trace != nil && o.TracePath != "":
		return errors.New(errors.ErrCodeInvalidInput, "trace and trace path are mutually exclusive")
	}
	if o.TracePath != "" {
		if err := errors.ValidatePath(o.TracePath); err != nil {
			return err
		}
	}
	if err := errors.ValidateInputNames(o.InputNames); err != nil {
		return err
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// AllRules returns the framework transforms followed by o.Rules.
func (o *Options) AllRules() []transform.Rule {
	return append(transform.FrameworkTransforms(), o.Rules...)
}

// GraphKeyOpts returns cache key options for the build stage.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	rules := o.AllRules()
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name()
	}
	return cache.GraphKeyOpts{
		InputNames: slices.Clone(o.InputNames),
		Indexed:    o.Indexed,
		Rules:      names,
	}
}

// ArtifactKeyOpts returns cache key options for the render stage.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: o.Format, Detailed: o.Detailed}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and HTTP responses.
	RunID string

	// Graph is the normalized graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the graph's JSON encoding.
	GraphHash string

	// Artifact is the rendered output in Format.
	Artifact []byte
	Format   string

	// Transform reports how many nodes each rule renamed. It is empty when
	// the graph came from the cache.
	Transform transform.Result

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	OpCount    int
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GraphHit  bool
	RenderHit bool
}
