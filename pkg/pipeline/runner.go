package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/tracegraph/pkg/cache"
	"github.com/matzehuels/tracegraph/pkg/graph"
	"github.com/matzehuels/tracegraph/pkg/importer"
	graphio "github.com/matzehuels/tracegraph/pkg/io"
	"github.com/matzehuels/tracegraph/pkg/observability"
	"github.com/matzehuels/tracegraph/pkg/trace"
	"github.com/matzehuels/tracegraph/pkg/transform"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString(), Format: opts.Format}
	opts.Logger = opts.Logger.With("run", result.RunID[:8])

	tr, err := Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.OpCount = tr.Len()

	buildStart := time.Now()
	g, graphJSON, tres, graphHit, err := r.BuildWithCacheInfo(ctx, tr, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.GraphHash = cache.Hash(graphJSON)
	result.Transform = tres
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.GraphHit = graphHit

	opts.Logger.Info("built graph",
		"ops", result.Stats.OpCount,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cached", graphHit,
		"duration", result.Stats.BuildTime)

	renderStart := time.Now()
	artifact, renderHit, err := r.RenderWithCacheInfo(ctx, g, graphJSON, opts)
	if err != nil {
		return nil, err
	}
	result.Artifact = artifact
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered graph",
		"format", opts.Format,
		"bytes", len(artifact),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build imports tr into a new graph and applies opts.AllRules.
func Build(ctx context.Context, tr *trace.Trace, opts Options) (*graph.Graph, transform.Result, error) {
	hooks := observability.Pipeline()

	hooks.OnImportStart(ctx, tr.Len())
	start := time.Now()
	g, err := importer.Import(ctx, trace.Recorded{T: tr}, nil, nil, nil, importer.Options{
		InputNames: opts.InputNames,
		Verbose:    opts.Dump,
		DumpTo:     opts.DumpTo,
		Indexed:    opts.Indexed,
		Logger:     opts.Logger,
	})
	if err != nil {
		hooks.OnImportComplete(ctx, 0, 0, time.Since(start), err)
		return nil, transform.Result{}, err
	}
	hooks.OnImportComplete(ctx, g.NodeCount(), g.EdgeCount(), time.Since(start), nil)

	start = time.Now()
	rules := opts.AllRules()
	res := transform.Apply(g, rules...)
	hooks.OnTransformComplete(ctx, len(rules), res.Changed, time.Since(start))
	for _, rr := range res.Rules {
		opts.Logger.Debug("applied rule", "rule", rr.Rule, "changed", rr.Changed)
	}
	return g, res, nil
}

// BuildWithCacheInfo builds the graph for tr, reading and writing the graph
// cache. It returns the graph, its JSON encoding, the rule results (empty on
// a cache hit) and whether the cache was hit.
//
// Graphs read from the cache come back through JSON, so integer params are
// float64 there.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, tr *trace.Trace, opts Options) (*graph.Graph, []byte, transform.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, transform.Result{}, false, err
	}

	traceHash := cache.NewHasher()
	if err := trace.WriteJSON(tr, traceHash); err != nil {
		return nil, nil, transform.Result{}, false, fmt.Errorf("hash trace: %w", err)
	}
	cacheKey := r.Keyer.GraphKey(traceHash.Sum(), opts.GraphKeyOpts())

	if !opts.Refresh && !opts.Dump {
		if data, hit := r.get(ctx, "graph", cacheKey); hit {
			g, err := graphio.ReadJSON(bytes.NewReader(data))
			if err == nil {
				return g, data, transform.Result{}, true, nil
			}
			opts.Logger.Warn("discarding unreadable cached graph", "err", err)
		}
	}

	g, res, err := Build(ctx, tr, opts)
	if err != nil {
		return nil, nil, transform.Result{}, false, err
	}

	var buf bytes.Buffer
	if err := graphio.WriteJSON(g, &buf); err != nil {
		return nil, nil, transform.Result{}, false, err
	}
	r.set(ctx, "graph", cacheKey, buf.Bytes(), cache.TTLGraph, opts.Logger)
	return g, buf.Bytes(), res, false, nil
}

// RenderWithCacheInfo renders g with caching and returns cache hit info.
// JSON output is the graph encoding itself and is never cached separately.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *graph.Graph, graphJSON []byte, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Format)
	start := time.Now()

	if opts.Format == FormatJSON {
		hooks.OnRenderComplete(ctx, opts.Format, len(graphJSON), time.Since(start), nil)
		return graphJSON, false, nil
	}

	cacheKey := r.Keyer.ArtifactKey(cache.Hash(graphJSON), opts.ArtifactKeyOpts())
	if !opts.Refresh {
		if data, hit := r.get(ctx, "artifact", cacheKey); hit {
			hooks.OnRenderComplete(ctx, opts.Format, len(data), time.Since(start), nil)
			return data, true, nil
		}
	}

	data, err := Render(ctx, g, graphJSON, opts)
	hooks.OnRenderComplete(ctx, opts.Format, len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	r.set(ctx, "artifact", cacheKey, data, cache.TTLArtifact, opts.Logger)
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get reads a cache entry. Cache failures are treated as misses.
func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", keyType, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// set writes a cache entry. Write failures are logged and otherwise ignored.
func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration, logger *log.Logger) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "key", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
