// Package cli implements the tracegraph command-line interface.
//
// # Commands
//
//   - import: build a graph from a recorded trace and render it
//   - dump: print the diagnostic operator table of a trace
//   - rules: list the rename rules applied after import
//   - serve: run the HTTP API
//   - cache: manage the local graph cache
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tracegraph/pkg/buildinfo"
	"github.com/matzehuels/tracegraph/pkg/cache"
	"github.com/matzehuels/tracegraph/pkg/observability"
	"github.com/matzehuels/tracegraph/pkg/pipeline"
	"github.com/matzehuels/tracegraph/pkg/transform"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "tracegraph"

	// envRedisURL selects a shared Redis cache when set.
	envRedisURL = "TRACEGRAPH_REDIS_URL"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "tracegraph turns traced models into operator graphs",
		Long:         `tracegraph imports a recorded model trace, infers data-flow edges between operators, normalizes operator names and renders the result as JSON, DOT or SVG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
				hooks := observability.NewLogHooks(c.Logger)
				observability.SetPipelineHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.dumpCommand())
	root.AddCommand(c.rulesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags selects the cache backend for commands that run the pipeline.
type cacheFlags struct {
	noCache  bool
	redisURL string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.redisURL, "redis-url", "", "use a shared Redis cache (env "+envRedisURL+")")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f cacheFlags) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, f)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), appName+":"+buildinfo.Version+":")
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, f cacheFlags) (cache.Cache, error) {
	if f.noCache {
		return cache.NewNullCache(), nil
	}
	url := f.redisURL
	if url == "" {
		url = os.Getenv(envRedisURL)
	}
	if url != "" {
		c.Logger.Debug("using redis cache")
		return cache.NewRedisCache(ctx, url)
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// loadRules reads an optional TOML rule file.
func loadRules(path string) ([]transform.Rule, error) {
	if path == "" {
		return nil, nil
	}
	return transform.LoadRules(path)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/tracegraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// splitList parses a comma-separated flag value. Blank items are kept so
// that validation can reject them.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
