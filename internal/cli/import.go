package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracegraph/pkg/pipeline"
)

type importFlags struct {
	output     string
	format     string
	rules      string
	inputNames string
	indexed    bool
	detailed   bool
	dump       bool
	refresh    bool
	cache      cacheFlags
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	var f importFlags

	cmd := &cobra.Command{
		Use:   "import <trace>",
		Short: "Build an operator graph from a recorded trace",
		Long: `Import a recorded trace (JSON or YAML), infer data-flow edges, apply the
rename rules and write the graph.

Without -o the result is written to stdout.`,
		Example: `  tracegraph import convnet.json
  tracegraph import convnet.yaml -f svg -o convnet.svg --input-names image
  tracegraph import model.json --rules extra.toml --dump`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&f.format, "format", "f", pipeline.DefaultFormat, "output format: json, dot, svg")
	cmd.Flags().StringVar(&f.rules, "rules", "", "TOML file with extra rename rules")
	cmd.Flags().StringVar(&f.inputNames, "input-names", "", "comma-separated names for the model inputs")
	cmd.Flags().BoolVar(&f.indexed, "indexed", false, "use the slot-index edge inference")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show shapes and params in DOT/SVG output")
	cmd.Flags().BoolVar(&f.dump, "dump", false, "print the operator table to stderr before building")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results")
	f.cache.register(cmd)

	return cmd
}

func (c *CLI) runImport(cmd *cobra.Command, path string, f importFlags) error {
	ctx := cmd.Context()

	rules, err := loadRules(f.rules)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, f.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, pipeline.Options{
		TracePath:  path,
		InputNames: splitList(f.inputNames),
		Indexed:    f.indexed,
		Rules:      rules,
		Dump:       f.dump,
		DumpTo:     cmd.ErrOrStderr(),
		Format:     f.format,
		Detailed:   f.detailed,
		Refresh:    f.refresh,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Imported %d operators", res.Stats.OpCount))
	if res.Stats.NodeCount == 0 {
		printWarning(cmd.ErrOrStderr(), "Trace %s contains no operators", path)
	}

	if f.output == "" {
		_, err := cmd.OutOrStdout().Write(res.Artifact)
		return err
	}

	if err := os.WriteFile(f.output, res.Artifact, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.output, err)
	}
	w := cmd.OutOrStdout()
	printSuccess(w, "Graph written")
	printStats(w, res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.GraphHit)
	printFile(w, f.output)
	return nil
}
