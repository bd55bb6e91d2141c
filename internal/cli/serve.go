package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracegraph/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		rulesFile string
		timeout   time.Duration
		maxBody   int64
		cf        cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the import pipeline over HTTP",
		Long: `Serve the import pipeline over HTTP.

  GET  /healthz
  GET  /v1/rules
  POST /v1/graphs?format=json|dot|svg&input_names=a,b&indexed=true&detailed=true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rules, err := loadRules(rulesFile)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cf)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner, c.Logger, server.Options{
				Rules:          rules,
				MaxBodyBytes:   maxBody,
				RequestTimeout: timeout,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "TOML file with extra rename rules")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout (0 disables)")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum trace size in bytes")
	cf.register(cmd)

	return cmd
}
