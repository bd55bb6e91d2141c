package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tracegraph/pkg/trace"
)

// dumpCommand creates the dump command.
func (c *CLI) dumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <trace>",
		Short: "Print the operator table of a recorded trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := trace.FileTracer{}.Trace(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			return trace.Dump(cmd.OutOrStdout(), t.Operators)
		},
	}
}
