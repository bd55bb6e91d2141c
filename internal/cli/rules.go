package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tracegraph/pkg/transform"
)

// rulesCommand creates the rules command.
func (c *CLI) rulesCommand() *cobra.Command {
	var rulesFile string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rename rules applied after import",
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := loadRules(rulesFile)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			builtin := transform.FrameworkTransforms()
			for i, r := range append(builtin, extra...) {
				source := "builtin"
				if i >= len(builtin) {
					source = rulesFile
				}
				printRule(w, i+1, r, source)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesFile, "rules", "", "TOML file with extra rename rules")
	return cmd
}

func ruleParts(r transform.Rule) (string, string) {
	if rn, ok := r.(*transform.Rename); ok {
		return rn.Pattern(), rn.Replacement()
	}
	return r.Name(), ""
}
