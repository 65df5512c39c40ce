package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bisegni/rowfdw/pkg/options"
)

var (
	OptionsTableOpt []string
	OptionsReveal   bool
)

var optionsCmd = &cobra.Command{
	Use:   "options [table]",
	Short: "Print the resolved connection parameters",
	Long: `Resolve the connection parameters the way a scan would: compiled
defaults, then the server scope, then the table scope. The api key is
redacted unless --reveal is given.

Examples:
  rowfdw options
  rowfdw options people --table-opt connection_id=c2`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := loadConfig()
		if err != nil {
			return err
		}

		p := options.Resolve(f.Server, options.Defaults())
		if len(args) == 1 {
			t, err := resolveTable(f, newCatalog(f), args[0], nil, OptionsTableOpt)
			if err != nil {
				return err
			}
			p = t.Params()
		}
		if !OptionsReveal {
			p = p.Redacted()
		}

		out, err := yaml.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	optionsCmd.Flags().StringArrayVar(&OptionsTableOpt, "table-opt", nil, "Table option override as key=value (repeatable)")
	optionsCmd.Flags().BoolVar(&OptionsReveal, "reveal", false, "Print the api key in clear")
}
