package cli

import (
	"github.com/spf13/cobra"
)

// configCommand creates the config command, which prints the effective
// configuration as TOML. Its output is a valid --config file.
func (c *CLI) configCommand() *cobra.Command {
	var opts gridOpts

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Example: `  gridpath config > gridpath.toml
  gridpath config --config gridpath.toml --cols 40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolveConfig(cmd)
			if err != nil {
				return err
			}
			return cfg.Write(cmd.OutOrStdout())
		},
	}
	addGridFlags(cmd, &opts)

	return cmd
}
