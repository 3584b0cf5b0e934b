package config

import (
	"github.com/spf13/cobra"

	"github.com/ry111/foundation/internal/cli/config"
	"github.com/ry111/foundation/internal/cli/option"
)

func NewCommand(cfg config.CLIConfig, opt *option.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage foundation CLI configuration",
	}

	// Subcommands
	cmd.AddCommand(newSetClusterCommand(cfg))
	cmd.AddCommand(newSetRegionCommand(cfg))
	cmd.AddCommand(newUnsetCommand())
	cmd.AddCommand(newResetCommand())
	cmd.AddCommand(newViewCommand(opt))
	return cmd
}
