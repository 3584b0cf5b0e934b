package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ry111/foundation/internal/cli/config"
	"github.com/ry111/foundation/internal/cli/option"
)

func newSetClusterCommand(cfg config.CLIConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-cluster",
		Short: "Set the default cluster",
		Args:  option.ExactArgs(1),
		Example: `
# Set a default cluster
foundation config set-cluster trantor

# Unset a default cluster
foundation config set-cluster ""
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Kubeconfig context names are case-sensitive; only trim.
			cfg.DefaultCluster = strings.TrimSpace(args[0])

			if err := config.SaveCLIConfig(cfg); err != nil {
				return errors.Wrap(err, "save cli config")
			}
			return nil
		},
	}
	return cmd
}
