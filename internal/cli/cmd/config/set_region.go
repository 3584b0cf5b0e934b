package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ry111/foundation/internal/cli/config"
	"github.com/ry111/foundation/internal/cli/option"
)

func newSetRegionCommand(cfg config.CLIConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-region",
		Short: "Set the default AWS region",
		Args:  option.ExactArgs(1),
		Example: `
# Set a default region
foundation config set-region us-west-2

# Unset a default region
foundation config set-region ""
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			region := strings.TrimSpace(strings.ToLower(args[0]))
			cfg.DefaultRegion = region

			if err := config.SaveCLIConfig(cfg); err != nil {
				return errors.Wrap(err, "save cli config")
			}
			return nil
		},
	}
	return cmd
}
