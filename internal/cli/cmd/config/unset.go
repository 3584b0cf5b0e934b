package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ry111/foundation/internal/cli/config"
	"github.com/ry111/foundation/internal/cli/option"
)

func newUnsetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unset",
		Short: "Unset an individual value",
		Args:  option.ExactArgs(1),
		Example: `
# Unset the default cluster
foundation config unset cluster

# Unset the default region
foundation config unset region
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadCLIConfig()
			if err != nil {
				return errors.Wrap(err, "load cli config")
			}

			key := strings.ToLower(args[0])
			switch key {
			case "cluster":
				cfg.DefaultCluster = ""
			case "region":
				cfg.DefaultRegion = ""
			default:
				return errors.Errorf("unknown key %q", key)
			}

			if err := config.SaveCLIConfig(cfg); err != nil {
				return errors.Wrap(err, "save cli config")
			}
			return nil
		},
	}
	return cmd
}
