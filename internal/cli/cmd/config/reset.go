package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ry111/foundation/internal/cli/config"
	"github.com/ry111/foundation/internal/cli/option"
)

func newResetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the stored CLI configuration",
		Args:  option.NoArgs,
		Example: `
# Forget all stored defaults
foundation config reset
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.DeleteCLIConfig(); err != nil {
				return errors.Wrap(err, "delete cli config")
			}
			return nil
		},
	}
	return cmd
}
