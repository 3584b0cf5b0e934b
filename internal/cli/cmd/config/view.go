package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/ry111/foundation/internal/cli/config"
	"github.com/ry111/foundation/internal/cli/option"
)

func newViewCommand(opt *option.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the stored CLI configuration",
		Args:  option.NoArgs,
		Example: `
# Show the stored configuration
foundation config view
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Reload rather than reusing the copy loaded at startup so the
			// output reflects sibling set commands run since then.
			cfg, err := config.LoadCLIConfig()
			if err != nil {
				return errors.Wrap(err, "load cli config")
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return errors.Wrap(err, "marshal cli config")
			}
			_, err = opt.IOStreams.Out.Write(data)
			return err
		},
	}
	return cmd
}
