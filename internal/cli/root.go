package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/cli-runtime/pkg/genericiooptions"

	configcmd "github.com/ry111/foundation/internal/cli/cmd/config"
	"github.com/ry111/foundation/internal/cli/cmd/deploy"
	"github.com/ry111/foundation/internal/cli/cmd/render"
	"github.com/ry111/foundation/internal/cli/cmd/resolve"
	"github.com/ry111/foundation/internal/cli/cmd/status"
	"github.com/ry111/foundation/internal/cli/cmd/teardown"
	versioncmd "github.com/ry111/foundation/internal/cli/cmd/version"
	"github.com/ry111/foundation/internal/cli/config"
	"github.com/ry111/foundation/internal/cli/option"
	"github.com/ry111/foundation/internal/kubernetes"
)

// Execute assembles the root command against the stored CLI configuration and
// runs it.
func Execute(ctx context.Context) error {
	cfg, err := config.LoadCLIConfig()
	if err != nil {
		return err
	}

	streams := genericiooptions.IOStreams{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
	opt := option.NewOption()
	opt.IOStreams = &streams
	opt.PrintFlags = genericclioptions.
		NewPrintFlags("").
		WithTypeSetter(kubernetes.GetScheme())

	cmd := NewRootCommand(cfg, opt)
	opt.BindStreams(cmd)
	return cmd.ExecuteContext(ctx)
}

func NewRootCommand(cfg config.CLIConfig, opt *option.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "foundation",
		Short:             "Manage the deployment topology of the dawn, day, and dusk services",
		DisableAutoGenTag: true,
		SilenceErrors:     true,
		SilenceUsage:      true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	cmd.AddCommand(deploy.NewCommand(cfg, opt))
	cmd.AddCommand(render.NewCommand(cfg, opt))
	cmd.AddCommand(resolve.NewCommand(cfg, opt))
	cmd.AddCommand(status.NewCommand(cfg, opt))
	cmd.AddCommand(teardown.NewCommand(cfg, opt))
	cmd.AddCommand(configcmd.NewCommand(cfg, opt))
	cmd.AddCommand(versioncmd.NewCommand(opt))
	return cmd
}
