package teardown

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ry111/foundation/internal/cli/config"
	"github.com/ry111/foundation/internal/cli/option"
	"github.com/ry111/foundation/internal/teardown"
	"github.com/ry111/foundation/internal/topology"
)

type repositoryOptions struct {
	*option.Option
	Config config.CLIConfig

	Service string
	Region  string
	Confirm string
}

func newRepositoryCommand(
	cfg config.CLIConfig,
	opt *option.Option,
) *cobra.Command {
	cmdOpts := &repositoryOptions{
		Option: opt,
		Config: cfg,
	}

	cmd := &cobra.Command{
		Use:   "repository --service=service [--region=region] --confirm=DELETE",
		Short: "Destroy a service's image repository and every image in it",
		Args:  option.NoArgs,
		Example: `
# Destroy dusk's image repository
foundation teardown repository --service=dusk --confirm=DELETE
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdOpts.complete()

			if err := cmdOpts.validate(); err != nil {
				return err
			}

			return cmdOpts.run(cmd.Context())
		},
	}

	// Register the option flags on the command.
	cmdOpts.addFlags(cmd)

	return cmd
}

// addFlags adds the flags for the repository options to the provided command.
func (o *repositoryOptions) addFlags(cmd *cobra.Command) {
	option.Service(cmd.Flags(), &o.Service,
		"The service whose image repository to destroy.")
	option.Region(cmd.Flags(), &o.Region,
		"The AWS region hosting the repository. If not set, the configured default is used.")
	option.Confirm(cmd.Flags(), &o.Confirm,
		"Confirmation token. Must be exactly DELETE; prompted for when absent.")

	if err := cmd.MarkFlagRequired(option.ServiceFlag); err != nil {
		panic(errors.Wrapf(err, "could not mark %s flag as required", option.ServiceFlag))
	}
}

// complete fills unset options from stored configuration.
func (o *repositoryOptions) complete() {
	if o.Region == "" {
		o.Region = o.Config.DefaultRegion
	}
	if o.Region == "" {
		o.Region = topology.DefaultRegion
	}
}

// validate performs validation of the options. If the options are invalid, an
// error is returned.
func (o *repositoryOptions) validate() error {
	// While the flag is marked as required, a user could still provide an
	// empty string.
	if o.Service == "" {
		return errors.New("service is required")
	}
	return nil
}

// run destroys the repository after the confirmation gate.
func (o *repositoryOptions) run(ctx context.Context) error {
	svc, err := topology.ParseService(o.Service)
	if err != nil {
		return err
	}

	if err = confirm(
		o.Confirm,
		fmt.Sprintf(
			"the %s image repository in %s, images included",
			svc.Repository(),
			o.Region,
		),
	); err != nil {
		return err
	}

	found, err := teardown.NewCoordinator().DestroyRepository(
		ctx,
		svc,
		o.Region,
	)
	if err != nil {
		return err
	}
	if !found {
		_, _ = fmt.Fprintf(
			o.IOStreams.Out,
			"Nothing to destroy: repository %q is already absent\n",
			svc.Repository(),
		)
		return nil
	}
	_, _ = fmt.Fprintf(
		o.IOStreams.Out,
		"Destroyed repository %q\n",
		svc.Repository(),
	)
	return nil
}
