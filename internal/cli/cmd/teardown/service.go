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

type serviceOptions struct {
	*option.Option
	Config config.CLIConfig

	Service string
	Cluster string
	Confirm string
}

func newServiceCommand(cfg config.CLIConfig, opt *option.Option) *cobra.Command {
	cmdOpts := &serviceOptions{
		Option: opt,
		Config: cfg,
	}

	cmd := &cobra.Command{
		Use:   "service --service=service [--cluster=cluster] --confirm=DELETE",
		Short: "Destroy both tracks of a service in a cluster",
		Args:  option.NoArgs,
		Example: `
# Destroy both tracks of dawn in the trantor cluster
foundation teardown service --service=dawn --cluster=trantor --confirm=DELETE
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

// addFlags adds the flags for the service options to the provided command.
func (o *serviceOptions) addFlags(cmd *cobra.Command) {
	option.Service(cmd.Flags(), &o.Service, "The service to destroy.")
	option.Cluster(cmd.Flags(), &o.Cluster,
		"The cluster to destroy the service in. If not set, the configured default or the current kubeconfig context is used.")
	option.Confirm(cmd.Flags(), &o.Confirm,
		"Confirmation token. Must be exactly DELETE; prompted for when absent.")

	if err := cmd.MarkFlagRequired(option.ServiceFlag); err != nil {
		panic(errors.Wrapf(err, "could not mark %s flag as required", option.ServiceFlag))
	}
}

// complete fills unset options from stored configuration.
func (o *serviceOptions) complete() {
	if o.Cluster == "" {
		o.Cluster = o.Config.DefaultCluster
	}
}

// validate performs validation of the options. If the options are invalid, an
// error is returned.
func (o *serviceOptions) validate() error {
	// While the flag is marked as required, a user could still provide an
	// empty string.
	if o.Service == "" {
		return errors.New("service is required")
	}
	return nil
}

// run destroys both tracks after the confirmation gate.
func (o *serviceOptions) run(ctx context.Context) error {
	svc, err := topology.ParseService(o.Service)
	if err != nil {
		return err
	}
	cluster := topology.Cluster{Name: o.Cluster}

	clusterName := cluster.Name
	if clusterName == "" {
		clusterName = "the current kubeconfig context"
	}
	if err = confirm(
		o.Confirm,
		fmt.Sprintf("both tracks of %s on %s", svc, clusterName),
	); err != nil {
		return err
	}

	found, err := teardown.NewCoordinator().DestroyService(ctx, svc, cluster)
	if err != nil {
		return err
	}
	if !found {
		_, _ = fmt.Fprintf(
			o.IOStreams.Out,
			"Nothing to destroy: no namespaces of %s remain\n",
			svc,
		)
		return nil
	}
	_, _ = fmt.Fprintf(o.IOStreams.Out, "Destroyed all tracks of %s\n", svc)
	return nil
}
