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

type clusterOptions struct {
	*option.Option
	Config config.CLIConfig

	Cluster string
	Region  string
	Confirm string
}

func newClusterCommand(cfg config.CLIConfig, opt *option.Option) *cobra.Command {
	cmdOpts := &clusterOptions{
		Option: opt,
		Config: cfg,
	}

	cmd := &cobra.Command{
		Use:   "cluster --cluster=cluster [--region=region] --confirm=DELETE",
		Short: "Destroy an entire cluster and everything it hosts",
		Args:  option.NoArgs,
		Example: `
# Destroy the trantor cluster
foundation teardown cluster --cluster=trantor --confirm=DELETE
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

// addFlags adds the flags for the cluster options to the provided command.
func (o *clusterOptions) addFlags(cmd *cobra.Command) {
	option.Cluster(cmd.Flags(), &o.Cluster,
		"The cluster to destroy. If not set, the configured default is used.")
	option.Region(cmd.Flags(), &o.Region,
		"The AWS region hosting the cluster. If not set, the configured default is used.")
	option.Confirm(cmd.Flags(), &o.Confirm,
		"Confirmation token. Must be exactly DELETE; prompted for when absent.")
}

// complete fills unset options from stored configuration.
func (o *clusterOptions) complete() {
	if o.Cluster == "" {
		o.Cluster = o.Config.DefaultCluster
	}
	if o.Region == "" {
		o.Region = o.Config.DefaultRegion
	}
	if o.Region == "" {
		o.Region = topology.DefaultRegion
	}
}

// validate performs validation of the options. If the options are invalid, an
// error is returned.
func (o *clusterOptions) validate() error {
	// Destroying "whatever the current context points at" is too blunt for
	// this scope; the cluster must be named.
	if o.Cluster == "" {
		return errors.New("cluster is required")
	}
	return nil
}

// run destroys the cluster after the confirmation gate.
func (o *clusterOptions) run(ctx context.Context) error {
	cluster := topology.Cluster{Name: o.Cluster, Region: o.Region}

	if err := confirm(
		o.Confirm,
		fmt.Sprintf(
			"the %s cluster in %s and everything it hosts",
			cluster.Name,
			cluster.Region,
		),
	); err != nil {
		return err
	}

	found, err := teardown.NewCoordinator().DestroyCluster(ctx, cluster)
	if err != nil {
		return err
	}
	if !found {
		_, _ = fmt.Fprintf(
			o.IOStreams.Out,
			"Nothing to destroy: cluster %q is already absent\n",
			cluster.Name,
		)
		return nil
	}
	_, _ = fmt.Fprintf(
		o.IOStreams.Out,
		"Destroying cluster %q; the control plane finishes the teardown asynchronously\n",
		cluster.Name,
	)
	return nil
}
