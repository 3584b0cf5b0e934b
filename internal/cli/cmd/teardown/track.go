package teardown

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ry111/foundation/internal/cli/config"
	"github.com/ry111/foundation/internal/cli/option"
	"github.com/ry111/foundation/internal/teardown"
	"github.com/ry111/foundation/internal/topology"
)

type trackOptions struct {
	*option.Option
	Config config.CLIConfig

	Service string
	Track   string
	Cluster string
	Confirm string
}

func newTrackCommand(cfg config.CLIConfig, opt *option.Option) *cobra.Command {
	cmdOpts := &trackOptions{
		Option: opt,
		Config: cfg,
	}

	cmd := &cobra.Command{
		Use:   "track --service=service --track=track [--cluster=cluster] --confirm=DELETE",
		Short: "Destroy one track of a service by deleting its namespace",
		Args:  option.NoArgs,
		Example: `
# Destroy the rc track of day in the trantor cluster
foundation teardown track --service=day --track=rc --cluster=trantor --confirm=DELETE
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

// addFlags adds the flags for the track options to the provided command.
func (o *trackOptions) addFlags(cmd *cobra.Command) {
	option.Service(cmd.Flags(), &o.Service, "The service whose track to destroy.")
	option.Track(cmd.Flags(), &o.Track, "The track to destroy.")
	option.Cluster(cmd.Flags(), &o.Cluster,
		"The cluster to destroy the track in. If not set, the configured default or the current kubeconfig context is used.")
	option.Confirm(cmd.Flags(), &o.Confirm,
		"Confirmation token. Must be exactly DELETE; prompted for when absent.")

	for _, flag := range []string{option.ServiceFlag, option.TrackFlag} {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			panic(errors.Wrapf(err, "could not mark %s flag as required", flag))
		}
	}
}

// complete fills unset options from stored configuration.
func (o *trackOptions) complete() {
	if o.Cluster == "" {
		o.Cluster = o.Config.DefaultCluster
	}
}

// validate performs validation of the options. If the options are invalid, an
// error is returned.
func (o *trackOptions) validate() error {
	var errs []error

	// While the flags are marked as required, a user could still provide
	// empty strings.
	if o.Service == "" {
		errs = append(errs, errors.New("service is required"))
	}
	if o.Track == "" {
		errs = append(errs, errors.New("track is required"))
	}

	return goerrors.Join(errs...)
}

// run destroys the track after the confirmation gate.
func (o *trackOptions) run(ctx context.Context) error {
	svc, err := topology.ParseService(o.Service)
	if err != nil {
		return err
	}
	track, err := topology.ParseTrack(o.Track)
	if err != nil {
		return err
	}
	unit := topology.Unit{
		Service: svc,
		Track:   track,
		Cluster: topology.Cluster{Name: o.Cluster},
	}

	if err = confirm(
		o.Confirm,
		fmt.Sprintf("the deployment unit %s", unit),
	); err != nil {
		return err
	}

	found, err := teardown.NewCoordinator().DestroyTrack(ctx, unit)
	if err != nil {
		return err
	}
	if !found {
		_, _ = fmt.Fprintf(
			o.IOStreams.Out,
			"Nothing to destroy: namespace %q is already absent\n",
			unit.Namespace(),
		)
		return nil
	}
	_, _ = fmt.Fprintf(
		o.IOStreams.Out,
		"Destroyed %s (deleted namespace %q)\n",
		unit,
		unit.Namespace(),
	)
	return nil
}
