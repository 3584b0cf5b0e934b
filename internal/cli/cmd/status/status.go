package status

import (
	"context"
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ry111/foundation/internal/cli/config"
	"github.com/ry111/foundation/internal/cli/option"
	"github.com/ry111/foundation/internal/kubernetes"
	"github.com/ry111/foundation/internal/rollout"
	"github.com/ry111/foundation/internal/topology"
)

type statusOptions struct {
	*option.Option
	Config config.CLIConfig

	Service string
	Track   string
	Cluster string
}

func NewCommand(cfg config.CLIConfig, opt *option.Option) *cobra.Command {
	cmdOpts := &statusOptions{
		Option: opt,
		Config: cfg,
	}

	cmd := &cobra.Command{
		Use:   "status --service=service [--track=track] [--cluster=cluster]",
		Short: "Report the current rollout phase of a service's tracks",
		Args:  option.NoArgs,
		Example: `
# Report both tracks of dawn in the default cluster
foundation status --service=dawn

# Report only the rc track of day in the trantor cluster
foundation status --service=day --track=rc --cluster=trantor
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

// addFlags adds the flags for the status options to the provided command.
func (o *statusOptions) addFlags(cmd *cobra.Command) {
	option.Service(cmd.Flags(), &o.Service, "The service to report on.")
	option.Track(cmd.Flags(), &o.Track,
		"The track to report on. If not set, both tracks are reported.")
	option.Cluster(cmd.Flags(), &o.Cluster,
		"The cluster to inspect. If not set, the configured default or the current kubeconfig context is used.")

	if err := cmd.MarkFlagRequired(option.ServiceFlag); err != nil {
		panic(errors.Wrapf(err, "could not mark %s flag as required", option.ServiceFlag))
	}
}

// complete fills unset options from stored configuration.
func (o *statusOptions) complete() {
	if o.Cluster == "" {
		o.Cluster = o.Config.DefaultCluster
	}
}

// validate performs validation of the options. If the options are invalid, an
// error is returned.
func (o *statusOptions) validate() error {
	// While the flag is marked as required, a user could still provide an
	// empty string.
	if o.Service == "" {
		return errors.New("service is required")
	}
	return nil
}

// run takes one observation per requested track and prints it.
func (o *statusOptions) run(ctx context.Context) error {
	svc, err := topology.ParseService(o.Service)
	if err != nil {
		return err
	}
	tracks := topology.AllTracks()
	if o.Track != "" {
		track, err := topology.ParseTrack(o.Track)
		if err != nil {
			return err
		}
		tracks = []topology.Track{track}
	}
	cluster := topology.Cluster{Name: o.Cluster}

	cl, err := kubernetes.NewClient(cluster)
	if err != nil {
		return err
	}
	coordinator := rollout.NewCoordinator(cl, rollout.CoordinatorConfigFromEnv())

	var errs []error
	for _, track := range tracks {
		unit := topology.Unit{Service: svc, Track: track, Cluster: cluster}
		result, err := coordinator.Status(ctx, unit)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		line := fmt.Sprintf(
			"%s: %s (%d/%d ready)",
			unit,
			result.Phase,
			result.ReadyReplicas,
			result.DesiredReplicas,
		)
		if result.Image != "" {
			line = fmt.Sprintf("%s running %s", line, result.Image)
		}
		if len(result.Messages) > 0 {
			line = fmt.Sprintf("%s [%s]", line, strings.Join(result.Messages, "; "))
		}
		_, _ = fmt.Fprintln(o.IOStreams.Out, line)
	}
	return goerrors.Join(errs...)
}
