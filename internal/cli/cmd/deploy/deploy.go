package deploy

import (
	"context"
	goerrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ry111/foundation/internal/cli/config"
	"github.com/ry111/foundation/internal/cli/option"
	"github.com/ry111/foundation/internal/image"
	"github.com/ry111/foundation/internal/ingress"
	"github.com/ry111/foundation/internal/kubernetes"
	"github.com/ry111/foundation/internal/logging"
	"github.com/ry111/foundation/internal/manifest"
	"github.com/ry111/foundation/internal/namespaces"
	"github.com/ry111/foundation/internal/rollout"
	"github.com/ry111/foundation/internal/topology"
)

type deployOptions struct {
	*option.Option
	Config        config.CLIConfig
	RolloutConfig rollout.CoordinatorConfig

	Service   string
	Track     string
	Cluster   string
	Region    string
	Tag       string
	Manifests string
	Timeout   time.Duration
}

func NewCommand(cfg config.CLIConfig, opt *option.Option) *cobra.Command {
	cmdOpts := &deployOptions{
		Option:        opt,
		Config:        cfg,
		RolloutConfig: rollout.CoordinatorConfigFromEnv(),
	}

	cmd := &cobra.Command{
		Use:   "deploy --service=service [--track=track] [--cluster=cluster]",
		Short: "Deploy a service's tracks into a cluster and wait for availability",
		Args:  option.NoArgs,
		Example: `
# Deploy both tracks of dawn into the default cluster
foundation deploy --service=dawn

# Deploy only the rc track of day into the trantor cluster
foundation deploy --service=day --track=rc --cluster=trantor

# Roll prod back to a known-good build instead of the track's tag alias
foundation deploy --service=dusk --track=prod --tag=2024-06-01-4f1c9aa

# Render from manifest templates on disk rather than the built-in set
foundation deploy --service=day --manifests=./manifests
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

// addFlags adds the flags for the deploy options to the provided command.
func (o *deployOptions) addFlags(cmd *cobra.Command) {
	option.Service(cmd.Flags(), &o.Service, "The service to deploy.")
	option.Track(cmd.Flags(), &o.Track,
		"The track to deploy. If not set, both tracks are deployed.")
	option.Cluster(cmd.Flags(), &o.Cluster,
		"The cluster to deploy into. If not set, the configured default or the current kubeconfig context is used.")
	option.Region(cmd.Flags(), &o.Region,
		"The AWS region hosting the image registry. If not set, the configured default is used.")
	option.Tag(cmd.Flags(), &o.Tag,
		"An immutable tag or digest to deploy instead of the track's tag alias.")
	option.Manifests(cmd.Flags(), &o.Manifests,
		"A directory of manifest templates to render instead of the built-in set.")
	option.Timeout(cmd.Flags(), &o.Timeout, o.RolloutConfig.WaitTimeout,
		"How long to wait for each rollout to become available.")

	if err := cmd.MarkFlagRequired(option.ServiceFlag); err != nil {
		panic(errors.Wrapf(err, "could not mark %s flag as required", option.ServiceFlag))
	}
}

// complete fills unset options from stored configuration.
func (o *deployOptions) complete() {
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
func (o *deployOptions) validate() error {
	var errs []error

	// While the flag is marked as required, a user could still provide an
	// empty string.
	if o.Service == "" {
		errs = append(errs, errors.New("service is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}

	return goerrors.Join(errs...)
}

// run deploys the requested tracks and reports each rollout's outcome.
func (o *deployOptions) run(ctx context.Context) error {
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
	cluster := topology.Cluster{Name: o.Cluster, Region: o.Region}

	cl, err := kubernetes.NewClient(cluster)
	if err != nil {
		return err
	}

	resolver := image.NewResolver()
	allocator := namespaces.NewAllocator(cl)
	rolloutCfg := o.RolloutConfig
	rolloutCfg.WaitTimeout = o.Timeout
	coordinator := rollout.NewCoordinator(cl, rolloutCfg)

	// The tracks land in disjoint namespaces, so they roll out concurrently
	// and one failing does not stop the other.
	results := make([]*rollout.Result, len(tracks))
	trackErrs := make([]error, len(tracks))
	g := &errgroup.Group{}
	for i, track := range tracks {
		unit := topology.Unit{Service: svc, Track: track, Cluster: cluster}
		g.Go(func() error {
			results[i], trackErrs[i] = o.deployUnit(
				ctx,
				resolver,
				allocator,
				coordinator,
				unit,
			)
			return trackErrs[i]
		})
	}
	// Every track records its own outcome above; Wait only synchronizes.
	_ = g.Wait()

	var failures []error
	for i, track := range tracks {
		unit := topology.Unit{Service: svc, Track: track, Cluster: cluster}
		if trackErrs[i] != nil {
			failures = append(failures, trackErrs[i])
			continue
		}
		result := results[i]
		switch result.Phase {
		case rollout.PhaseAvailable:
			_, _ = fmt.Fprintf(
				o.IOStreams.Out,
				"%s: %s (%d/%d ready) running %s\n",
				unit,
				result.Phase,
				result.ReadyReplicas,
				result.DesiredReplicas,
				result.Image,
			)
		default:
			detail := fmt.Sprintf(
				"%d/%d ready",
				result.ReadyReplicas,
				result.DesiredReplicas,
			)
			if len(result.Messages) > 0 {
				detail = fmt.Sprintf(
					"%s; %s",
					detail,
					strings.Join(result.Messages, "; "),
				)
			}
			failures = append(failures, errors.Errorf(
				"rollout of %s did not become available within %s (%s); it "+
					"keeps converging on the cluster, inspect with: %s",
				unit,
				o.Timeout,
				detail,
				unit.InspectCommand(),
			))
		}
	}
	return goerrors.Join(failures...)
}

// deployUnit runs one track end to end: resolve the image, render and bind
// the manifests, ensure the namespace, apply, and wait.
func (o *deployOptions) deployUnit(
	ctx context.Context,
	resolver image.Resolver,
	allocator namespaces.Allocator,
	coordinator rollout.Coordinator,
	unit topology.Unit,
) (*rollout.Result, error) {
	ctx = logging.ContextWithLogger(
		ctx,
		logging.LoggerFromContext(ctx).WithValues(
			"service", unit.Service,
			"track", unit.Track,
			"cluster", unit.Cluster.Name,
		),
	)

	ref, err := resolver.Resolve(
		ctx,
		unit.Service,
		unit.Track,
		unit.Cluster.Region,
		o.Tag,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "error resolving image for %s", unit)
	}

	var bundle *manifest.Bundle
	if o.Manifests != "" {
		if bundle, err = manifest.RenderFromTemplates(
			unit,
			ref,
			o.Manifests,
		); err != nil {
			return nil, errors.Wrapf(err, "error rendering manifests for %s", unit)
		}
	} else {
		bundle = manifest.Render(unit, ref)
	}
	if bundle.Ingress != nil {
		ingress.Bind(bundle.Ingress, unit.Cluster)
	}

	if _, err = allocator.Ensure(
		ctx,
		unit.Namespace(),
		unit.NamespaceLabels(),
	); err != nil {
		return nil, errors.Wrapf(err, "error ensuring namespace for %s", unit)
	}

	return coordinator.Apply(ctx, unit, bundle)
}
