package render

import (
	"context"
	goerrors "errors"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/utils/ptr"

	"github.com/ry111/foundation/internal/cli/config"
	"github.com/ry111/foundation/internal/cli/option"
	"github.com/ry111/foundation/internal/image"
	"github.com/ry111/foundation/internal/ingress"
	"github.com/ry111/foundation/internal/manifest"
	"github.com/ry111/foundation/internal/topology"
)

type renderOptions struct {
	*option.Option
	Config config.CLIConfig

	Service   string
	Track     string
	Cluster   string
	Region    string
	Tag       string
	Manifests string
}

func NewCommand(cfg config.CLIConfig, opt *option.Option) *cobra.Command {
	cmdOpts := &renderOptions{
		Option: opt,
		Config: cfg,
	}

	cmd := &cobra.Command{
		Use:   "render --service=service --track=track",
		Short: "Render a deployment unit's resource specs without applying them",
		Args:  option.NoArgs,
		Example: `
# Render the rc track of day as multi-document YAML
foundation render --service=day --track=rc

# Render as JSON
foundation render --service=day --track=rc -o json

# Render from manifest templates on disk
foundation render --service=day --track=rc --manifests=./manifests
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

// addFlags adds the flags for the render options to the provided command.
func (o *renderOptions) addFlags(cmd *cobra.Command) {
	o.PrintFlags.AddFlags(cmd)

	option.Service(cmd.Flags(), &o.Service, "The service to render.")
	option.Track(cmd.Flags(), &o.Track, "The track to render.")
	option.Cluster(cmd.Flags(), &o.Cluster,
		"The cluster the specs are rendered for; it determines the load balancer group.")
	option.Region(cmd.Flags(), &o.Region,
		"The AWS region hosting the image registry. If not set, the configured default is used.")
	option.Tag(cmd.Flags(), &o.Tag,
		"An immutable tag or digest to render instead of the track's tag alias.")
	option.Manifests(cmd.Flags(), &o.Manifests,
		"A directory of manifest templates to render instead of the built-in set.")

	for _, flag := range []string{option.ServiceFlag, option.TrackFlag} {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			panic(errors.Wrapf(err, "could not mark %s flag as required", flag))
		}
	}
}

// complete fills unset options from stored configuration.
func (o *renderOptions) complete() {
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
func (o *renderOptions) validate() error {
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

// run renders the unit's resource specs and prints them.
func (o *renderOptions) run(ctx context.Context) error {
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
		Cluster: topology.Cluster{Name: o.Cluster, Region: o.Region},
	}

	ref, err := image.NewResolver().Resolve(
		ctx,
		svc,
		track,
		unit.Cluster.Region,
		o.Tag,
	)
	if err != nil {
		return errors.Wrapf(err, "error resolving image for %s", unit)
	}

	var bundle *manifest.Bundle
	if o.Manifests != "" {
		if bundle, err = manifest.RenderFromTemplates(
			unit,
			ref,
			o.Manifests,
		); err != nil {
			return errors.Wrapf(err, "error rendering manifests for %s", unit)
		}
	} else {
		bundle = manifest.Render(unit, ref)
	}
	if bundle.Ingress != nil {
		ingress.Bind(bundle.Ingress, unit.Cluster)
	}

	if ptr.Deref(o.PrintFlags.OutputFormat, "") != "" {
		printer, err := o.PrintFlags.ToPrinter()
		if err != nil {
			return errors.Wrap(err, "new printer")
		}
		for _, obj := range bundle.Objects() {
			if err = printer.PrintObj(obj, o.IOStreams.Out); err != nil {
				return errors.Wrap(err, "print object")
			}
		}
		return nil
	}

	data, err := bundle.MarshalYAML()
	if err != nil {
		return errors.Wrapf(err, "error marshaling manifests for %s", unit)
	}
	_, err = o.IOStreams.Out.Write(data)
	return err
}
