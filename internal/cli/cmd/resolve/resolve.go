package resolve

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ry111/foundation/internal/cli/config"
	"github.com/ry111/foundation/internal/cli/option"
	"github.com/ry111/foundation/internal/image"
	"github.com/ry111/foundation/internal/topology"
)

type resolveOptions struct {
	*option.Option
	Config config.CLIConfig

	Service string
	Track   string
	Region  string
	Tag     string
}

func NewCommand(cfg config.CLIConfig, opt *option.Option) *cobra.Command {
	cmdOpts := &resolveOptions{
		Option: opt,
		Config: cfg,
	}

	cmd := &cobra.Command{
		Use:   "resolve --service=service --track=track",
		Short: "Resolve the image reference a deployment unit would run",
		Args:  option.NoArgs,
		Example: `
# Resolve the image the prod track of dawn would run
foundation resolve --service=dawn --track=prod

# Resolve a pinned build instead of the track's tag alias
foundation resolve --service=dawn --track=prod --tag=2024-06-01-4f1c9aa
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

// addFlags adds the flags for the resolve options to the provided command.
func (o *resolveOptions) addFlags(cmd *cobra.Command) {
	option.Service(cmd.Flags(), &o.Service, "The service to resolve an image for.")
	option.Track(cmd.Flags(), &o.Track, "The track to resolve an image for.")
	option.Region(cmd.Flags(), &o.Region,
		"The AWS region hosting the image registry. If not set, the configured default is used.")
	option.Tag(cmd.Flags(), &o.Tag,
		"An immutable tag or digest to resolve instead of the track's tag alias.")

	for _, flag := range []string{option.ServiceFlag, option.TrackFlag} {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			panic(errors.Wrapf(err, "could not mark %s flag as required", flag))
		}
	}
}

// complete fills unset options from stored configuration.
func (o *resolveOptions) complete() {
	if o.Region == "" {
		o.Region = o.Config.DefaultRegion
	}
	if o.Region == "" {
		o.Region = topology.DefaultRegion
	}
}

// validate performs validation of the options. If the options are invalid, an
// error is returned.
func (o *resolveOptions) validate() error {
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

// run resolves and prints the image reference.
func (o *resolveOptions) run(ctx context.Context) error {
	svc, err := topology.ParseService(o.Service)
	if err != nil {
		return err
	}
	track, err := topology.ParseTrack(o.Track)
	if err != nil {
		return err
	}

	ref, err := image.NewResolver().Resolve(ctx, svc, track, o.Region, o.Tag)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(o.IOStreams.Out, ref.String())
	return err
}
