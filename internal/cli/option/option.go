package option

import (
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/cli-runtime/pkg/genericiooptions"
)

// Option holds the state every command shares: where output goes and how
// structured output is formatted.
type Option struct {
	IOStreams  *genericiooptions.IOStreams
	PrintFlags *genericclioptions.PrintFlags
}

func NewOption() *Option {
	return &Option{}
}

// BindStreams points the command's input and both output sinks at the
// option's IOStreams.
func (o *Option) BindStreams(cmd *cobra.Command) {
	cmd.SetIn(o.IOStreams.In)
	cmd.SetOut(o.IOStreams.Out)
	cmd.SetErr(o.IOStreams.ErrOut)
}

// NoArgs is a wrapper around cobra.NoArgs that additionally prints the usage
// string.
func NoArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		_, _ = fmt.Fprintf(cmd.OutOrStderr(), "%s\n", cmd.UsageString())
		return err
	}
	return nil
}

// ExactArgs is a wrapper around cobra.ExactArgs that additionally prints the
// usage string.
func ExactArgs(n int) cobra.PositionalArgs {
	exactArgs := cobra.ExactArgs(n)
	return func(cmd *cobra.Command, args []string) error {
		if err := exactArgs(cmd, args); err != nil {
			_, _ = fmt.Fprintf(cmd.OutOrStderr(), "%s\n", cmd.UsageString())
			return err
		}
		return nil
	}
}
