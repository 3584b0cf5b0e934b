package version

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ry111/foundation/internal/cli/option"
	versionpkg "github.com/ry111/foundation/internal/version"
)

func NewCommand(opt *option.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  option.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := versionpkg.GetVersion()
			out := opt.IOStreams.Out
			_, _ = fmt.Fprintln(out, "Version:     ", v.Version)
			_, _ = fmt.Fprintln(out, "Git Commit:  ", v.GitCommit)
			_, _ = fmt.Fprintln(out, "Build Date:  ", v.BuildDate.Format(time.RFC3339))
			_, _ = fmt.Fprintln(out, "Go Version:  ", v.GoVersion)
			_, _ = fmt.Fprintln(out, "Platform:    ", v.Platform)
			return nil
		},
	}
	return cmd
}
