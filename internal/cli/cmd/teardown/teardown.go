package teardown

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/ry111/foundation/internal/cli/config"
	"github.com/ry111/foundation/internal/cli/option"
	"github.com/ry111/foundation/internal/teardown"
)

func NewCommand(cfg config.CLIConfig, opt *option.Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Destroy deployment topology at a chosen scope",
	}

	// Subcommands
	cmd.AddCommand(newTrackCommand(cfg, opt))
	cmd.AddCommand(newServiceCommand(cfg, opt))
	cmd.AddCommand(newClusterCommand(cfg, opt))
	cmd.AddCommand(newRepositoryCommand(cfg, opt))
	return cmd
}

// confirm enforces the destroy gate. When no token was supplied on the
// command line it asks for one interactively; either way the token must match
// exactly before any destroy runs.
func confirm(token string, scope string) error {
	if token == "" {
		prompt := &survey.Input{
			Message: fmt.Sprintf(
				"This will destroy %s. Type %q to continue:",
				scope,
				teardown.ConfirmationToken,
			),
		}
		if err := survey.AskOne(prompt, &token); err != nil {
			return err
		}
	}
	return teardown.Confirm(token)
}
