package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/quest/internal/app"
	"github.com/doeshing/quest/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// NewRootCmd wires the cobra root command. The returned func releases the
// container's resources and should be called once the command has run.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, func() error, error) {
	container, err := app.BuildContainer(ctx, app.Options{
		ConfigPath: opts.ConfigPath,
		Verbose:    opts.Verbose,
	})
	if err != nil {
		return nil, nil, err
	}
	return newRootCommand(container), container.Close, nil
}

func newRootCommand(container *app.Container) *cobra.Command {
	completeCmd := commands.NewCompleteCommand(container)

	root := &cobra.Command{
		Use:   "quest [text...]",
		Short: "quest - chat completion from the command line",
		Long:  "quest sends a conversation to a hosted chat model (gpt-4, temperature 0) and prints the first reply.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !stdinPiped(cmd) {
				return cmd.Help()
			}
			completeCmd.SetContext(cmd.Context())
			return completeCmd.RunE(completeCmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(completeCmd)
	root.AddCommand(commands.NewHistoryCommand(container))
	root.AddCommand(commands.NewConfigCommand(container))
	root.AddCommand(commands.NewDoctorCommand(container))
	root.AddCommand(commands.NewVersionCommand())
	return root
}
