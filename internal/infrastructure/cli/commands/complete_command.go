package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/quest/internal/app"
	configapp "github.com/doeshing/quest/internal/application/config"
	"github.com/doeshing/quest/internal/infrastructure/cli/helpers"
)

// NewCompleteCommand creates the complete command
func NewCompleteCommand(container *app.Container) *cobra.Command {
	var (
		system  string
		file    string
		user    []string
		timeout time.Duration
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "complete [text...]",
		Short: "Send a conversation to the model and print the reply",
		Long: `Send a conversation to the completion endpoint and print the first reply.

Messages are assembled in order: --system, messages from --file, each --user,
then any positional text as a final user message. With no input at all, a
conversation piped on stdin is used.

  quest complete "Explain CAP in one sentence"
  quest complete --system "Answer in French" --user "Hello"
  quest complete --file conversation.yaml
  cat conversation.json | quest complete`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configapp.Validate(container.Config); err != nil {
				return fmt.Errorf("%s: %w", ErrInvalidConfiguration, err)
			}

			messages, err := helpers.BuildConversation(helpers.ConversationInput{
				System: system,
				File:   file,
				User:   user,
				Args:   args,
				Stdin:  cmd.InOrStdin(),
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			result, err := container.CompletionService.Complete(ctx, messages)
			if err != nil {
				return err
			}
			helpers.RenderCompletion(cmd.OutOrStdout(), cmd.ErrOrStderr(), result, verbose)
			return nil
		},
	}

	cmd.Flags().StringVarP(&system, "system", "s", "", "System prompt placed first in the conversation")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON conversation file (- for stdin)")
	cmd.Flags().StringArrayVarP(&user, "user", "u", nil, "User message (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Cancel the request after this long (0 uses the configured client timeout)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print completion id, model and latency")

	return cmd
}
