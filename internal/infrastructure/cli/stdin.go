package cli

import (
	"github.com/spf13/cobra"

	"github.com/doeshing/quest/internal/infrastructure/cli/helpers"
)

func stdinPiped(cmd *cobra.Command) bool {
	return helpers.IsPiped(cmd.InOrStdin())
}
