package cli

import (
	"errors"
	"fmt"

	"github.com/ashureev/tabtime/internal/cli/formatter"
	"github.com/spf13/cobra"
)

// ErrConfirmationRequired is returned by clear when it cannot ask and --yes
// was not given.
var ErrConfirmationRequired = errors.New("refusing to clear without confirmation; pass --yes")

func newClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				if !app.IsInteractive() {
					return ErrConfirmationRequired
				}
				ok, err := app.Confirm("Delete all tracked time? This cannot be undone.")
				if err != nil {
					return fmt.Errorf("confirmation prompt: %w", err)
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Warning("Aborted. Nothing was deleted."))
					return nil
				}
			}

			deleted, err := app.Repo.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Deleted %d session records.", deleted)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
