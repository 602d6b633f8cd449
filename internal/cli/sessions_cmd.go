package cli

import (
	"fmt"

	"github.com/ashureev/tabtime/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newSessionsCmd(app *App) *cobra.Command {
	var last int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := app.Repo.ListRecords(cmd.Context())
			if err != nil {
				return err
			}
			if last > 0 && len(records) > last {
				records = records[len(records)-last:]
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSessions(records, app.Location))
			return nil
		},
	}
	cmd.Flags().IntVarP(&last, "last", "n", 0, "Only show the most recent n sessions")

	return cmd
}
