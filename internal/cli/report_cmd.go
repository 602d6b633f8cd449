package cli

import (
	"fmt"

	"github.com/ashureev/tabtime/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show time spent per domain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, window, totals, err := app.totals(cmd.Context(), flags)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReport(filter.Name, window, totals, app.Location))
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}
