package cli

import (
	"fmt"
	"os"

	"github.com/ashureev/tabtime/internal/cli/formatter"
	"github.com/ashureev/tabtime/internal/report"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var flags filterFlags
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export time spent per domain as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, totals, err := app.totals(cmd.Context(), flags)
			if err != nil {
				return err
			}

			if out == "-" {
				return report.WriteCSV(cmd.OutOrStdout(), totals)
			}

			if err := writeCSVFile(out, totals); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Exported %d domains to %s", len(totals), out)))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", report.ExportFilename, `Output file, "-" for stdout`)

	return cmd
}

func writeCSVFile(path string, totals report.Totals) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()

	return report.WriteCSV(f, totals)
}
