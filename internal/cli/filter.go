package cli

import (
	"context"

	"github.com/ashureev/tabtime/internal/report"
	"github.com/spf13/cobra"
)

// filterFlags are the window selection flags shared by report and export.
type filterFlags struct {
	name string
	from string
	to   string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "filter", string(report.FilterToday), "Window: today, past24, all or custom")
	cmd.Flags().StringVar(&f.from, "from", "", "Custom window start (YYYY-MM-DDTHH:MM, RFC 3339 or epoch ms)")
	cmd.Flags().StringVar(&f.to, "to", "", "Custom window end (YYYY-MM-DDTHH:MM, RFC 3339 or epoch ms)")
}

// totals loads the records and aggregates them over the selected window.
func (a *App) totals(ctx context.Context, f filterFlags) (report.Filter, report.Window, report.Totals, error) {
	filter, err := report.NewFilter(f.name, f.from, f.to, a.Location)
	if err != nil {
		return report.Filter{}, report.Window{}, nil, err
	}
	window, err := report.Resolve(filter, a.Now(), a.Location)
	if err != nil {
		return report.Filter{}, report.Window{}, nil, err
	}

	records, err := a.Repo.ListRecords(ctx)
	if err != nil {
		return report.Filter{}, report.Window{}, nil, err
	}
	return filter, window, report.Aggregate(records, window.FromMillis(), window.ToMillis()), nil
}
