package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/ashureev/tabtime/internal/domain"
	"github.com/ashureev/tabtime/internal/report"
)

const timeLayout = "2006-01-02 15:04"

// FormatReport renders per-domain totals for a window as a table with a
// total line.
func FormatReport(filter report.FilterName, window report.Window, totals report.Totals, loc *time.Location) string {
	var b strings.Builder

	b.WriteString(Header("Time spent · " + string(filter)))
	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("%s → %s", window.From.In(loc).Format(timeLayout), window.To.In(loc).Format(timeLayout))))
	b.WriteString("\n\n")

	rows := totals.Rows()
	if len(rows) == 0 {
		b.WriteString(Dim("No activity recorded in this window."))
		b.WriteString("\n")
		return b.String()
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []string{row.Label(), report.FormatTime(row.Seconds)})
	}
	b.WriteString(RenderTable([]string{"Domain", "Time Spent"}, cells, AlignLeft, AlignRight))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", Bold("Total:"), report.FormatTime(totals.Sum())))
	return b.String()
}

// FormatSessions renders raw session records, oldest first.
func FormatSessions(records []domain.SessionRecord, loc *time.Location) string {
	if len(records) == 0 {
		return Dim("No sessions recorded.") + "\n"
	}

	cells := make([][]string, 0, len(records))
	for _, rec := range records {
		label := rec.Domain
		if label == "" {
			label = report.NullDomainLabel
		}
		cells = append(cells, []string{
			ShortID(rec.ID),
			label,
			rec.StartTime().In(loc).Format(timeLayout + ":05"),
			rec.EndTime().In(loc).Format(timeLayout + ":05"),
			report.FormatTime(rec.Seconds()),
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable([]string{"ID", "Domain", "Start", "End", "Duration"}, cells,
		AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight))
	b.WriteString(Dim(fmt.Sprintf("%d sessions", len(records))))
	b.WriteString("\n")
	return b.String()
}

// ShortID returns the first 8 characters of an id.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
