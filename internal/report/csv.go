package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ExportFilename is the suggested name for downloaded exports.
const ExportFilename = "time_tracker_data.csv"

var csvHeader = []string{"Domain", "Time Spent (seconds)"}

// WriteCSV writes the totals as CSV with one line per domain, ordered as
// Totals.Rows.
func WriteCSV(w io.Writer, totals Totals) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range totals.Rows() {
		if err := cw.Write([]string{row.Label(), strconv.FormatInt(row.Seconds, 10)}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
