// Package report rolls stored session records into per-domain totals and
// renders them for display and export.
package report

import (
	"sort"

	"github.com/ashureev/tabtime/internal/domain"
)

// NullDomainLabel is how the null domain appears in rendered output.
const NullDomainLabel = "null"

// Totals maps a domain to the whole seconds spent on it.
type Totals map[string]int64

// Row is one domain's total.
type Row struct {
	Domain  string `json:"domain"`
	Seconds int64  `json:"seconds"`
}

// Label returns the display form of the row's domain. The tracker never
// records the null domain, so it only shows up for rows written to the
// store directly.
func (r Row) Label() string {
	if r.Domain == "" {
		return NullDomainLabel
	}
	return r.Domain
}

// Aggregate sums floor((end-start)/1000) per domain over the records whose
// start lies in [from, to], both epoch milliseconds and inclusive. Only the
// start is compared: a session that began before from is excluded even if it
// ended inside the window. Domains without a matching record are absent.
func Aggregate(records []domain.SessionRecord, from, to int64) Totals {
	totals := Totals{}
	for _, rec := range records {
		if rec.Start < from || rec.Start > to {
			continue
		}
		totals[rec.Domain] += rec.Seconds()
	}
	return totals
}

// Rows lists the totals by seconds descending, ties by domain ascending.
func (t Totals) Rows() []Row {
	rows := make([]Row, 0, len(t))
	for d, s := range t {
		rows = append(rows, Row{Domain: d, Seconds: s})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Seconds != rows[j].Seconds {
			return rows[i].Seconds > rows[j].Seconds
		}
		return rows[i].Domain < rows[j].Domain
	})
	return rows
}

// Sum returns the seconds across all domains.
func (t Totals) Sum() int64 {
	var sum int64
	for _, s := range t {
		sum += s
	}
	return sum
}
