// Package domain contains core domain types for tabtime.
package domain

import (
	"time"
)

// MinSessionLength is the shortest interval worth persisting. Sessions whose
// elapsed time is not strictly greater are discarded on close.
const MinSessionLength = time.Second

// SessionRecord is a closed interval of time attributed to one domain.
// Start and End are Unix epoch milliseconds. An empty Domain is the null
// domain.
type SessionRecord struct {
	ID     string `json:"id"`
	Domain string `json:"domain"`
	Start  int64  `json:"start"`
	End    int64  `json:"end"`
}

// Duration returns the elapsed time covered by the record.
func (r SessionRecord) Duration() time.Duration {
	return time.Duration(r.End-r.Start) * time.Millisecond
}

// Seconds returns the whole seconds covered by the record, rounded down.
func (r SessionRecord) Seconds() int64 {
	return (r.End - r.Start) / 1000
}

// StartTime returns Start as a time.Time.
func (r SessionRecord) StartTime() time.Time {
	return time.UnixMilli(r.Start)
}

// EndTime returns End as a time.Time.
func (r SessionRecord) EndTime() time.Time {
	return time.UnixMilli(r.End)
}

// Persistable reports whether the interval is long enough to be stored.
func (r SessionRecord) Persistable() bool {
	return r.End-r.Start > MinSessionLength.Milliseconds()
}
