package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingRange is returned for a custom filter without both bounds.
	ErrMissingRange = errors.New("Please select both From and To times for custom range.") //nolint:staticcheck // shown to users verbatim
	// ErrUnknownFilter is returned for filter names other than the four known ones.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrInvalidInstant is returned when a custom bound cannot be parsed.
	ErrInvalidInstant = errors.New("invalid time")
)

// FilterName selects a reporting window.
type FilterName string

const (
	FilterToday  FilterName = "today"
	FilterPast24 FilterName = "past24"
	FilterAll    FilterName = "all"
	FilterCustom FilterName = "custom"
)

// Filter is a named window plus the caller-supplied bounds a custom window
// needs.
type Filter struct {
	Name FilterName
	From *time.Time
	To   *time.Time
}

// Window is a concrete, inclusive reporting range.
type Window struct {
	From time.Time
	To   time.Time
}

// FromMillis returns From as epoch milliseconds.
func (w Window) FromMillis() int64 { return w.From.UnixMilli() }

// ToMillis returns To as epoch milliseconds.
func (w Window) ToMillis() int64 { return w.To.UnixMilli() }

// ParseFilterName validates a filter name. An empty name means today.
func ParseFilterName(name string) (FilterName, error) {
	switch n := FilterName(strings.ToLower(strings.TrimSpace(name))); n {
	case "":
		return FilterToday, nil
	case FilterToday, FilterPast24, FilterAll, FilterCustom:
		return n, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
}

// NewFilter builds a filter from raw inputs as they arrive from a form or
// command line. Empty bounds are left nil so Resolve can report them.
func NewFilter(name, from, to string, loc *time.Location) (Filter, error) {
	n, err := ParseFilterName(name)
	if err != nil {
		return Filter{}, err
	}
	f := Filter{Name: n}
	if from != "" {
		t, err := ParseInstant(from, loc)
		if err != nil {
			return Filter{}, fmt.Errorf("from: %w", err)
		}
		f.From = &t
	}
	if to != "" {
		t, err := ParseInstant(to, loc)
		if err != nil {
			return Filter{}, fmt.Errorf("to: %w", err)
		}
		f.To = &t
	}
	return f, nil
}

// Resolve turns a filter into concrete bounds. today runs from local
// midnight in loc, past24 covers the last 24 hours, all starts at the epoch;
// each ends at now. custom uses the supplied bounds verbatim.
func Resolve(f Filter, now time.Time, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}
	switch f.Name {
	case FilterToday, "":
		local := now.In(loc)
		midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		return Window{From: midnight, To: now}, nil
	case FilterPast24:
		return Window{From: now.Add(-24 * time.Hour), To: now}, nil
	case FilterAll:
		return Window{From: time.UnixMilli(0), To: now}, nil
	case FilterCustom:
		if f.From == nil || f.To == nil {
			return Window{}, ErrMissingRange
		}
		return Window{From: *f.From, To: *f.To}, nil
	default:
		return Window{}, fmt.Errorf("%w: %q", ErrUnknownFilter, f.Name)
	}
}

var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseInstant accepts an HTML datetime-local value (interpreted in loc),
// an RFC 3339 timestamp or integer epoch milliseconds.
func ParseInstant(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidInstant)
	}
	if loc == nil {
		loc = time.Local
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidInstant, value)
}
