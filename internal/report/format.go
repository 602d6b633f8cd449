package report

import "fmt"

const (
	secondsPerDay    = 24 * 60 * 60
	secondsPerHour   = 60 * 60
	secondsPerMinute = 60
)

// FormatTime renders whole seconds as "{d}d {h}h {m}m {s}s".
func FormatTime(seconds int64) string {
	days := seconds / secondsPerDay
	seconds %= secondsPerDay
	hours := seconds / secondsPerHour
	seconds %= secondsPerHour
	minutes := seconds / secondsPerMinute
	seconds %= secondsPerMinute
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}
