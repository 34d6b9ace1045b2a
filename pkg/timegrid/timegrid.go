// Package timegrid holds the slot arithmetic shared by the availability
// generator and the booking allocator. Times are wall-clock "HH:MM" strings
// mapped onto minutes of the day; intervals are half-open [start, end).
package timegrid

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes since midnight back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a "YYYY-MM-DD" calendar date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Today truncates now to its calendar date.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Overlaps reports whether [aStart, aEnd) intersects [bStart, bEnd).
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// Enumerate lists every candidate start on the step grid for which the full
// duration still fits before end. Start times are minutes since midnight.
func Enumerate(start, end, duration, step int) []int {
	var starts []int
	for t := start; t+duration <= end; t += step {
		starts = append(starts, t)
	}
	return starts
}

// Interval is an occupied span on a master's day.
type Interval struct {
	Start int
	End   int
}

// Free reports whether [start, start+duration) avoids every busy interval.
func Free(start, duration int, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(start, start+duration, b.Start, b.End) {
			return false
		}
	}
	return true
}
