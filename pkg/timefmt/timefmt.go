// Package timefmt composes and renders the wall-clock timestamps used for
// appointments. Values carry no zone: they are stored and shown exactly as
// the family entered them.
package timefmt

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// ComposeDateTime joins a calendar date and a clock time into a local
// ISO timestamp: ("2025-06-01", "14:30") -> "2025-06-01T14:30:00".
func ComposeDateTime(date, clock string) (string, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}

	if len(clock) == len("15:04:05") {
		clock = clock[:5]
	}
	if _, err := time.Parse(ClockLayout, clock); err != nil {
		return "", fmt.Errorf("invalid time %q: expected HH:MM", clock)
	}

	return date + "T" + clock + ":00", nil
}

// ParseDateTime parses a composed timestamp. RFC3339 input is accepted and
// its wall-clock reading is kept, dropping the offset.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateTimeLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Wall(t), nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Wall re-labels t's wall-clock reading as UTC so comparisons against
// zone-less stored values line up.
func Wall(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// FormatDate renders "June 1, 2025".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s %d, %d", t.Month(), t.Day(), t.Year())
}

// FormatClock renders the 12-hour clock: 0:05 -> "12:05 AM", 14:30 -> "2:30 PM".
func FormatClock(t time.Time) string {
	hour := t.Hour()
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	switch {
	case hour == 0:
		hour = 12
	case hour > 12:
		hour -= 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute(), period)
}

// SplitDateTime is the inverse of ComposeDateTime, used to prefill edits.
func SplitDateTime(t time.Time) (date, clock string) {
	return t.Format(DateLayout), t.Format(ClockLayout)
}
