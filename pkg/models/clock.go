package models

import (
	"fmt"
	"time"
)

// DateLayout matches the booking system's export format
const DateLayout = "2006-01-02"

// ParseClock converts an HH:MM wall time to minutes from midnight
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("bad clock time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad clock time %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes from midnight as HH:MM
func FormatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// Display12h renders an HH:MM time the way the front desk reads it,
// e.g. "08:30" -> "8:30 AM". Unparseable input is returned as-is.
func Display12h(s string) string {
	min, err := ParseClock(s)
	if err != nil {
		return s
	}
	h, m := min/60, min%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, suffix)
}

// ParseDate strictly parses a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	return t, nil
}

// DateOnly normalizes a timestamp to its calendar date at UTC midnight,
// comparable with what ParseDate returns
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DisplayRange renders a real window for human review, e.g.
// "8:30 AM-11:00 AM"
func DisplayRange(startMin, endMin int) string {
	return Display12h(FormatClock(startMin)) + "-" + Display12h(FormatClock(endMin))
}
