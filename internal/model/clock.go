package model

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// ParseClock converts "H:MM" or "HH:MM" (surrounding whitespace allowed) to
// minutes past midnight.
func ParseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	h, m, found := strings.Cut(s, ":")
	if !found || len(h) < 1 || len(h) > 2 || len(m) != 2 || !digits(h) || !digits(m) {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// digits reports whether s is all ASCII digits; Atoi alone accepts a sign.
func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatClock renders minutes past midnight as HH:MM.
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// To12Hour renders an HH:MM string as "2:00 PM". Unparseable input is
// returned unchanged.
func To12Hour(clock string) string {
	minutes, ok := ParseClock(clock)
	if !ok {
		return clock
	}
	hour, minute := minutes/60, minutes%60
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour12, minute, period)
}
