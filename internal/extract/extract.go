// Package extract turns a free-text room request into scheduling constraints.
//
// Extraction is best effort: it never fails, and text it cannot read yields
// empty constraints. All package tables are read-only, so Extract is safe for
// concurrent use.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/liteapi-travel/room-matcher-async/internal/model"
)

var (
	headcountPattern = regexp.MustCompile(`\b(\d+)\s*(people|peeps|pax|users|seats|attendees|persons)\b`)
	forPattern       = regexp.MustCompile(`\bfor\s+(\d+)\b`)
	// clockContinuation matches what follows a number that is really an hour.
	clockContinuation = regexp.MustCompile(`^(?:[:.]\d{2}|\s*[ap]\.?m\b)`)

	// Times may be glued to a preceding word ("at14:00") but not to digits.
	clockPattern    = regexp.MustCompile(`(?:^|\D)(\d{1,2})[:.](\d{2})(?:\s*([ap])\.?m\b|\b)`)
	hourPattern     = regexp.MustCompile(`(?:^|\D)(\d{1,2})\s*([ap])\.?m\b`)
	meridiemPattern = regexp.MustCompile(`\d\s*([ap])\.?m\b`)
)

var dayParts = []struct {
	keyword string
	clock   string
}{
	{"morning", "10:00"},
	{"afternoon", "14:00"},
	{"evening", "18:00"},
}

// Extract parses text into constraints.
func Extract(text string) model.Constraints {
	normalized := Normalize(text)
	c := model.Constraints{Requirements: []string{}}

	if n, ok := capacity(normalized); ok {
		c.Capacity = &n
	}
	c.Time = clock(normalized)
	c.Requirements = features(normalized)
	return c
}

func capacity(text string) (int, bool) {
	if m := headcountPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	for _, loc := range forPattern.FindAllStringSubmatchIndex(text, -1) {
		if clockContinuation.MatchString(text[loc[1]:]) {
			continue
		}
		if n, err := strconv.Atoi(text[loc[2]:loc[3]]); err == nil {
			return n, true
		}
	}
	return 0, false
}

func clock(text string) string {
	meridiem := ""
	if m := meridiemPattern.FindStringSubmatch(text); m != nil {
		meridiem = m[1]
	}

	for _, m := range clockPattern.FindAllStringSubmatch(text, -1) {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		suffix := m[3]
		if suffix == "" {
			suffix = meridiem
		}
		if h, ok := to24(hour, suffix); ok && minute < 60 {
			return model.FormatClock(h*60 + minute)
		}
	}

	for _, m := range hourPattern.FindAllStringSubmatch(text, -1) {
		hour, _ := strconv.Atoi(m[1])
		if hour > 12 {
			continue
		}
		if h, ok := to24(hour, m[2]); ok {
			return model.FormatClock(h * 60)
		}
	}

	for _, part := range dayParts {
		if strings.Contains(text, part.keyword) {
			return part.clock
		}
	}
	return ""
}

// to24 applies an "a"/"p" meridiem marker to an hour.
func to24(hour int, meridiem string) (int, bool) {
	switch meridiem {
	case "p":
		if hour < 12 {
			hour += 12
		}
	case "a":
		if hour == 12 {
			hour = 0
		}
	}
	return hour, hour >= 0 && hour < 24
}

func features(text string) []string {
	found := []string{}
	for _, f := range vocabulary {
		for _, alias := range f.Aliases {
			if strings.Contains(text, alias) {
				found = append(found, f.Tag)
				break
			}
		}
	}
	return found
}
