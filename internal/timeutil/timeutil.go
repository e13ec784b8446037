package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var defaultLocation = time.UTC

// ResolveLocation returns the user's location with UTC fallback.
func ResolveLocation(timezone string) (*time.Location, bool) {
	if timezone == "" {
		return defaultLocation, true
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return defaultLocation, true
	}
	return loc, false
}

// dateKeywords are checked as independent substring tests; earlier entries
// win, so the order is significant.
var dateKeywords = []struct {
	keyword    string
	offsetDays int
}{
	{"today", 0},
	{"tomorrow", 1},
	{"next week", 7},
	{"this week", 0},
}

const defaultDateOffsetDays = 1

// ResolveDate scans text for a relative date keyword and returns the local
// midnight of the referenced day. Text without a recognized keyword resolves
// to tomorrow.
func ResolveDate(text string, ref time.Time, loc *time.Location) time.Time {
	lower := strings.ToLower(text)
	local := ref.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	for _, k := range dateKeywords {
		if strings.Contains(lower, k.keyword) {
			return day.AddDate(0, 0, k.offsetDays)
		}
	}
	return day.AddDate(0, 0, defaultDateOffsetDays)
}

// Clock-time patterns, tried in order. The first match that yields a valid
// hour and minute wins; later patterns are not consulted.
var (
	clockHourMinute = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)\b`)
	clockHoursOnly  = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(am|pm)\b`)
	clockAtHour     = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	clockOClock     = regexp.MustCompile(`(?i)\b(\d{1,2})\s*o'?clock\b`)
)

const (
	DefaultHour   = 14
	DefaultMinute = 0
)

// ResolveClockTime scans text for an explicit clock time and applies it to
// the given local day. Text without a usable time resolves to 14:00.
func ResolveClockTime(text string, day time.Time) time.Time {
	lower := strings.ToLower(text)

	if m := clockHourMinute.FindStringSubmatch(lower); m != nil {
		if t, ok := clockOn(day, m[1], m[2], m[3]); ok {
			return t
		}
	}
	if m := clockHoursOnly.FindStringSubmatch(lower); m != nil {
		if t, ok := clockOn(day, m[1], "", m[2]); ok {
			return t
		}
	}
	if m := clockAtHour.FindStringSubmatch(lower); m != nil {
		if t, ok := clockOn(day, m[1], m[2], m[3]); ok {
			return t
		}
	}
	if m := clockOClock.FindStringSubmatch(lower); m != nil {
		if t, ok := clockOn(day, m[1], "", ""); ok {
			return t
		}
	}

	return time.Date(day.Year(), day.Month(), day.Day(), DefaultHour, DefaultMinute, 0, 0, day.Location())
}

// clockOn builds an instant on day from captured hour/minute/meridiem parts.
// "12am" normalizes to 0 and "12pm" stays 12 before the range checks.
func clockOn(day time.Time, hourStr, minuteStr, meridiem string) (time.Time, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return time.Time{}, false
	}

	minute := 0
	if minuteStr != "" {
		minute, err = strconv.Atoi(minuteStr)
		if err != nil {
			return time.Time{}, false
		}
	}

	switch meridiem {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), true
}

// ValidInstant reports whether t is a usable point in time. Zero values and
// out-of-range results from broken intermediate arithmetic are rejected.
func ValidInstant(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	year := t.Year()
	return year >= 1970 && year <= 9999
}

// OrFallback returns t when it is a valid instant, otherwise ref plus one
// hour. Use this after any date arithmetic that could have gone wrong.
func OrFallback(t, ref time.Time) time.Time {
	if ValidInstant(t) {
		return t
	}
	return ref.Add(time.Hour)
}

// StartOfDay returns local midnight for t in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDateTime parses a datetime in either RFC3339 (with explicit offset) or local layouts in the provided timezone.
func ParseDateTime(value, timezone string) (time.Time, bool, error) {
	if value == "" {
		return time.Time{}, false, fmt.Errorf("time value is required")
	}

	// If timezone/offset exists, preserve it.
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}

	loc, fallback := ResolveLocation(timezone)

	layouts := []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, fallback, nil
		}
	}

	return time.Time{}, fallback, fmt.Errorf("unable to parse time: %s", value)
}
