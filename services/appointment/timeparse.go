package appointment

import (
	"fmt"
	"strings"
	"time"
)

// ParseError describes a date or time string outside the accepted grammar.
type ParseError struct {
	Date string
	Time string
	Part string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognised session %s (date=%q time=%q)", e.Part, e.Date, e.Time)
}

// Accepted date shapes after commas are replaced by spaces and whitespace is
// collapsed: "05 Jan 2025" (the backend's own %d,%b,%Y), "5 January 2025",
// "Jan 5 2025", "January 5 2025" and ISO "2025-01-05".
var dateLayouts = []string{
	"02 Jan 2006",
	"2 Jan 2006",
	"02 January 2006",
	"2 January 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2006-01-02",
}

// Accepted time shapes: "02:00 PM", "2:00 PM", "2:00PM" and 24-hour "14:00".
// Meridiem markers are case-insensitive.
var timeLayouts = []string{
	"03:04 PM",
	"3:04 PM",
	"03:04PM",
	"3:04PM",
	"15:04",
	"15:04:05",
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Join(strings.Fields(s), " ")
}

// ParseDate parses a session date into midnight of that day in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d := normalize(date)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, d, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Date: date, Part: "date"}
}

// ParseClock parses a session time of day into hours and minutes.
func ParseClock(clock string) (int, int, error) {
	c := strings.ToUpper(normalize(clock))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, c); err == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, &ParseError{Time: clock, Part: "time"}
}

// ParseSessionStart combines a session date and time into its start instant.
// It never panics; malformed input yields a *ParseError.
func ParseSessionStart(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, &ParseError{Date: date, Time: clock, Part: "date"}
	}
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, &ParseError{Date: date, Time: clock, Part: "time"}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc), nil
}
