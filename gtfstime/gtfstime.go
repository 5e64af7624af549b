// Package gtfstime converts between GTFS clock strings, calendar
// timestamps in the Cyprus locale, and seconds since midnight.
//
// GTFS times are local wall-clock strings that may exceed 24:00:00 to
// denote service running past midnight: 25:30:00 means 01:30:00 on
// the following day.
package gtfstime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cyprus is the fixed offset all feed times are anchored to. The
// feeds carry no DST markers, so a single non-DST offset is used
// throughout.
var Cyprus = time.FixedZone("EET", 2*60*60)

// ParseError reports an empty or malformed time string.
type ParseError struct {
	Input string
	Cause string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing time %q: %s", e.Input, e.Cause)
}

// Now returns the current time in the Cyprus offset.
func Now() time.Time {
	return time.Now().In(Cyprus)
}

func splitClock(s string) (h, m, sec int, err error) {
	if s == "" {
		return 0, 0, 0, &ParseError{Input: s, Cause: "empty"}
	}

	parts := strings.Split(s, ":")
	h, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, 0, &ParseError{Input: s, Cause: "non-numeric hour"}
	}
	if len(parts) > 1 {
		m, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return 0, 0, 0, &ParseError{Input: s, Cause: "non-numeric minute"}
		}
	}
	if len(parts) > 2 {
		sec, err = strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return 0, 0, 0, &ParseError{Input: s, Cause: "non-numeric second"}
		}
	}
	return h, m, sec, nil
}

// Parse interprets a GTFS clock string against the given reference
// date. Hours at or past 24 roll over onto following days, so
// Parse("25:30:00", ref) lands at 01:30:00 the day after ref. Minute
// and second default to 0 when omitted.
func Parse(s string, ref time.Time) (time.Time, error) {
	h, m, sec, err := splitClock(s)
	if err != nil {
		return time.Time{}, err
	}

	days := h / 24
	h = h % 24

	ref = ref.In(Cyprus)
	t := time.Date(ref.Year(), ref.Month(), ref.Day(), h, m, sec, 0, Cyprus)
	if days > 0 {
		t = t.AddDate(0, 0, days)
	}
	return t, nil
}

// Format renders a timestamp as HH:MM:SS in the Cyprus offset.
func Format(t time.Time) string {
	return t.In(Cyprus).Format("15:04:05")
}

// ToSeconds converts a GTFS clock string to seconds since midnight,
// without reducing rollover hours: 25:30:00 yields 91800, not 5400.
// This form is meant for duration arithmetic, not display.
func ToSeconds(s string) (int, error) {
	h, m, sec, err := splitClock(s)
	if err != nil {
		return 0, err
	}
	return h*3600 + m*60 + sec, nil
}

// FromSeconds is the inverse of ToSeconds. Values past 86400 produce
// hours past 24.
func FromSeconds(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	sec := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}
