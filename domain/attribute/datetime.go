package attribute

import (
	"fmt"
	"time"
)

// datetimeLayouts are the calendar forms a raw cell may arrive in. A column
// reclassifies from string to datetime only when every non-missing cell
// parses against one of these.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// ParseDatetime attempts to parse a raw cell as a calendar date/time.
func ParseDatetime(s string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// EpochSeconds projects a parsed datetime onto the numeric axis all
// datetime arithmetic runs on: seconds since the Unix epoch, floored to
// midnight UTC. Time-of-day is deliberately discarded so that cells of the
// same calendar date land in the same bin.
func EpochSeconds(t time.Time) int64 {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

// FormatEpochDay renders epoch seconds back to the display form used in
// patterns and synthesized output: "M/D/YYYY" without zero padding.
func FormatEpochDay(sec int64) string {
	t := time.Unix(sec, 0).UTC()
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}
