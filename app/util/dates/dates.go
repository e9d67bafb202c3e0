// Package dates canonicalizes the date expressions users type mid-dialogue
// ("tomorrow", "next week", "March 5") into YYYY-MM-DD strings.
package dates

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const layout = "2006-01-02"

// Normalize converts a date expression to an ISO calendar date relative to
// ref. It is best-effort: anything it cannot make sense of is returned
// unchanged so the user can spot it in the confirmation message.
func Normalize(expr string, ref time.Time) string {
	s := strings.ToLower(strings.TrimSpace(expr))

	switch {
	case s == "today":
		return ref.Format(layout)
	case s == "tomorrow":
		return ref.AddDate(0, 0, 1).Format(layout)
	case strings.Contains(s, "next week"):
		return ref.AddDate(0, 0, 7).Format(layout)
	case strings.Contains(s, "monday"):
		return nextWeekday(ref, time.Monday).Format(layout)
	}

	parsed, err := dateparse.ParseAny(expr)
	if err != nil {
		return expr
	}

	return parsed.Format(layout)
}

// nextWeekday returns the next occurrence of day strictly after ref: if ref
// already falls on day, the result is a full week out, never the same date.
func nextWeekday(ref time.Time, day time.Weekday) time.Time {
	ahead := (int(day) - int(ref.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}

	return ref.AddDate(0, 0, ahead)
}
