package service

import (
	"strings"
	"time"
)

// EndDate derives a subscription's end date from its start date and a
// free-text duration. Durations mentioning "month" advance by calendar
// months (so "1 month" from Jan 31 lands on the normalized date, same
// as the front desk has always quoted it); everything else is read as
// a day count. A duration with no leading number contributes a zero
// offset rather than an error; bad input passes through, it does not
// block the sale.
func EndDate(start time.Time, duration string) time.Time {
	d := strings.ToLower(strings.TrimSpace(duration))
	n := leadingInt(d)
	if strings.Contains(d, "month") {
		return start.AddDate(0, n, 0)
	}
	return start.AddDate(0, 0, n)
}

// leadingInt reads the decimal digits at the front of s, returning 0
// when there are none.
func leadingInt(s string) int {
	n, seen := 0, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		seen = true
	}
	if !seen {
		return 0
	}
	return n
}

// DateOnly truncates a timestamp to midnight in its own location, for
// date-level comparisons like the past-start-date check.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last instant of the timestamp's calendar day.
// The verify endpoint treats a subscription as live through the whole
// of its end date.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
