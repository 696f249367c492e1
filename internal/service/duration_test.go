package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEndDate(t *testing.T) {
	start := date(2024, time.January, 15)

	cases := []struct {
		name     string
		duration string
		want     time.Time
	}{
		{"two months", "2 months", date(2024, time.March, 15)},
		{"one month", "1 month", date(2024, time.February, 15)},
		{"thirty days", "30 days", date(2024, time.February, 14)},
		{"bare days", "15 days", date(2024, time.January, 30)},
		{"mixed case and spacing", "  3 Months ", date(2024, time.April, 15)},
		{"garbage passes through", "soon", start},
		{"empty passes through", "", start},
		{"no leading number with month", "month", start},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EndDate(start, tc.duration))
		})
	}
}

func TestEndDateMonthNormalization(t *testing.T) {
	// AddDate normalizes Jan 31 + 1 month past February's end.
	got := EndDate(date(2024, time.January, 31), "1 month")
	assert.Equal(t, date(2024, time.March, 2), got)
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2024, time.June, 3, 17, 45, 12, 999, time.UTC)
	assert.Equal(t, date(2024, time.June, 3), DateOnly(ts))
}

func TestEndOfDay(t *testing.T) {
	ts := date(2024, time.June, 3)
	end := EndOfDay(ts)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.True(t, end.Before(date(2024, time.June, 4)))
	assert.True(t, end.After(ts))
}
