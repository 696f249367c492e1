package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCode(t *testing.T) {
	jan := time.Date(2024, time.January, 9, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		seq  int64
		want string
	}{
		{"first of the month", jan, 1, "EVOLVE202401001"},
		{"zero padded", jan, 42, "EVOLVE202401042"},
		{"three digits", jan, 999, "EVOLVE202401999"},
		{"widens past 999", jan, 1000, "EVOLVE2024011000"},
		{"december", time.Date(2023, time.December, 31, 23, 59, 0, 0, time.UTC), 7, "EVOLVE202312007"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatCode(tc.now, tc.seq))
		})
	}
}

func TestFormatCodeMatchesPublicShape(t *testing.T) {
	code := FormatCode(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), 3)
	assert.Regexp(t, `^EVOLVE\d{6}\d{3}$`, code)
}
