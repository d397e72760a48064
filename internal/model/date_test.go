package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateOf_TruncatesToUTCMidnight(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	in := time.Date(2026, 3, 14, 23, 30, 0, 0, berlin)
	assert.Equal(t, date(2026, 3, 14), DateOf(in))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, date(2026, 1, 31), d)

	_, err = ParseDate("31.01.2026")
	assert.Error(t, err)
}

func TestAddMonthsClamped(t *testing.T) {
	cases := []struct {
		name   string
		from   time.Time
		months int
		want   time.Time
	}{
		{"monthly plain", date(2026, 1, 1), 1, date(2026, 2, 1)},
		{"jan 31 to feb", date(2026, 1, 31), 1, date(2026, 2, 28)},
		{"jan 31 to feb leap year", date(2028, 1, 31), 1, date(2028, 2, 29)},
		{"quarterly", date(2026, 1, 15), 3, date(2026, 4, 15)},
		{"quarterly clamped", date(2026, 11, 30), 3, date(2027, 2, 28)},
		{"semi annual", date(2026, 8, 31), 6, date(2027, 2, 28)},
		{"annual from leap day", date(2028, 2, 29), 12, date(2029, 2, 28)},
		{"year rollover", date(2026, 12, 15), 1, date(2027, 1, 15)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AddMonthsClamped(tc.from, tc.months))
		})
	}
}

func TestAddMonthsClamped_DriftIsKept(t *testing.T) {
	// once clamped the schedule stays on the shorter day
	d := AddMonthsClamped(date(2026, 1, 31), 1)
	d = AddMonthsClamped(d, 1)
	assert.Equal(t, date(2026, 3, 28), d)
}
