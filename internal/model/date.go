package model

import "time"

// DateLayout is the wire format for calendar dates (issue dates, run dates, schedules).
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date at midnight UTC.
// All schedule comparisons and (contract, run_date) keys use this normalization.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a normalized date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// AddMonthsClamped adds n calendar months to d. When the day of month does not
// exist in the target month the result is clamped to that month's last day
// (Jan 31 + 1 month = Feb 28, or Feb 29 in leap years).
func AddMonthsClamped(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}
