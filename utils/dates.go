package utils

import (
	"errors"
	"time"
)

var ErrBadDate = errors.New("invalid date format")

// ParseDate accepts "2006-01-02" or RFC3339 and normalizes to midnight UTC.
// Stay dates are calendar days; any time-of-day component is discarded.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, ErrBadDate
}
