package dto

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of task due dates.
const DateLayout = "2006-01-02"

// ParseDate accepts a plain date or an RFC3339 timestamp and returns midnight UTC of that day.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
