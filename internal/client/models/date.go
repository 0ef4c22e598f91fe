package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
)

// Date is a calendar day in common.DateLayout form ("2024-05-01").
// The zero value is the empty string and means "no date".
type Date string

// ParseDate normalizes s to a date-only key. It accepts plain dates and
// RFC 3339 timestamps; the calendar day of a timestamp is taken as written,
// without converting to the local zone.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", common.ErrInvalidDate
	}
	if t, err := time.Parse(common.DateLayout, s); err == nil {
		return Date(t.Format(common.DateLayout)), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Date(t.Format(common.DateLayout)), nil
	}
	// "2024-05-01T10:00:00" without zone, as some payloads send it.
	if len(s) > len(common.DateLayout) && s[len(common.DateLayout)] == 'T' {
		if t, err := time.Parse(common.DateLayout, s[:len(common.DateLayout)]); err == nil {
			return Date(t.Format(common.DateLayout)), nil
		}
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidDate, s)
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(common.DateLayout))
}

func (d Date) String() string { return string(d) }

func (d Date) IsZero() bool { return d == "" }

// Time returns midnight UTC of the day. Invalid dates yield the zero time.
func (d Date) Time() time.Time {
	t, err := time.Parse(common.DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Valid reports whether d is a well-formed date.
func (d Date) Valid() bool {
	_, err := time.Parse(common.DateLayout, string(d))
	return err == nil
}
