package domain

import (
	"fmt"
	"time"
)

// ClockTime is a time of day in the tenant's local civil time, stored as
// minutes since midnight. No timezone is attached.
type ClockTime int

// DateLayout is the ISO-8601 calendar date format used for reservation dates.
const DateLayout = "2006-01-02"

// EndOfDay is "24:00", the midnight that closes a day. It is only valid as
// the end of a shift; no reservation can start at it.
const EndOfDay ClockTime = 24 * 60

// NewClockTime builds a ClockTime from an hour (0-23) and minute (0-59).
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("domain.NewClockTime: %02d:%02d: %w", hour, minute, ErrInvalidInput)
	}
	return ClockTime(hour*60 + minute), nil
}

// ParseClockTime accepts "HH:MM" or "HH:MM:SS". Seconds are truncated, which
// matches how TIME columns are compared for display. "24:00" and "24:00:00"
// parse as EndOfDay, as in PostgreSQL.
func ParseClockTime(s string) (ClockTime, error) {
	if s == "24:00" || s == "24:00:00" {
		return EndOfDay, nil
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return ClockTime(t.Hour()*60 + t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("domain.ParseClockTime: %q: %w", s, ErrInvalidInput)
}

// MustParseClockTime is ParseClockTime for constants and tests.
func MustParseClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseTimeOfDay is ParseClockTime for instants within a day, so it
// rejects EndOfDay.
func ParseTimeOfDay(s string) (ClockTime, error) {
	c, err := ParseClockTime(s)
	if err != nil {
		return 0, err
	}
	if c == EndOfDay {
		return 0, fmt.Errorf("domain.ParseTimeOfDay: %q: %w", s, ErrInvalidInput)
	}
	return c, nil
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

// String formats as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseDate parses an ISO-8601 calendar date ("2025-06-10"). The result is
// midnight UTC and only its calendar fields are meaningful.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("domain.ParseDate: %q: %w", s, ErrInvalidInput)
	}
	return d, nil
}
