package domain

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Shift is a named recurring weekly service window, e.g. "Pranzo" 12:00-15:00.
// DaysOfWeek uses time.Weekday numbering (0 = Sunday .. 6 = Saturday).
type Shift struct {
	ID         uuid.UUID      `json:"id"`
	TenantID   uuid.UUID      `json:"tenant_id"`
	Name       string         `json:"name"`
	StartTime  ClockTime      `json:"start_time"`
	EndTime    ClockTime      `json:"end_time"`
	DaysOfWeek []time.Weekday `json:"days_of_week"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Validate enforces the shift invariants: a name, StartTime < EndTime
// (overnight shifts are not supported), weekdays in range and at least one
// weekday when the shift is active.
func (s *Shift) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("shift name is required: %w", ErrInvalidInput)
	}
	if s.StartTime < 0 || s.EndTime < 0 {
		return fmt.Errorf("shift times must be non-negative: %w", ErrInvalidInput)
	}
	if s.EndTime > EndOfDay {
		return fmt.Errorf("shift end %s is past midnight: %w", s.EndTime, ErrInvalidInput)
	}
	if s.StartTime >= s.EndTime {
		return fmt.Errorf("shift start %s must be before end %s: %w", s.StartTime, s.EndTime, ErrInvalidInput)
	}
	for _, d := range s.DaysOfWeek {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("shift weekday %d out of range 0-6: %w", d, ErrInvalidInput)
		}
	}
	if s.IsActive && len(s.DaysOfWeek) == 0 {
		return fmt.Errorf("active shift needs at least one weekday: %w", ErrInvalidInput)
	}
	return nil
}

// RunsOn reports whether the shift is scheduled on the given weekday.
func (s *Shift) RunsOn(day time.Weekday) bool {
	return slices.Contains(s.DaysOfWeek, day)
}

// Covers reports whether a request at the given weekday and time falls inside
// this shift. The window is half-open: at == EndTime is outside. Inactive
// shifts and misconfigured ones (EndTime <= StartTime) never cover anything.
func (s *Shift) Covers(day time.Weekday, at ClockTime) bool {
	if !s.IsActive || s.EndTime <= s.StartTime {
		return false
	}
	return s.RunsOn(day) && s.StartTime <= at && at < s.EndTime
}

// CoveringShift returns the first shift covering date/at.
func CoveringShift(shifts []*Shift, date time.Time, at ClockTime) (*Shift, bool) {
	day := date.Weekday()
	for _, s := range shifts {
		if s != nil && s.Covers(day, at) {
			return s, true
		}
	}
	return nil, false
}

// IsBookable reports whether any active shift covers the requested civil
// date and time. An empty shift list is never bookable.
func IsBookable(shifts []*Shift, date time.Time, at ClockTime) bool {
	_, ok := CoveringShift(shifts, date, at)
	return ok
}

// SortWeekdays returns a sorted, de-duplicated copy of days.
func SortWeekdays(days []time.Weekday) []time.Weekday {
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out)
}

type ShiftRepository interface {
	Create(ctx context.Context, s *Shift) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Shift, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*Shift, error)
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]*Shift, error)
	Update(ctx context.Context, s *Shift) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
