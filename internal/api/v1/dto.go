package v1

import (
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/booking"
	"github.com/gosuda/coperto/internal/domain"
)

// Wire shapes. Times are "HH:MM" strings and dates "YYYY-MM-DD" so the
// OpenAPI schema matches what clients send and receive.

type ShiftBody struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	StartTime  string    `json:"start_time" example:"12:00"`
	EndTime    string    `json:"end_time" example:"15:00"`
	DaysOfWeek []int     `json:"days_of_week" doc:"0 = Sunday .. 6 = Saturday"`
	IsActive   bool      `json:"is_active"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toShiftBody(s *domain.Shift) ShiftBody {
	return ShiftBody{
		ID:         s.ID,
		Name:       s.Name,
		StartTime:  s.StartTime.String(),
		EndTime:    s.EndTime.String(),
		DaysOfWeek: weekdaysToInts(s.DaysOfWeek),
		IsActive:   s.IsActive,
		UpdatedAt:  s.UpdatedAt,
	}
}

type ReservationBody struct {
	ID              uuid.UUID   `json:"id"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	Guests          int         `json:"guests"`
	HighChairs      int         `json:"high_chairs"`
	Date            string      `json:"date" example:"2025-06-10"`
	Time            string      `json:"time" example:"20:30"`
	Notes           string      `json:"notes,omitempty"`
	Status          string      `json:"status" enum:"pending,confirmed,rejected"`
	RejectionReason string      `json:"rejection_reason,omitempty"`
	TableIDs        []uuid.UUID `json:"table_ids"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func toReservationBody(r *domain.Reservation) ReservationBody {
	ids := r.TableIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ReservationBody{
		ID:              r.ID,
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		CustomerPhone:   r.CustomerPhone,
		Guests:          r.Guests,
		HighChairs:      r.HighChairs,
		Date:            r.DateString(),
		Time:            r.Time.String(),
		Notes:           r.Notes,
		Status:          string(r.Status),
		RejectionReason: r.RejectionReason,
		TableIDs:        ids,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type ConflictBody struct {
	TableID       uuid.UUID `json:"table_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	Time          string    `json:"time"`
}

func toConflictBodies(cs []booking.Conflict) []ConflictBody {
	out := make([]ConflictBody, 0, len(cs))
	for _, c := range cs {
		out = append(out, ConflictBody{TableID: c.TableID, ReservationID: c.ReservationID, Time: c.Time.String()})
	}
	return out
}

func weekdaysToInts(days []time.Weekday) []int {
	out := make([]int, 0, len(days))
	for _, d := range days {
		out = append(out, int(d))
	}
	return out
}

func intsToWeekdays(days []int) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, time.Weekday(d))
	}
	return domain.SortWeekdays(out)
}
