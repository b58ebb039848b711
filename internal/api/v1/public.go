package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/booking"
	"github.com/gosuda/coperto/internal/domain"
)

type GetPublicConfigInput struct {
	Slug string `path:"slug" minLength:"1" maxLength:"63" doc:"Restaurant slug"`
}

// The public booking widget consumes camelCase keys.

type PublicTable struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Seats    int       `json:"seats"`
	IsActive bool      `json:"isActive"`
}

type PublicShift struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	StartTime  string    `json:"startTime" example:"12:00"`
	EndTime    string    `json:"endTime" example:"15:00"`
	DaysOfWeek []int     `json:"daysOfWeek"`
	IsActive   bool      `json:"isActive"`
}

type GetPublicConfigOutput struct {
	Body struct {
		IsActive        bool          `json:"isActive"`
		TotalSeats      int           `json:"totalSeats"`
		TotalHighChairs int           `json:"totalHighChairs"`
		Tables          []PublicTable `json:"tables"`
		Shifts          []PublicShift `json:"shifts"`
	}
}

type SubmitReservationInput struct {
	Slug string `path:"slug" minLength:"1" maxLength:"63" doc:"Restaurant slug"`
	Body struct {
		CustomerName  string `json:"customerName" minLength:"1" maxLength:"255"`
		CustomerEmail string `json:"customerEmail" minLength:"3" maxLength:"255" format:"email"`
		CustomerPhone string `json:"customerPhone" minLength:"1" maxLength:"64"`
		Guests        int    `json:"guests" minimum:"1" maximum:"500"`
		HighChairs    int    `json:"highChairs,omitempty" minimum:"0" maximum:"50"`
		Date          string `json:"date" doc:"Civil date, YYYY-MM-DD" example:"2025-06-10"`
		Time          string `json:"time" doc:"Local time, HH:MM" example:"20:30"`
		Notes         string `json:"notes,omitempty" maxLength:"2000"`
	}
}

type SubmitReservationOutput struct {
	Body struct {
		ReservationID uuid.UUID `json:"reservationId"`
	}
}

type CheckAvailabilityInput struct {
	Slug       string `path:"slug" minLength:"1" maxLength:"63" doc:"Restaurant slug"`
	Date       string `query:"date" required:"true" doc:"YYYY-MM-DD"`
	Time       string `query:"time" required:"true" doc:"HH:MM"`
	Guests     int    `query:"guests" minimum:"1" default:"2"`
	HighChairs int    `query:"high_chairs" minimum:"0" default:"0"`
}

type CheckAvailabilityOutput struct {
	Body struct {
		Bookable          bool         `json:"bookable"`
		Shift             *PublicShift `json:"shift,omitempty"`
		SeatCapacity      int          `json:"seatCapacity"`
		EnoughSeats       bool         `json:"enoughSeats"`
		HighChairCapacity int          `json:"highChairCapacity"`
		EnoughHighChairs  bool         `json:"enoughHighChairs"`
	}
}

func toPublicShift(s *domain.Shift) PublicShift {
	return PublicShift{
		ID:         s.ID,
		Name:       s.Name,
		StartTime:  s.StartTime.String(),
		EndTime:    s.EndTime.String(),
		DaysOfWeek: weekdaysToInts(s.DaysOfWeek),
		IsActive:   s.IsActive,
	}
}

// RegisterPublicRoutes registers the unauthenticated booking endpoints used by
// the restaurant's public page.
func RegisterPublicRoutes(api huma.API, store DataStore, bookingSvc BookingService, checker AvailabilityChecker) {
	huma.Register(api, huma.Operation{
		OperationID: "get-public-reservation-config",
		Method:      http.MethodGet,
		Path:        "/public/{slug}/reservations/config",
		Summary:     "Get the public reservation configuration of a restaurant",
		Tags:        []string{"Public"},
	}, func(ctx context.Context, input *GetPublicConfigInput) (*GetPublicConfigOutput, error) {
		tenant, err := restaurantBySlug(ctx, store, input.Slug)
		if err != nil {
			return nil, err
		}

		settings, err := store.ReservationSettings().Get(ctx, tenant.ID)
		if errors.Is(err, domain.ErrNotFound) {
			settings = domain.DefaultReservationSettings(tenant.ID)
		} else if err != nil {
			return nil, domainError(err, "settings", "load reservation settings")
		}

		tables, err := store.Tables().List(ctx, tenant.ID)
		if err != nil {
			return nil, domainError(err, "tables", "list tables")
		}

		shifts, err := store.Shifts().ListActive(ctx, tenant.ID)
		if err != nil {
			return nil, domainError(err, "shifts", "list shifts")
		}

		out := &GetPublicConfigOutput{}
		out.Body.IsActive = settings.IsActive
		out.Body.TotalSeats = settings.TotalSeats
		out.Body.TotalHighChairs = settings.TotalHighChairs
		out.Body.Tables = make([]PublicTable, 0, len(tables))
		for _, t := range tables {
			if !t.IsActive {
				continue
			}
			out.Body.Tables = append(out.Body.Tables, PublicTable{ID: t.ID, Name: t.Name, Seats: t.Seats, IsActive: t.IsActive})
		}
		out.Body.Shifts = make([]PublicShift, 0, len(shifts))
		for _, s := range shifts {
			out.Body.Shifts = append(out.Body.Shifts, toPublicShift(s))
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "submit-reservation",
		Method:        http.MethodPost,
		Path:          "/public/{slug}/reservations",
		Summary:       "Submit a reservation request",
		Tags:          []string{"Public"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *SubmitReservationInput) (*SubmitReservationOutput, error) {
		r, err := bookingSvc.Submit(ctx, input.Slug, domain.ReservationInput{
			CustomerName:  input.Body.CustomerName,
			CustomerEmail: input.Body.CustomerEmail,
			CustomerPhone: input.Body.CustomerPhone,
			Guests:        input.Body.Guests,
			HighChairs:    input.Body.HighChairs,
			Date:          input.Body.Date,
			Time:          input.Body.Time,
			Notes:         input.Body.Notes,
		})
		if err != nil {
			if errors.Is(err, domain.ErrForbidden) {
				return nil, huma.Error403Forbidden("reservations are not enabled for this restaurant")
			}
			if errors.Is(err, domain.ErrInvalidInput) {
				return nil, huma.Error422UnprocessableEntity(err.Error())
			}
			return nil, domainError(err, "restaurant", "submit reservation")
		}

		out := &SubmitReservationOutput{}
		out.Body.ReservationID = r.ID
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "check-availability",
		Method:      http.MethodGet,
		Path:        "/public/{slug}/availability",
		Summary:     "Check whether a date and time fall inside opening shifts",
		Tags:        []string{"Public"},
	}, func(ctx context.Context, input *CheckAvailabilityInput) (*CheckAvailabilityOutput, error) {
		date, err := domain.ParseDate(input.Date)
		if err != nil {
			return nil, huma.Error400BadRequest("date must be YYYY-MM-DD")
		}
		at, err := domain.ParseTimeOfDay(input.Time)
		if err != nil {
			return nil, huma.Error400BadRequest("time must be HH:MM")
		}

		tenant, err := restaurantBySlug(ctx, store, input.Slug)
		if err != nil {
			return nil, err
		}

		a, err := checker.Check(ctx, tenant.ID, date, at, input.Guests, input.HighChairs)
		if err != nil {
			return nil, domainError(err, "availability", "check availability")
		}

		return toAvailabilityOutput(a), nil
	})
}

func toAvailabilityOutput(a *booking.Availability) *CheckAvailabilityOutput {
	out := &CheckAvailabilityOutput{}
	out.Body.Bookable = a.Bookable
	out.Body.SeatCapacity = a.SeatCapacity
	out.Body.EnoughSeats = a.EnoughSeats
	out.Body.HighChairCapacity = a.HighChairCapacity
	out.Body.EnoughHighChairs = a.EnoughHighChairs
	if a.Shift != nil {
		s := toPublicShift(a.Shift)
		out.Body.Shift = &s
	}
	return out
}
