package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationRejected  ReservationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationRejected:
		return true
	default:
		return false
	}
}

// ValidTransition checks if a reservation state transition is allowed.
// Allowed: pending->confirmed, pending->rejected, confirmed->confirmed
// (re-confirmation with a different table list).
func (s ReservationStatus) ValidTransition(to ReservationStatus) bool {
	switch s {
	case ReservationPending:
		return to == ReservationConfirmed || to == ReservationRejected
	case ReservationConfirmed:
		return to == ReservationConfirmed
	default:
		return false
	}
}

// Reservation is a customer's table request. Customer-supplied fields are
// immutable once created; only Status, RejectionReason and TableIDs change.
type Reservation struct {
	ID              uuid.UUID         `json:"id"`
	TenantID        uuid.UUID         `json:"tenant_id"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone"`
	Guests          int               `json:"guests"`
	HighChairs      int               `json:"high_chairs"`
	Date            time.Time         `json:"date"`
	Time            ClockTime         `json:"time"`
	Notes           string            `json:"notes,omitempty"`
	Status          ReservationStatus `json:"status"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	TableIDs        []uuid.UUID       `json:"table_ids"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// DateString returns the reservation date as "YYYY-MM-DD".
func (r *Reservation) DateString() string {
	return r.Date.Format(DateLayout)
}

// ReservationInput is the raw public submission.
type ReservationInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Guests        int
	HighChairs    int
	Date          string // ISO-8601 date
	Time          string // "HH:MM" 24h
	Notes         string
}

// Validate checks field presence and shape only. It deliberately does not
// look at shifts or capacity.
func (in ReservationInput) Validate() error {
	var errs []error
	if strings.TrimSpace(in.CustomerName) == "" {
		errs = append(errs, errors.New("customer name is required"))
	}
	if strings.TrimSpace(in.CustomerEmail) == "" {
		errs = append(errs, errors.New("customer email is required"))
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		errs = append(errs, errors.New("customer phone is required"))
	}
	if in.Guests < 1 {
		errs = append(errs, errors.New("guests must be at least 1"))
	}
	if in.HighChairs < 0 {
		errs = append(errs, errors.New("high chairs cannot be negative"))
	}
	if _, err := ParseDate(in.Date); err != nil {
		errs = append(errs, fmt.Errorf("date must be YYYY-MM-DD, got %q", in.Date))
	}
	if _, err := ParseTimeOfDay(in.Time); err != nil {
		errs = append(errs, fmt.Errorf("time must be HH:MM, got %q", in.Time))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// NewReservation validates in and builds a pending reservation.
func NewReservation(tenantID uuid.UUID, in ReservationInput, now time.Time) (*Reservation, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	date, _ := ParseDate(in.Date)
	at, _ := ParseTimeOfDay(in.Time)

	return &Reservation{
		ID:            uuid.New(),
		TenantID:      tenantID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerEmail: strings.TrimSpace(in.CustomerEmail),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		Guests:        in.Guests,
		HighChairs:    in.HighChairs,
		Date:          date,
		Time:          at,
		Notes:         strings.TrimSpace(in.Notes),
		Status:        ReservationPending,
		TableIDs:      []uuid.UUID{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ReservationFilter narrows a reservation listing. Zero values mean "any".
type ReservationFilter struct {
	Date   *time.Time
	Status ReservationStatus
	Limit  int
	Offset int
}

// TableBooking is a table held by a confirmed reservation at a given time.
type TableBooking struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	TableID       uuid.UUID `json:"table_id"`
	Time          ClockTime `json:"time"`
}

type ReservationRepository interface {
	Create(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Reservation, error)
	// GetForUpdate is GetByID taking a row lock; only meaningful inside a transaction.
	GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Reservation, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ReservationFilter) ([]*Reservation, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status ReservationStatus, reason string) error
	// ReplaceAssignments deletes every table assignment of the reservation and
	// inserts one row per table id.
	ReplaceAssignments(ctx context.Context, tenantID, reservationID uuid.UUID, tableIDs []uuid.UUID) error
	// ListTableBookings returns the assignments of confirmed reservations on
	// date that hold any of tableIDs.
	ListTableBookings(ctx context.Context, tenantID uuid.UUID, date time.Time, tableIDs []uuid.UUID) ([]*TableBooking, error)
}
