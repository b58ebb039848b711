package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/domain"
)

// Availability is the answer to "can this party be seated at this time".
// Capacity figures are theoretical: other bookings are not subtracted.
type Availability struct {
	Bookable          bool          `json:"bookable"`
	Shift             *domain.Shift `json:"shift,omitempty"`
	SeatCapacity      int           `json:"seat_capacity"`
	EnoughSeats       bool          `json:"enough_seats"`
	HighChairCapacity int           `json:"high_chair_capacity"`
	EnoughHighChairs  bool          `json:"enough_high_chairs"`
}

// Catalog is the read side the evaluator needs.
type Catalog interface {
	Shifts() domain.ShiftRepository
	Tables() domain.TableRepository
	ReservationSettings() domain.ReservationSettingsRepository
}

type Evaluator struct {
	catalog Catalog
}

func NewEvaluator(catalog Catalog) *Evaluator {
	return &Evaluator{catalog: catalog}
}

// Check evaluates date/at against the tenant's active shifts and adds a
// capacity hint for guests and highChairs.
func (e *Evaluator) Check(ctx context.Context, tenantID uuid.UUID, date time.Time, at domain.ClockTime, guests, highChairs int) (*Availability, error) {
	shifts, err := e.catalog.Shifts().ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("booking.Evaluator.Check: shifts: %w", err)
	}

	tables, err := e.catalog.Tables().List(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("booking.Evaluator.Check: tables: %w", err)
	}

	settings, err := loadSettings(ctx, e.catalog.ReservationSettings(), tenantID)
	if err != nil {
		return nil, fmt.Errorf("booking.Evaluator.Check: %w", err)
	}

	a := &Availability{
		SeatCapacity:      domain.SeatCapacity(tables),
		HighChairCapacity: settings.TotalHighChairs,
	}
	if a.SeatCapacity == 0 {
		a.SeatCapacity = settings.TotalSeats
	}
	a.EnoughSeats = guests <= a.SeatCapacity
	a.EnoughHighChairs = highChairs <= a.HighChairCapacity

	if s, ok := domain.CoveringShift(shifts, date, at); ok {
		a.Bookable = true
		a.Shift = s
	}

	return a, nil
}

// loadSettings returns the stored settings or the defaults when none exist.
func loadSettings(ctx context.Context, repo domain.ReservationSettingsRepository, tenantID uuid.UUID) (*domain.ReservationSettings, error) {
	settings, err := repo.Get(ctx, tenantID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultReservationSettings(tenantID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return settings, nil
}
