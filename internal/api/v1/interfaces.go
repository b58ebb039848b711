package v1

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/booking"
	"github.com/gosuda/coperto/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Tenants() domain.TenantRepository
	ReservationSettings() domain.ReservationSettingsRepository
	Shifts() domain.ShiftRepository
	Tables() domain.TableRepository
	Reservations() domain.ReservationRepository
	Audit() domain.AuditRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	CreateUser(ctx context.Context, tenantID uuid.UUID, email, password, name, role string) (*domain.User, error)
	Login(ctx context.Context, tenantID uuid.UUID, email, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// BookingService abstracts reservation state changes.
// *booking.Service satisfies this interface.
type BookingService interface {
	Submit(ctx context.Context, slug string, in domain.ReservationInput) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, actorID, tenantID, reservationID uuid.UUID, change booking.StatusChange) (*booking.Outcome, error)
}

// AvailabilityChecker abstracts the availability evaluator.
// *booking.Evaluator satisfies this interface.
type AvailabilityChecker interface {
	Check(ctx context.Context, tenantID uuid.UUID, date time.Time, at domain.ClockTime, guests, highChairs int) (*booking.Availability, error)
}
