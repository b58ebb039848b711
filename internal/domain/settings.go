package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReservationSettings is the tenant-level reservation toggle plus advisory
// capacity. TotalSeats is not enforced against the tables' seat sum.
type ReservationSettings struct {
	TenantID          uuid.UUID `json:"tenant_id"`
	IsActive          bool      `json:"is_active"`
	TotalSeats        int       `json:"total_seats"`
	TotalHighChairs   int       `json:"total_high_chairs"`
	NotificationEmail string    `json:"notification_email"`
	SlackChannel      string    `json:"slack_channel"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DefaultReservationSettings is used for tenants that never saved settings.
func DefaultReservationSettings(tenantID uuid.UUID) *ReservationSettings {
	return &ReservationSettings{TenantID: tenantID}
}

type ReservationSettingsRepository interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*ReservationSettings, error)
	Upsert(ctx context.Context, s *ReservationSettings) error
}
