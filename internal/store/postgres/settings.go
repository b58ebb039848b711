package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gosuda/coperto/internal/domain"
)

type SettingsRepo struct {
	db dbtx
}

func NewSettingsRepo(db dbtx) *SettingsRepo {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) Get(ctx context.Context, tenantID uuid.UUID) (*domain.ReservationSettings, error) {
	var s domain.ReservationSettings

	err := r.db.QueryRow(ctx,
		`SELECT tenant_id, is_active, total_seats, total_high_chairs, notification_email, slack_channel, updated_at
		 FROM reservation_settings WHERE tenant_id = $1`,
		tenantID,
	).Scan(&s.TenantID, &s.IsActive, &s.TotalSeats, &s.TotalHighChairs,
		&s.NotificationEmail, &s.SlackChannel, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("settingsRepo.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("settingsRepo.Get: %w", err)
	}

	return &s, nil
}

func (r *SettingsRepo) Upsert(ctx context.Context, s *domain.ReservationSettings) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO reservation_settings
		   (tenant_id, is_active, total_seats, total_high_chairs, notification_email, slack_channel, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (tenant_id) DO UPDATE SET
		   is_active = EXCLUDED.is_active,
		   total_seats = EXCLUDED.total_seats,
		   total_high_chairs = EXCLUDED.total_high_chairs,
		   notification_email = EXCLUDED.notification_email,
		   slack_channel = EXCLUDED.slack_channel,
		   updated_at = now()
		 RETURNING updated_at`,
		s.TenantID, s.IsActive, s.TotalSeats, s.TotalHighChairs, s.NotificationEmail, s.SlackChannel,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("settingsRepo.Upsert: %w", err)
	}

	return nil
}
