package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/domain"
	"github.com/gosuda/coperto/internal/server/middleware"
)

type GetSettingsInput struct{}

type SettingsOutput struct {
	Body *domain.ReservationSettings
}

type UpdateSettingsInput struct {
	Body struct {
		IsActive          bool   `json:"is_active" doc:"Enable the public reservation form"`
		TotalSeats        int    `json:"total_seats" minimum:"0" doc:"Advisory seat capacity"`
		TotalHighChairs   int    `json:"total_high_chairs" minimum:"0"`
		NotificationEmail string `json:"notification_email,omitempty" maxLength:"255" doc:"Owner address for new requests"`
		SlackChannel      string `json:"slack_channel,omitempty" maxLength:"80" doc:"Slack channel ID for new requests"`
	}
}

func staffTenant(ctx context.Context) (uuid.UUID, error) {
	tenantID, ok := middleware.TenantIDFromContext(ctx)
	if !ok {
		return uuid.Nil, huma.Error403Forbidden("missing tenant context")
	}
	return tenantID, nil
}

func RegisterSettingsRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "get-reservation-settings",
		Method:      http.MethodGet,
		Path:        "/reservation-settings",
		Summary:     "Get reservation settings",
		Tags:        []string{"Settings"},
	}, func(ctx context.Context, _ *GetSettingsInput) (*SettingsOutput, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}

		s, err := store.ReservationSettings().Get(ctx, tenantID)
		if errors.Is(err, domain.ErrNotFound) {
			return &SettingsOutput{Body: domain.DefaultReservationSettings(tenantID)}, nil
		}
		if err != nil {
			return nil, domainError(err, "settings", "load reservation settings")
		}
		return &SettingsOutput{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-reservation-settings",
		Method:      http.MethodPut,
		Path:        "/reservation-settings",
		Summary:     "Create or replace reservation settings",
		Tags:        []string{"Settings"},
	}, func(ctx context.Context, input *UpdateSettingsInput) (*SettingsOutput, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}

		s := &domain.ReservationSettings{
			TenantID:          tenantID,
			IsActive:          input.Body.IsActive,
			TotalSeats:        input.Body.TotalSeats,
			TotalHighChairs:   input.Body.TotalHighChairs,
			NotificationEmail: input.Body.NotificationEmail,
			SlackChannel:      input.Body.SlackChannel,
			UpdatedAt:         time.Now(),
		}
		if err := store.ReservationSettings().Upsert(ctx, s); err != nil {
			return nil, domainError(err, "settings", "save reservation settings")
		}
		return &SettingsOutput{Body: s}, nil
	})
}
