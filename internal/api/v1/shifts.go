package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/domain"
)

type ShiftFields struct {
	Name       string `json:"name" minLength:"1" maxLength:"100" doc:"Shift name, e.g. Pranzo"`
	StartTime  string `json:"start_time" doc:"HH:MM" example:"12:00"`
	EndTime    string `json:"end_time" doc:"HH:MM, 24:00 for midnight" example:"15:00"`
	DaysOfWeek []int  `json:"days_of_week" doc:"0 = Sunday .. 6 = Saturday"`
	IsActive   bool   `json:"is_active"`
}

// apply parses the wire fields into s and validates the result.
func (f ShiftFields) apply(s *domain.Shift) error {
	start, err := domain.ParseClockTime(f.StartTime)
	if err != nil {
		return huma.Error400BadRequest("start_time must be HH:MM")
	}
	end, err := domain.ParseClockTime(f.EndTime)
	if err != nil {
		return huma.Error400BadRequest("end_time must be HH:MM")
	}

	s.Name = f.Name
	s.StartTime = start
	s.EndTime = end
	s.DaysOfWeek = intsToWeekdays(f.DaysOfWeek)
	s.IsActive = f.IsActive

	if err := s.Validate(); err != nil {
		return huma.Error400BadRequest(err.Error())
	}
	return nil
}

type CreateShiftInput struct {
	Body ShiftFields
}

type ShiftOutput struct {
	Body ShiftBody
}

type ListShiftsInput struct{}

type ListShiftsOutput struct {
	Body []ShiftBody
}

type UpdateShiftInput struct {
	ID   uuid.UUID `path:"id" doc:"Shift ID"`
	Body ShiftFields
}

type DeleteShiftInput struct {
	ID uuid.UUID `path:"id" doc:"Shift ID"`
}

func RegisterShiftRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-shifts",
		Method:      http.MethodGet,
		Path:        "/shifts",
		Summary:     "List shifts",
		Tags:        []string{"Shifts"},
	}, func(ctx context.Context, _ *ListShiftsInput) (*ListShiftsOutput, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}

		shifts, err := store.Shifts().List(ctx, tenantID)
		if err != nil {
			return nil, domainError(err, "shifts", "list shifts")
		}

		out := &ListShiftsOutput{Body: make([]ShiftBody, 0, len(shifts))}
		for _, s := range shifts {
			out.Body = append(out.Body, toShiftBody(s))
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-shift",
		Method:        http.MethodPost,
		Path:          "/shifts",
		Summary:       "Create a shift",
		Tags:          []string{"Shifts"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateShiftInput) (*ShiftOutput, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		s := &domain.Shift{ID: uuid.New(), TenantID: tenantID, CreatedAt: now, UpdatedAt: now}
		if err := input.Body.apply(s); err != nil {
			return nil, err
		}

		if err := store.Shifts().Create(ctx, s); err != nil {
			return nil, domainError(err, "shift", "create shift")
		}
		return &ShiftOutput{Body: toShiftBody(s)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-shift",
		Method:      http.MethodPut,
		Path:        "/shifts/{id}",
		Summary:     "Replace a shift",
		Tags:        []string{"Shifts"},
	}, func(ctx context.Context, input *UpdateShiftInput) (*ShiftOutput, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}

		s, err := store.Shifts().GetByID(ctx, tenantID, input.ID)
		if err != nil {
			return nil, domainError(err, "shift", "get shift")
		}
		if err := input.Body.apply(s); err != nil {
			return nil, err
		}
		s.UpdatedAt = time.Now()

		if err := store.Shifts().Update(ctx, s); err != nil {
			return nil, domainError(err, "shift", "update shift")
		}
		return &ShiftOutput{Body: toShiftBody(s)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-shift",
		Method:        http.MethodDelete,
		Path:          "/shifts/{id}",
		Summary:       "Delete a shift",
		Tags:          []string{"Shifts"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteShiftInput) (*struct{}, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}

		if err := store.Shifts().Delete(ctx, tenantID, input.ID); err != nil {
			return nil, domainError(err, "shift", "delete shift")
		}
		return nil, nil
	})
}
