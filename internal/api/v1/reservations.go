package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/booking"
	"github.com/gosuda/coperto/internal/domain"
	"github.com/gosuda/coperto/internal/server/middleware"
)

type ListReservationsInput struct {
	Date   string `query:"date" doc:"Only reservations on this date (YYYY-MM-DD)"`
	Status string `query:"status" doc:"Only reservations with this status (pending, confirmed, rejected)"`
	Limit  int    `query:"limit" minimum:"1" maximum:"500" default:"100"`
	Offset int    `query:"offset" minimum:"0" default:"0"`
}

type ListReservationsOutput struct {
	Body []ReservationBody
}

type GetReservationInput struct {
	ID uuid.UUID `path:"id" doc:"Reservation ID"`
}

type GetReservationOutput struct {
	Body ReservationBody
}

type ReservationHistoryOutput struct {
	Body []*domain.AuditEntry
}

type UpdateReservationStatusInput struct {
	ID   uuid.UUID `path:"id" doc:"Reservation ID"`
	Body struct {
		Status          string      `json:"status" enum:"confirmed,rejected" doc:"Target status"`
		TableIDs        []uuid.UUID `json:"table_ids,omitempty" doc:"Tables to assign when confirming; replaces any previous assignment"`
		RejectionReason string      `json:"rejection_reason,omitempty" maxLength:"1000"`
	}
}

type UpdateReservationStatusOutput struct {
	Body struct {
		Success     bool            `json:"success"`
		Reservation ReservationBody `json:"reservation"`
		Conflicts   []ConflictBody  `json:"conflicts"`
	}
}

func RegisterReservationRoutes(api huma.API, store DataStore, bookingSvc BookingService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-reservations",
		Method:      http.MethodGet,
		Path:        "/reservations",
		Summary:     "List reservations by date and status",
		Tags:        []string{"Reservations"},
	}, func(ctx context.Context, input *ListReservationsInput) (*ListReservationsOutput, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}

		status := domain.ReservationStatus(input.Status)
		if status != "" && !status.Valid() {
			return nil, huma.Error400BadRequest("status must be pending, confirmed or rejected")
		}

		filter := domain.ReservationFilter{
			Status: status,
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Date != "" {
			d, parseErr := domain.ParseDate(input.Date)
			if parseErr != nil {
				return nil, huma.Error400BadRequest("date must be YYYY-MM-DD")
			}
			filter.Date = &d
		}

		rs, err := store.Reservations().List(ctx, tenantID, filter)
		if err != nil {
			return nil, domainError(err, "reservations", "list reservations")
		}

		out := &ListReservationsOutput{Body: make([]ReservationBody, 0, len(rs))}
		for _, r := range rs {
			out.Body = append(out.Body, toReservationBody(r))
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-reservation",
		Method:      http.MethodGet,
		Path:        "/reservations/{id}",
		Summary:     "Get a reservation with its assigned tables",
		Tags:        []string{"Reservations"},
	}, func(ctx context.Context, input *GetReservationInput) (*GetReservationOutput, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}

		r, err := store.Reservations().GetByID(ctx, tenantID, input.ID)
		if err != nil {
			return nil, domainError(err, "reservation", "get reservation")
		}
		return &GetReservationOutput{Body: toReservationBody(r)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-reservation-history",
		Method:      http.MethodGet,
		Path:        "/reservations/{id}/history",
		Summary:     "List status changes of a reservation",
		Tags:        []string{"Reservations"},
	}, func(ctx context.Context, input *GetReservationInput) (*ReservationHistoryOutput, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := store.Reservations().GetByID(ctx, tenantID, input.ID); err != nil {
			return nil, domainError(err, "reservation", "get reservation")
		}

		entries, err := store.Audit().ListByResource(ctx, tenantID, domain.ResourceReservation, input.ID)
		if err != nil {
			return nil, domainError(err, "history", "list reservation history")
		}
		if entries == nil {
			entries = []*domain.AuditEntry{}
		}
		return &ReservationHistoryOutput{Body: entries}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-reservation-status",
		Method:      http.MethodPatch,
		Path:        "/reservations/{id}/status",
		Summary:     "Confirm or reject a reservation",
		Description: "Confirming replaces the table assignment with table_ids (possibly empty). " +
			"Rejecting stores the reason and leaves assignments untouched.",
		Tags: []string{"Reservations"},
	}, func(ctx context.Context, input *UpdateReservationStatusInput) (*UpdateReservationStatusOutput, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}
		userID, _ := middleware.UserIDFromContext(ctx)

		outcome, err := bookingSvc.UpdateStatus(ctx, userID, tenantID, input.ID, booking.StatusChange{
			Status:   domain.ReservationStatus(input.Body.Status),
			TableIDs: input.Body.TableIDs,
			Reason:   input.Body.RejectionReason,
		})
		if err != nil {
			return nil, domainError(err, "reservation", "update reservation status")
		}

		out := &UpdateReservationStatusOutput{}
		out.Body.Success = true
		out.Body.Reservation = toReservationBody(outcome.Reservation)
		out.Body.Conflicts = toConflictBodies(outcome.Conflicts)
		return out, nil
	})
}
