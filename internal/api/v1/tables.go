package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/domain"
)

type TableFields struct {
	Name         string `json:"name" minLength:"1" maxLength:"100" doc:"Table label, e.g. T1"`
	Seats        int    `json:"seats" minimum:"1" maximum:"100"`
	IsActive     bool   `json:"is_active"`
	DisplayOrder int    `json:"display_order,omitempty" minimum:"0"`
}

type CreateTableInput struct {
	Body TableFields
}

type TableOutput struct {
	Body *domain.Table
}

type ListTablesInput struct{}

type ListTablesOutput struct {
	Body []*domain.Table
}

type UpdateTableInput struct {
	ID   uuid.UUID `path:"id" doc:"Table ID"`
	Body TableFields
}

type DeleteTableInput struct {
	ID uuid.UUID `path:"id" doc:"Table ID"`
}

func RegisterTableRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tables",
		Method:      http.MethodGet,
		Path:        "/tables",
		Summary:     "List tables in display order",
		Tags:        []string{"Tables"},
	}, func(ctx context.Context, _ *ListTablesInput) (*ListTablesOutput, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}

		tables, err := store.Tables().List(ctx, tenantID)
		if err != nil {
			return nil, domainError(err, "tables", "list tables")
		}
		if tables == nil {
			tables = []*domain.Table{}
		}
		return &ListTablesOutput{Body: tables}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-table",
		Method:        http.MethodPost,
		Path:          "/tables",
		Summary:       "Create a table",
		Tags:          []string{"Tables"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTableInput) (*TableOutput, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		t := &domain.Table{
			ID:           uuid.New(),
			TenantID:     tenantID,
			Name:         input.Body.Name,
			Seats:        input.Body.Seats,
			IsActive:     input.Body.IsActive,
			DisplayOrder: input.Body.DisplayOrder,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := t.Validate(); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		if err := store.Tables().Create(ctx, t); err != nil {
			return nil, domainError(err, "table", "create table")
		}
		return &TableOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-table",
		Method:      http.MethodPut,
		Path:        "/tables/{id}",
		Summary:     "Replace a table",
		Tags:        []string{"Tables"},
	}, func(ctx context.Context, input *UpdateTableInput) (*TableOutput, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}

		t, err := store.Tables().GetByID(ctx, tenantID, input.ID)
		if err != nil {
			return nil, domainError(err, "table", "get table")
		}
		t.Name = input.Body.Name
		t.Seats = input.Body.Seats
		t.IsActive = input.Body.IsActive
		t.DisplayOrder = input.Body.DisplayOrder
		t.UpdatedAt = time.Now()
		if err := t.Validate(); err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		if err := store.Tables().Update(ctx, t); err != nil {
			return nil, domainError(err, "table", "update table")
		}
		return &TableOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-table",
		Method:        http.MethodDelete,
		Path:          "/tables/{id}",
		Summary:       "Delete a table",
		Tags:          []string{"Tables"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteTableInput) (*struct{}, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}

		if err := store.Tables().Delete(ctx, tenantID, input.ID); err != nil {
			return nil, domainError(err, "table", "delete table")
		}
		return nil, nil
	})
}
