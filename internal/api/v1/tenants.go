package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/auth"
	"github.com/gosuda/coperto/internal/domain"
	"github.com/gosuda/coperto/internal/server/middleware"
)

type CreateTenantInput struct {
	Body struct {
		Name          string `json:"name" minLength:"1" maxLength:"255" doc:"Restaurant name"`
		Slug          string `json:"slug" minLength:"1" maxLength:"63" pattern:"^[a-z0-9]+(?:-[a-z0-9]+)*$" doc:"URL-safe slug (lowercase alphanumeric with hyphens)"`
		AdminEmail    string `json:"admin_email,omitempty" maxLength:"255" doc:"Optional first admin of the new restaurant"`
		AdminPassword string `json:"admin_password,omitempty" maxLength:"128" doc:"Required with admin_email"` //nolint:gosec // G117: credential DTO
		AdminName     string `json:"admin_name,omitempty" maxLength:"255"`
	}
}

type CreateTenantOutput struct {
	Body struct {
		Tenant *domain.Tenant `json:"tenant"`
		Admin  *domain.User   `json:"admin,omitempty"`
	}
}

type ListTenantsInput struct {
	Limit  int `query:"limit" minimum:"1" maximum:"200" default:"50" doc:"Max results"`
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Offset for pagination"`
}

type ListTenantsOutput struct {
	Body []*domain.Tenant
}

// RegisterTenantRoutes registers platform administration of restaurant
// accounts. Only requests admitted by middleware.RequirePlatformAdmin get
// through; a restaurant's own admin does not.
func RegisterTenantRoutes(api huma.API, store DataStore, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-tenant",
		Method:        http.MethodPost,
		Path:          "/admin/tenants",
		Summary:       "Create a restaurant account",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTenantInput) (*CreateTenantOutput, error) {
		if !middleware.IsPlatformAdmin(ctx) {
			return nil, huma.Error403Forbidden("platform operator required")
		}
		if input.Body.AdminEmail != "" && len(input.Body.AdminPassword) < 8 {
			return nil, huma.Error400BadRequest("admin_password must be at least 8 characters")
		}

		now := time.Now()
		t := &domain.Tenant{
			ID:        uuid.New(),
			Name:      input.Body.Name,
			Slug:      input.Body.Slug,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := store.Tenants().Create(ctx, t); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("slug already taken")
			}
			return nil, domainError(err, "tenant", "create tenant")
		}

		out := &CreateTenantOutput{}
		out.Body.Tenant = t

		if input.Body.AdminEmail != "" {
			admin, err := authSvc.CreateUser(ctx, t.ID, input.Body.AdminEmail, input.Body.AdminPassword, input.Body.AdminName, domain.RoleAdmin)
			if err != nil {
				if errors.Is(err, auth.ErrUserAlreadyExists) {
					return nil, huma.Error409Conflict("admin user already exists")
				}
				return nil, domainError(err, "user", "create tenant admin")
			}
			out.Body.Admin = admin
		}

		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/admin/tenants",
		Summary:     "List restaurant accounts",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *ListTenantsInput) (*ListTenantsOutput, error) {
		if !middleware.IsPlatformAdmin(ctx) {
			return nil, huma.Error403Forbidden("platform operator required")
		}

		tenants, err := store.Tenants().ListPaginated(ctx, input.Limit, input.Offset)
		if err != nil {
			return nil, domainError(err, "tenants", "list tenants")
		}
		if tenants == nil {
			tenants = []*domain.Tenant{}
		}

		return &ListTenantsOutput{Body: tenants}, nil
	})
}
