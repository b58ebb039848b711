package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/coperto/internal/auth"
	"github.com/gosuda/coperto/internal/domain"
	"github.com/gosuda/coperto/internal/server/middleware"
)

type CreateUserInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" format:"email" doc:"Staff email"`
		Password string `json:"password" minLength:"8" maxLength:"128" doc:"Initial password"` //nolint:gosec // G117: credential DTO
		Name     string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Role     string `json:"role,omitempty" enum:"admin,member,viewer" default:"member" doc:"Staff role"`
	}
}

type CreateUserOutput struct {
	Body *domain.User
}

// RegisterUserRoutes registers staff account management. Accounts always
// land in the caller's restaurant and only its admins may add them.
func RegisterUserRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-user",
		Method:        http.MethodPost,
		Path:          "/users",
		Summary:       "Add a staff account to the restaurant",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error) {
		tenantID, err := staffTenant(ctx)
		if err != nil {
			return nil, err
		}
		if role, ok := middleware.RoleFromContext(ctx); !ok || role != domain.RoleAdmin {
			return nil, huma.Error403Forbidden("admin role required")
		}

		role := input.Body.Role
		if role == "" {
			role = domain.RoleMember
		}

		user, err := authSvc.CreateUser(ctx, tenantID, input.Body.Email, input.Body.Password, input.Body.Name, role)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrUserAlreadyExists):
				return nil, huma.Error409Conflict("user already exists")
			case errors.Is(err, auth.ErrInvalidRole):
				return nil, huma.Error400BadRequest("unknown role")
			}
			return nil, domainError(err, "user", "create user")
		}

		log.Info().
			Str("tenant_id", tenantID.String()).
			Str("user_id", user.ID.String()).
			Str("role", user.Role).
			Msg("api: staff account created")

		return &CreateUserOutput{Body: user}, nil
	})
}
