package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/coperto/internal/auth"
	"github.com/gosuda/coperto/internal/domain"
)

// TenantSummary identifies the restaurant a staff session belongs to.
type TenantSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func toTenantSummary(t *domain.Tenant) TenantSummary {
	return TenantSummary{ID: t.ID.String(), Name: t.Name, Slug: t.Slug}
}

// Tokens is the pair handed out on login.
type Tokens struct {
	AccessToken  string `json:"access_token"`  //nolint:gosec // G117: auth response DTO
	RefreshToken string `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
}

type LoginInput struct {
	Body struct {
		RestaurantSlug string `json:"tenant_slug" minLength:"1" maxLength:"63" pattern:"^[a-z0-9]+(?:-[a-z0-9]+)*$" doc:"Restaurant slug"`
		Email          string `json:"email" minLength:"3" maxLength:"255" doc:"Staff email"`
		Password       string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type LoginOutput struct {
	Body struct {
		Tokens
		Tenant TenantSummary `json:"tenant"`
	}
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" minLength:"1" doc:"Refresh token"` //nolint:gosec // G117: token refresh DTO
	}
}

type RefreshOutput struct {
	Body struct {
		AccessToken string `json:"access_token"` //nolint:gosec // G117: auth response DTO
	}
}

// restaurantBySlug resolves a public slug, mapping a miss to 404.
func restaurantBySlug(ctx context.Context, store DataStore, slug string) (*domain.Tenant, error) {
	t, err := store.Tenants().GetBySlug(ctx, slug)
	if err != nil {
		return nil, domainError(err, "restaurant", "look up restaurant")
	}
	return t, nil
}

// RegisterAuthRoutes registers staff login and token refresh. Staff sign in
// against one restaurant, chosen by slug. Accounts are never created here;
// see RegisterUserRoutes.
func RegisterAuthRoutes(api huma.API, store DataStore, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		tenant, err := restaurantBySlug(ctx, store, input.Body.RestaurantSlug)
		if err != nil {
			return nil, err
		}

		access, refresh, err := authSvc.Login(ctx, tenant.ID, input.Body.Email, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return nil, huma.Error401Unauthorized("invalid email or password")
			}
			return nil, domainError(err, "user", "log in")
		}

		out := &LoginOutput{}
		out.Body.Tenant = toTenantSummary(tenant)
		out.Body.Tokens = Tokens{AccessToken: access, RefreshToken: refresh}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Refresh access token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
		access, err := authSvc.RefreshToken(ctx, input.Body.RefreshToken)
		if err != nil {
			log.Debug().Err(err).Msg("api: refresh rejected")
			return nil, huma.Error401Unauthorized("invalid or expired refresh token")
		}

		out := &RefreshOutput{}
		out.Body.AccessToken = access
		return out, nil
	})
}
