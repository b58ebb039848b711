package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/coperto/internal/api/v1"
	"github.com/gosuda/coperto/internal/auth"
	"github.com/gosuda/coperto/internal/domain"
	"github.com/gosuda/coperto/internal/server/middleware"
)

func TestCreateUser(t *testing.T) {
	t.Parallel()

	newStaff := func(_ context.Context, tid uuid.UUID, email, _, name, role string) (*domain.User, error) {
		return &domain.User{ID: uuid.New(), TenantID: tid, Email: email, Name: name, Role: role, PasswordHash: "$argon2id$secret"}, nil
	}
	viewerCtx := context.WithValue(tenantCtx(fixedTenantID()), middleware.ContextKeyUserRole, domain.RoleViewer)

	tests := []struct {
		name       string
		ctx        context.Context
		body       map[string]any
		createUser func(context.Context, uuid.UUID, string, string, string, string) (*domain.User, error)
		wantStatus int
		wantRole   string
	}{
		{
			name:       "defaults to member",
			ctx:        adminCtx(fixedTenantID()),
			body:       map[string]any{"email": "luca@trattoria.it", "password": "secretpw1", "name": "Luca"},
			createUser: newStaff,
			wantStatus: http.StatusCreated,
			wantRole:   domain.RoleMember,
		},
		{
			name:       "explicit viewer",
			ctx:        adminCtx(fixedTenantID()),
			body:       map[string]any{"email": "sara@trattoria.it", "password": "secretpw1", "name": "Sara", "role": "viewer"},
			createUser: newStaff,
			wantStatus: http.StatusCreated,
			wantRole:   domain.RoleViewer,
		},
		{
			name:       "unknown role",
			ctx:        adminCtx(fixedTenantID()),
			body:       map[string]any{"email": "x@trattoria.it", "password": "secretpw1", "name": "X", "role": "owner"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "short password",
			ctx:        adminCtx(fixedTenantID()),
			body:       map[string]any{"email": "x@trattoria.it", "password": "short", "name": "X"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "email taken",
			ctx:  adminCtx(fixedTenantID()),
			body: map[string]any{"email": "luca@trattoria.it", "password": "secretpw1", "name": "Luca"},
			createUser: func(context.Context, uuid.UUID, string, string, string, string) (*domain.User, error) {
				return nil, auth.ErrUserAlreadyExists
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "member is refused",
			ctx:        staffCtx(fixedTenantID(), uuid.New()),
			body:       map[string]any{"email": "friend@evil.test", "password": "secretpw1", "name": "Friend"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "viewer is refused",
			ctx:        viewerCtx,
			body:       map[string]any{"email": "friend@evil.test", "password": "secretpw1", "name": "Friend"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no tenant is refused",
			ctx:        context.WithValue(context.Background(), middleware.ContextKeyUserRole, domain.RoleAdmin),
			body:       map[string]any{"email": "friend@evil.test", "password": "secretpw1", "name": "Friend"},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "store failure does not leak",
			ctx:  adminCtx(fixedTenantID()),
			body: map[string]any{"email": "luca@trattoria.it", "password": "secretpw1", "name": "Luca"},
			createUser: func(context.Context, uuid.UUID, string, string, string, string) (*domain.User, error) {
				return nil, errors.New("pg: connection refused")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			v1.RegisterUserRoutes(api, &mockAuthService{createUserFunc: tc.createUser})

			resp := api.PostCtx(tc.ctx, "/users", tc.body)
			require.Equal(t, tc.wantStatus, resp.Code, resp.Body.String())
			assert.NotContains(t, resp.Body.String(), "connection refused")
			assert.NotContains(t, resp.Body.String(), "argon2id")

			if tc.wantRole != "" {
				var got domain.User
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
				assert.Equal(t, fixedTenantID(), got.TenantID, "account lands in the caller's restaurant")
				assert.Equal(t, tc.wantRole, got.Role)
			}
		})
	}
}
