package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/coperto/internal/auth"
	"github.com/gosuda/coperto/internal/domain"
	"github.com/gosuda/coperto/internal/server/middleware"
)

const testJWTSecret = "middleware-secret-0123456789abcdef"

// principalRecorder remembers what Auth put into the request context.
type principalRecorder struct {
	got    *auth.Principal
	called bool
}

func (h *principalRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.got, _ = middleware.PrincipalFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func TestAuth(t *testing.T) {
	t.Parallel()

	restaurant, waiter := uuid.New(), uuid.New()

	access, err := auth.IssueAccessToken(testJWTSecret, restaurant, waiter, domain.RoleMember, 15*time.Minute)
	require.NoError(t, err)
	expired, err := auth.IssueAccessToken(testJWTSecret, restaurant, waiter, domain.RoleMember, -time.Second)
	require.NoError(t, err)
	foreign, err := auth.IssueAccessToken("another-service-secret-0123456789", restaurant, waiter, domain.RoleMember, 15*time.Minute)
	require.NoError(t, err)
	refresh, err := auth.IssueRefreshToken(testJWTSecret, restaurant, waiter, domain.RoleMember, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		wantOK bool
	}{
		{name: "bearer header", header: "Bearer " + access, wantOK: true},
		{name: "lowercase scheme", header: "bearer " + access, wantOK: true},
		{name: "uppercase scheme", header: "BEARER " + access, wantOK: true},
		{name: "query parameter", query: access, wantOK: true},
		{name: "basic scheme", header: "Basic " + access},
		{name: "garbage token", header: "Bearer not.a.jwt"},
		{name: "expired token", header: "Bearer " + expired},
		{name: "signed with another secret", header: "Bearer " + foreign},
		{name: "refresh token", header: "Bearer " + refresh},
		{name: "no credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			target := "/ws/reservations"
			if tt.query != "" {
				target += "?access_token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			next := &principalRecorder{}

			middleware.Auth(testJWTSecret)(next).ServeHTTP(rec, req)

			if !tt.wantOK {
				assert.False(t, next.called)
				assert.Equal(t, http.StatusUnauthorized, rec.Code)
				assert.Contains(t, rec.Body.String(), "missing or invalid credentials")
				return
			}
			require.True(t, next.called)
			require.NotNil(t, next.got)
			assert.Equal(t, restaurant, next.got.TenantID)
			assert.Equal(t, waiter, next.got.UserID)
			assert.Equal(t, domain.RoleMember, next.got.Role)
		})
	}
}

func TestRequirePlatformAdmin(t *testing.T) {
	t.Parallel()

	operator, restaurant := uuid.New(), uuid.New()

	token := func(tenantID uuid.UUID, role string) string {
		tok, err := auth.IssueAccessToken(testJWTSecret, tenantID, uuid.New(), role, time.Minute)
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name       string
		operator   uuid.UUID
		token      string
		wantStatus int
	}{
		{"operator admin", operator, token(operator, domain.RoleAdmin), http.StatusOK},
		{"operator member", operator, token(operator, domain.RoleMember), http.StatusForbidden},
		{"restaurant admin", operator, token(restaurant, domain.RoleAdmin), http.StatusForbidden},
		{"no operator configured", uuid.Nil, token(operator, domain.RoleAdmin), http.StatusForbidden},
		{"anonymous", operator, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var admitted bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				admitted = middleware.IsPlatformAdmin(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			h := middleware.Auth(testJWTSecret)(middleware.RequirePlatformAdmin(tt.operator)(next))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/tenants", http.NoBody)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, admitted)
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			}
		})
	}
}
