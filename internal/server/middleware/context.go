package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/auth"
)

type contextKey string

// Context keys set by Auth and RequirePlatformAdmin. Handlers read them
// through the accessors.
const (
	ContextKeyTenantID      contextKey = "tenant_id"
	ContextKeyUserID        contextKey = "user_id"
	ContextKeyUserRole      contextKey = "role"
	ContextKeyPlatformAdmin contextKey = "platform_admin"
)

func TenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyTenantID).(uuid.UUID)
	return v, ok
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return v, ok
}

func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUserRole).(string)
	return v, ok
}

// PrincipalFromContext reassembles the authenticated staff member. It
// reports false unless tenant, user and role are all present.
func PrincipalFromContext(ctx context.Context) (*auth.Principal, bool) {
	tid, ok := TenantIDFromContext(ctx)
	if !ok {
		return nil, false
	}
	uid, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, false
	}
	role, ok := RoleFromContext(ctx)
	if !ok {
		return nil, false
	}
	return &auth.Principal{TenantID: tid, UserID: uid, Role: role}, true
}

func withPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	ctx = context.WithValue(ctx, ContextKeyTenantID, p.TenantID)
	ctx = context.WithValue(ctx, ContextKeyUserID, p.UserID)
	ctx = context.WithValue(ctx, ContextKeyUserRole, p.Role)
	return ctx
}

type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// writeProblem answers with the same problem+json shape huma uses, so
// clients see one error format whether a request stops here or in a handler.
func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
