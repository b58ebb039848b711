package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/domain"
)

// RequireRole returns middleware that checks if the authenticated user has one
// of the allowed roles. It must be chained after Auth.
//
// Returns 401 when no role is found in context and 403 when the role does
// not match any of the allowed roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || role == "" {
				writeProblem(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if _, match := allowed[role]; !match {
				writeProblem(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePlatformAdmin admits only admins of the operator tenant. A
// restaurant's own admin is refused, as is everyone while operator is
// uuid.Nil. It must be chained after Auth.
func RequirePlatformAdmin(operator uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeProblem(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if operator == uuid.Nil || p.TenantID != operator || p.Role != domain.RoleAdmin {
				writeProblem(w, http.StatusForbidden, "platform operator required")
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyPlatformAdmin, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsPlatformAdmin reports whether RequirePlatformAdmin admitted the request.
func IsPlatformAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(ContextKeyPlatformAdmin).(bool)
	return v
}

// ReadOnlyForViewers lets safe methods through for every role and restricts
// mutating methods to admins and members.
func ReadOnlyForViewers() func(http.Handler) http.Handler {
	write := RequireRole(domain.RoleAdmin, domain.RoleMember)
	read := RequireRole(domain.RoleAdmin, domain.RoleMember, domain.RoleViewer)

	return func(next http.Handler) http.Handler {
		writeNext := write(next)
		readNext := read(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				readNext.ServeHTTP(w, r)
			default:
				writeNext.ServeHTTP(w, r)
			}
		})
	}
}
