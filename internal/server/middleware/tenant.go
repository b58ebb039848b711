package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequireTenant stops requests whose principal carries no restaurant. Every
// staff repository call is scoped by this tenant ID.
func RequireTenant() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tid, ok := TenantIDFromContext(r.Context()); !ok || tid == uuid.Nil {
				writeProblem(w, http.StatusForbidden, "valid tenant required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
