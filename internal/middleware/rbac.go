package middleware

import (
	"net/http"

	"peerdesk/internal/models"
)

// RBACMiddleware handles role-based access control for editorial endpoints
type RBACMiddleware struct{}

// NewRBACMiddleware creates a new RBAC middleware
func NewRBACMiddleware() *RBACMiddleware {
	return &RBACMiddleware{}
}

// RequireGlobalRole checks if the user carries any of the required
// organization-wide roles
func (m *RBACMiddleware) RequireGlobalRole(roles ...models.GlobalRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetUserID(r); !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}

			role, ok := GetGlobalRole(r)
			if !ok {
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			hasRole := false
			for _, required := range roles {
				if role == required {
					hasRole = true
					break
				}
			}

			if !hasRole {
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireEditorial allows admins and both editor roles
func (m *RBACMiddleware) RequireEditorial(next http.Handler) http.Handler {
	return m.RequireGlobalRole(
		models.GlobalRoleAdmin,
		models.GlobalRoleEditorInChief,
		models.GlobalRoleActionEditor,
	)(next)
}

// RequireAdmin allows admins only
func (m *RBACMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireGlobalRole(models.GlobalRoleAdmin)(next)
}
