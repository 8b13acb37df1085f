package rbac

import (
	"net/http"

	"github.com/peopleflow/peopleflow/internal/platform/httpx"
	"github.com/peopleflow/peopleflow/internal/shared"
)

// Middleware wires authorization guards for HTTP handlers. Checks run
// against the session's role snapshot, so no guard touches the database.
type Middleware struct{}

// RequireAny ensures the current user has at least one of the required
// permissions. The TENANT_ADMIN override applies through the resolver.
func (Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if len(perms) == 0 || NewResolver(sess).HasAnyPermission(perms...) {
				next.ServeHTTP(w, r)
				return
			}
			httpx.RespondError(w, httpx.ErrForbidden)
		})
	}
}

// RequireAll ensures the current user has every required permission.
func (Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if NewResolver(sess).HasAllPermissions(perms...) {
				next.ServeHTTP(w, r)
				return
			}
			httpx.RespondError(w, httpx.ErrForbidden)
		})
	}
}

// RequireRole gates a route on role names rather than permissions.
func (Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			resolver := NewResolver(sess)
			for _, role := range roles {
				if resolver.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.RespondError(w, httpx.ErrForbidden)
		})
	}
}
