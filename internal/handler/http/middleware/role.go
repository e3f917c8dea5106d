package middleware

import (
	"net/http"

	"github.com/hostel-arena/hms-backend-go/internal/domain/auth"
	"github.com/hostel-arena/hms-backend-go/internal/handler/http/response"
)

// RequireRoles allows the request through when the caller holds any of roles.
// It must run after AuthRequired.
func RequireRoles(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			if !claims.HasRole(roles...) {
				response.HandleError(w, auth.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireWarden requires one of the warden roles.
func RequireWarden(next http.Handler) http.Handler {
	return RequireRoles(auth.Wardens...)(next)
}
