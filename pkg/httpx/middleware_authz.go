package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/crm/pkg/slogx"
)

// AuthorizeRoles lets the request through only when the authenticated role is
// in allowed. It must be chained after Authenticate; without claims in the
// context it denies.
func AuthorizeRoles(allowed ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !claims.HasRole(allowed...) {
				slogx.FromContext(r.Context()).Warn("role not permitted",
					"role", claims.Role,
					"allowed", allowed,
				)
				WriteMessage(w, http.StatusForbidden, MsgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
