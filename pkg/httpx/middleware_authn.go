package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

// Authenticate verifies the bearer token and attaches its claims to the
// request context. A missing token is 401; a token that fails verification
// for any reason is 403.
func Authenticate(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := BearerToken(r)
			if raw == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="crm"`)
				WriteMessage(w, http.StatusUnauthorized, MsgNoToken)
				return
			}

			claims, err := v.Verify(ctx, raw)
			if err != nil {
				slogx.FromContext(ctx).Warn("session token rejected", "err", err)
				w.Header().Set("WWW-Authenticate", `Bearer realm="crm", error="invalid_token"`)
				WriteMessage(w, http.StatusForbidden, MsgInvalidToken)
				return
			}

			ctx = contextWithClaims(ctx, claims)
			ctx = slogx.With(ctx,
				"user_id", claims.UserID,
				"company_id", claims.CompanyID,
				"role", claims.Role,
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
