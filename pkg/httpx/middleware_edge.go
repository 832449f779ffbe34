package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

// EdgeConfig describes which paths the edge gate guards.
type EdgeConfig struct {
	// ProtectedPrefixes require a valid session (e.g. /dashboard).
	ProtectedPrefixes []string

	// AuthOnlyPaths are pages a signed-in browser is bounced away from.
	AuthOnlyPaths []string

	// LoginPath is where unauthenticated browser navigations are sent.
	LoginPath string

	// LandingPath is where signed-in browsers are sent from auth-only pages.
	LandingPath string
}

// DefaultEdgeConfig guards the dashboard and bounces signed-in users away from
// the login and register pages.
func DefaultEdgeConfig() EdgeConfig {
	return EdgeConfig{
		ProtectedPrefixes: []string{"/dashboard"},
		AuthOnlyPaths:     []string{"/login", "/register"},
		LoginPath:         "/login",
		LandingPath:       "/dashboard",
	}
}

// EdgeGate inspects the session token (cookie or bearer header) before any
// route handler runs. It does not attach claims; per-route guards still
// authenticate on their own.
func EdgeGate(v jwtx.Verifier, cfg EdgeConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			protected := matchesAny(path, cfg.ProtectedPrefixes)
			authOnly := isPageLoad(r) && matchesAny(path, cfg.AuthOnlyPaths)
			if !protected && !authOnly {
				next.ServeHTTP(w, r)
				return
			}

			signedIn := false
			if raw := SessionToken(r); raw != "" {
				_, err := v.Verify(r.Context(), raw)
				signedIn = err == nil
			}

			switch {
			case protected && !signedIn:
				slogx.FromContext(r.Context()).Debug("edge gate denied", "path", path)
				if isPageLoad(r) && acceptsHTML(r) {
					http.Redirect(w, r, cfg.LoginPath, http.StatusSeeOther)
					return
				}
				WriteMessage(w, http.StatusUnauthorized, MsgNoToken)
			case authOnly && signedIn:
				http.Redirect(w, r, cfg.LandingPath, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// matchesAny reports whether path equals a prefix or sits beneath it.
func matchesAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		p = strings.TrimSuffix(p, "/")
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func isPageLoad(r *http.Request) bool {
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}

func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
