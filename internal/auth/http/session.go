package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/service"
	"github.com/aussiebroadwan/crm/pkg/authsdk"
	"github.com/aussiebroadwan/crm/pkg/httpx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

// CookieOptions controls the session cookie set on successful sign-in.
type CookieOptions struct {
	TTL    time.Duration
	Secure bool
}

func (o CookieOptions) set(w http.ResponseWriter, token string) {
	httpx.SetSessionCookie(w, token, o.TTL, o.Secure)
}

type SessionHandler struct {
	Sessions *service.SessionService
	Cookies  CookieOptions
}

// HandleVerifyToken godoc
//
//	@Summary		Verify a session token
//	@Description	Checks signature, expiry and revocation and returns the decoded claims.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyTokenRequest	true	"Token to check"
//	@Success		200		{object}	authsdk.ClaimsResponse		"message, claims"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Token is required"
//	@Failure		401		{object}	authsdk.ErrorResponse		"Invalid token"
//	@Router			/verify-token [post].
func (h *SessionHandler) HandleVerifyToken(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, msgTokenRequired)
		return
	}

	claims, err := h.Sessions.Verify(r.Context(), req.Token)
	if err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, msgInvalidTokenVerify)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.ClaimsResponse{
		Message: msgTokenValid,
		Claims:  claimsBody(claims),
	})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Clears the session cookie and, when a denylist is configured, revokes the token until it expires.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse	"Logged out successfully"
//	@Failure		401	{object}	authsdk.ErrorResponse	"No token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Invalid token"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Revocation failed"
//	@Security		BearerAuth
//	@Router			/logout [post].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := httpx.ClaimsFromContext(ctx)

	httpx.ClearSessionCookie(w, h.Cookies.Secure)

	err := h.Sessions.Revoke(ctx, claims)
	switch {
	case err == nil:
		slogx.FromContext(ctx).Info("session revoked", "jti", claims.TokenID())
	case errors.Is(err, service.ErrRevocationDisabled):
		// Cookie cleared; the token lives until it expires.
	default:
		writeInternal(w, r, "failed to revoke session", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: msgLoggedOut})
}

// HandleDashboard godoc
//
//	@Summary		Dashboard landing
//	@Description	Browser landing page behind the edge gate. Accepts the session cookie or a bearer token.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	authsdk.ClaimsResponse	"message, claims"
//	@Success		303	"Redirect to /login for browser navigations without a session"
//	@Failure		401	{object}	authsdk.ErrorResponse	"No valid session"
//	@Router			/dashboard [get].
func (h *SessionHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Sessions.Verify(r.Context(), httpx.SessionToken(r))
	if err != nil {
		// The edge gate already checked; this only trips on a race with logout.
		httpx.WriteMessage(w, http.StatusUnauthorized, httpx.MsgNoToken)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.ClaimsResponse{
		Message: msgDashboard,
		Claims:  claimsBody(claims),
	})
}

// MessageHandler answers every request with a fixed 200 message. Used for
// the role-gated probe routes and the root.
//
//	@Summary		Role-gated probes
//	@Description	/protected needs any valid token, /manager needs manager or admin, /admin needs admin.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse	"message"
//	@Failure		401	{object}	authsdk.ErrorResponse	"No token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Invalid token or insufficient role"
//	@Security		BearerAuth
//	@Router			/protected [get]
//	@Router			/manager [get]
//	@Router			/admin [get]
func MessageHandler(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: msg})
	}
}

// NotFoundHandler answers unmatched routes.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteMessage(w, http.StatusNotFound, httpx.MsgRouteNotFound)
	}
}
