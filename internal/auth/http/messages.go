package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/aussiebroadwan/crm/pkg/authsdk"
	"github.com/aussiebroadwan/crm/pkg/httpx"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

// Client-facing messages. The browser front end matches on some of these.
const (
	msgRegisterFieldsRequired = "Company name, username, and password are required"
	msgLoginFieldsRequired    = "Username and password are required"
	msgInviteFieldsRequired   = "Email and role are required"
	msgAcceptFieldsRequired   = "Token and password are required"
	msgTokenRequired          = "Token is required"

	msgInvalidEmail        = "Invalid email address"
	msgInvalidRole         = "Invalid role"
	msgPasswordTooLong     = "Password must be at most 72 bytes"
	msgInvalidCredentials  = "Invalid credentials"
	msgInvalidTokenVerify  = "Invalid token"
	msgCompanyOrUserExists = "Company name or username already exists"
	msgUserExists          = "User with this email already exists"
	msgInvitationExists    = "An active invitation for this email already exists"
	msgInvalidInvitation   = "Invalid or expired invitation token"

	msgRegistered       = "Company and admin user registered successfully"
	msgLoggedIn         = "Logged in successfully"
	msgInvitationSent   = "Invitation sent successfully"
	msgInviteAccepted   = "User registered successfully"
	msgLoggedOut        = "Logged out successfully"
	msgTokenValid       = "Token is valid"
	msgAPIRunning       = "API is running"
	msgProtectedGranted = "Access granted to protected route"
	msgAdminGranted     = "Welcome, admin"
	msgManagerGranted   = "Welcome, manager"
	msgDashboard        = "Welcome to your dashboard"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, httpx.MsgInvalidRequestBody)
		return false
	}
	return true
}

// writeInternal logs err with its stack and answers with the generic 500.
func writeInternal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slogx.FromContext(r.Context()).Error(msg,
		slog.Any("error", oops.With("path", r.URL.Path).Wrap(err)),
	)
	httpx.WriteMessage(w, http.StatusInternalServerError, httpx.MsgInternalError)
}

func claimsBody(c jwtx.Claims) authsdk.Claims {
	out := authsdk.Claims{
		ID:        c.UserID,
		Username:  c.Username,
		Role:      c.Role,
		CompanyID: c.CompanyID,
	}
	if exp := c.Expiry(); !exp.IsZero() {
		out.ExpiresAt = exp.Unix()
	}
	return out
}
