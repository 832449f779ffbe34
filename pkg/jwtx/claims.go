package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of every session token.
const DefaultSessionTTL = time.Hour

// Claims is the session payload. Field names match what the browser client
// decodes, so keep them stable.
type Claims struct {
	jwt.RegisteredClaims

	// UserID of the authenticated user.
	UserID string `json:"id"`

	// Username (email for invited users).
	Username string `json:"username"`

	// Role is one of admin, manager, user.
	Role string `json:"role"`

	// CompanyID is the tenant the user belongs to.
	CompanyID string `json:"companyId,omitempty"`
}

// NewSessionClaims builds the identity part of a session; registered claims
// are filled in by the issuer.
func NewSessionClaims(userID, username, role, companyID string) Claims {
	return Claims{
		UserID:    userID,
		Username:  username,
		Role:      role,
		CompanyID: companyID,
	}
}

// HasRole reports whether the claims carry any of roles.
func (c Claims) HasRole(roles ...string) bool {
	return c.Role != "" && slices.Contains(roles, c.Role)
}

// TokenID returns the jti, used as the revocation key.
func (c Claims) TokenID() string { return c.RegisteredClaims.ID }

// Expiry returns exp, or the zero time when absent.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
