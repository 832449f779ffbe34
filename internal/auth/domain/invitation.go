package domain

import "time"

// InvitationTTL is how long an invitation link stays usable.
const InvitationTTL = 24 * time.Hour

// Invitation grants one person the right to join a company with a role.
// Only the fingerprint of the token is kept.
type Invitation struct {
	ID        string
	Email     string
	CompanyID string
	Role      Role
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ActiveAt reports whether the invitation can still be accepted at now.
func (i Invitation) ActiveAt(now time.Time) bool { return now.Before(i.ExpiresAt) }
