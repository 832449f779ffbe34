package service

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrCompanyOrUserExists = errors.New("company name or username already exists")
	ErrUserExists          = errors.New("user with this email already exists")
	ErrInvitationExists    = errors.New("an active invitation for this email already exists")
	ErrInvalidInvitation   = errors.New("invalid or expired invitation token")

	// ErrRevocationDisabled is returned by SessionService.Revoke when no
	// denylist is configured.
	ErrRevocationDisabled = errors.New("token revocation is not configured")
)

// EventRecorder receives auth outcomes for metrics. It may be nil.
type EventRecorder interface {
	Record(event, outcome string)
}

func record(r EventRecorder, event, outcome string) {
	if r != nil {
		r.Record(event, outcome)
	}
}
