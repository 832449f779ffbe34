package http

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/pkg/authsdk"
)

// Requests are validated in two passes: presence first, reported with one
// fixed message per endpoint, then format, reported per field.

func validateRegister(req *authsdk.RegisterRequest) error {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.Username = strings.TrimSpace(req.Username)
	return validation.ValidateStruct(req,
		validation.Field(&req.CompanyName, validation.Required),
		validation.Field(&req.Username, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}

func validateLogin(req *authsdk.LoginRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	return validation.ValidateStruct(req,
		validation.Field(&req.Username, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}

func validateAcceptInvite(req *authsdk.AcceptInviteRequest) error {
	req.Token = strings.TrimSpace(req.Token)
	return validation.ValidateStruct(req,
		validation.Field(&req.Token, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}

// validateInvite returns the message to answer with, or "" when req is fine.
func validateInvite(req *authsdk.InviteRequest) string {
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.TrimSpace(req.Role)

	err := validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required),
		validation.Field(&req.Role, validation.Required),
	)
	if err != nil {
		return msgInviteFieldsRequired
	}

	if err := validation.Validate(req.Email, is.Email); err != nil {
		return msgInvalidEmail
	}
	if err := validation.Validate(req.Role, validation.In(roleValues()...)); err != nil {
		return msgInvalidRole
	}
	return ""
}

func roleValues() []any {
	roles := domain.Roles()
	out := make([]any, len(roles))
	for i, r := range roles {
		out[i] = r.String()
	}
	return out
}
