package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/internal/auth/store"
	"github.com/aussiebroadwan/crm/pkg/cryptox"
	"github.com/aussiebroadwan/crm/pkg/idx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

// InvitationService owns the invitation lifecycle: created by an admin,
// then either accepted once (row deleted) or left to expire.
type InvitationService struct {
	Store store.Store
	TTL   time.Duration

	// PublicURL is the browser-facing origin used to build accept links.
	PublicURL string

	Events EventRecorder
	Now    func() time.Time
}

func (s *InvitationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *InvitationService) ttl() time.Duration {
	if s.TTL <= 0 {
		return domain.InvitationTTL
	}
	return s.TTL
}

// NormalizeEmail lowercases and trims email. Invited users sign in with the
// normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Link returns the accept URL for token.
func (s *InvitationService) Link(token string) string {
	return strings.TrimRight(s.PublicURL, "/") + "/accept-invite?token=" + url.QueryEscape(token)
}

// CreateInvitation invites email to companyID with role and returns the raw
// token. Only its fingerprint is stored.
func (s *InvitationService) CreateInvitation(
	ctx context.Context,
	email string,
	companyID string,
	role domain.Role,
) (string, error) {
	log := slogx.FromContext(ctx)
	email = NormalizeEmail(email)

	if _, err := domain.ParseRole(role.String()); err != nil {
		return "", err
	}

	// 1. Token and expiry exist before anything is written.
	token, err := cryptox.GenerateToken(cryptox.InvitationTokenBytes)
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	inv := domain.Invitation{
		ID:        idx.NewAt(now).String(),
		Email:     email,
		CompanyID: companyID,
		Role:      role,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
	}

	// 2. Guards and insert share one transaction.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().GetUserByUsername(ctx, email)
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Invitations().DeleteExpiredInvitationsByEmail(ctx, email, now); err != nil {
			return err
		}

		_, err = tx.Invitations().GetActiveInvitationByEmail(ctx, email, now)
		if err == nil {
			return ErrInvitationExists
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.Invitations().CreateInvitation(ctx, inv); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrInvitationExists
			}
			return err
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrUserExists), errors.Is(err, ErrInvitationExists):
		log.Info("invitation refused",
			slog.String("company_id", companyID),
			slog.Any("reason", err),
		)
		record(s.Events, "invite", "conflict")
		return "", err
	case err != nil:
		return "", err
	}

	// Delivery is out of band; the link is only logged.
	log.Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("company_id", companyID),
		slog.String("role", role.String()),
		slog.Time("expires_at", inv.ExpiresAt),
		slog.String("link", s.Link(token)),
	)
	record(s.Events, "invite", "success")

	return token, nil
}

// FindActiveInvitation resolves a raw token to its unexpired invitation.
func (s *InvitationService) FindActiveInvitation(ctx context.Context, token string) (domain.Invitation, error) {
	if token == "" {
		return domain.Invitation{}, ErrInvalidInvitation
	}
	inv, err := s.Store.Invitations().GetActiveInvitationByTokenHash(ctx, cryptox.FingerprintToken(token), s.now())
	if errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, ErrInvalidInvitation
	}
	return inv, err
}

// AcceptInvitation creates the invited user with the invitation's company
// and role and consumes the invitation. The lookup, user check, insert and
// delete run in one transaction.
func (s *InvitationService) AcceptInvitation(ctx context.Context, token, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return domain.User{}, ErrInvalidInvitation
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	var user domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		now := s.now().UTC()

		inv, err := tx.Invitations().GetActiveInvitationByTokenHash(ctx, cryptox.FingerprintToken(token), now)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidInvitation
			}
			return err
		}

		_, err = tx.Users().GetUserByUsername(ctx, inv.Email)
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		user = domain.User{
			ID:           idx.NewAt(now).String(),
			Username:     inv.Email,
			PasswordHash: hash,
			Role:         inv.Role,
			CompanyID:    inv.CompanyID,
			Status:       domain.UserStatusActive,
			CreatedAt:    now,
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrUserExists
			}
			return err
		}

		// A concurrent accept that got here first already removed it.
		if err := tx.Invitations().DeleteInvitation(ctx, inv.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidInvitation
			}
			return err
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrInvalidInvitation):
		log.Info("invitation token rejected")
		record(s.Events, "accept_invite", "invalid")
		return domain.User{}, err
	case errors.Is(err, ErrUserExists):
		log.Info("invitation accept conflict")
		record(s.Events, "accept_invite", "conflict")
		return domain.User{}, err
	case err != nil:
		return domain.User{}, err
	}

	log.Info("user joined via invitation",
		slog.String("user_id", user.ID),
		slog.String("company_id", user.CompanyID),
		slog.String("role", user.Role.String()),
	)
	record(s.Events, "accept_invite", "success")
	return user, nil
}
