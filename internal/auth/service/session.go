package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/internal/auth/revocation"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

// SessionService issues and checks session tokens. It satisfies
// jwtx.Verifier so the request gate can use it directly.
type SessionService struct {
	Tokens *jwtx.HS256
	TTL    time.Duration

	// Denylist is optional; nil disables revocation.
	Denylist revocation.Denylist
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return jwtx.DefaultSessionTTL
	}
	return s.TTL
}

// IssueFor signs a session for u.
func (s *SessionService) IssueFor(u domain.User) (string, error) {
	claims := jwtx.NewSessionClaims(u.ID, u.Username, u.Role.String(), u.CompanyID)
	return s.Tokens.Issue(claims, s.ttl())
}

// Verify checks the signature and expiry, then the denylist. A denylist
// that cannot be reached fails closed.
func (s *SessionService) Verify(ctx context.Context, raw string) (jwtx.Claims, error) {
	claims, err := s.Tokens.Verify(raw)
	if err != nil {
		return jwtx.Claims{}, err
	}
	if s.Denylist == nil {
		return claims, nil
	}

	revoked, err := s.Denylist.IsRevoked(ctx, claims.TokenID())
	if err != nil {
		slogx.FromContext(ctx).Error("denylist lookup failed",
			slog.String("jti", claims.TokenID()),
			slog.Any("error", err),
		)
		return jwtx.Claims{}, jwtx.ErrInvalidToken
	}
	if revoked {
		return jwtx.Claims{}, jwtx.ErrInvalidToken
	}
	return claims, nil
}

// Revoke retires the session named by claims until its natural expiry.
func (s *SessionService) Revoke(ctx context.Context, claims jwtx.Claims) error {
	if s.Denylist == nil {
		return ErrRevocationDisabled
	}
	return s.Denylist.Revoke(ctx, claims.TokenID(), claims.Expiry())
}

// RevocationEnabled reports whether logout can retire tokens server-side.
func (s *SessionService) RevocationEnabled() bool { return s.Denylist != nil }
