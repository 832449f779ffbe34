package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrEmptySecret is returned when no signing secret is configured.
var ErrEmptySecret = errors.New("jwtx: signing secret is empty")

// ErrIncompleteClaims is returned by Issue for claims Verify would reject.
var ErrIncompleteClaims = errors.New("jwtx: claims need a user id and a role")

// HS256 signs and verifies session tokens with one process-wide secret.
type HS256 struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewHS256 returns an HS256 issuer/verifier. issuer may be empty.
func NewHS256(secret []byte, issuer string) (*HS256, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &HS256{
		secret: secret,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// WithClock replaces the time source used for both issuing and verifying.
func (h *HS256) WithClock(now func() time.Time) *HS256 {
	h.now = now
	return h
}

// Issue signs c with iat/nbf/exp derived from ttl. A fresh jti is assigned
// unless c already carries one.
func (h *HS256) Issue(c Claims, ttl time.Duration) (string, error) {
	if !c.complete() {
		return "", ErrIncompleteClaims
	}
	now := h.now().UTC()

	c.Issuer = h.issuer
	c.IssuedAt = jwt.NewNumericDate(now)
	c.NotBefore = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if c.RegisteredClaims.ID == "" {
		c.RegisteredClaims.ID = uuid.NewString()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(h.secret)
}

// Verify checks signature, algorithm, issuer and expiry.
func (h *HS256) Verify(raw string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(h.now),
	}
	if h.issuer != "" {
		opts = append(opts, jwt.WithIssuer(h.issuer))
	}

	var c Claims
	token, err := jwt.NewParser(opts...).ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if !c.complete() {
		return Claims{}, ErrInvalidToken
	}
	return c, nil
}

// complete reports whether c names a user and a role. Issue and Verify share
// it so every token Issue signs also verifies.
func (c Claims) complete() bool { return c.UserID != "" && c.Role != "" }
