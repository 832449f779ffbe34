package jwtx

import (
	"context"
	"errors"
)

// ErrInvalidToken covers every verification failure: malformed, forged,
// wrong algorithm, wrong issuer, expired or revoked. Callers cannot tell
// them apart.
var ErrInvalidToken = errors.New("jwtx: invalid token")

// Verifier validates a session token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (Claims, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (Claims, error) {
	return f(ctx, token)
}
