package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
)

var (
	ErrNotFound = errors.New("store: not found")

	// ErrAlreadyExists is returned when an insert violates a unique
	// constraint. Drivers must map their native violation to it.
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it. Repositories hang off it so a Tx exposes the same
// surface as the Store it was started from.
type Store interface {
	Companies() Companies
	Users() Users
	Invitations() Invitations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise. Always use the tx handed to fn, never the
	// outer Store, for statements that must be atomic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Companies interface {
	// CreateCompany inserts a company; a taken name is ErrAlreadyExists.
	CreateCompany(ctx context.Context, c domain.Company) error

	GetCompanyByID(ctx context.Context, id string) (domain.Company, error)
}

type Users interface {
	// CreateUser inserts a user; a taken username is ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used by login and by the invitation checks.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
}

type Invitations interface {
	// CreateInvitation inserts an invitation. Emails are unique across the
	// table, so a second row for the same email is ErrAlreadyExists.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetActiveInvitationByTokenHash returns the invitation whose token
	// fingerprint is hash and which has not expired at now.
	GetActiveInvitationByTokenHash(ctx context.Context, hash string, now time.Time) (domain.Invitation, error)

	// GetActiveInvitationByEmail returns the unexpired invitation for email.
	GetActiveInvitationByEmail(ctx context.Context, email string, now time.Time) (domain.Invitation, error)

	// DeleteInvitation removes an invitation; ErrNotFound if it is already gone.
	DeleteInvitation(ctx context.Context, id string) error

	// DeleteExpiredInvitationsByEmail clears stale rows for email so a new
	// invitation can take the unique slot.
	DeleteExpiredInvitationsByEmail(ctx context.Context, email string, now time.Time) error

	// DeleteExpiredInvitations removes every invitation expired at now and
	// reports how many rows went.
	DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error)
}
