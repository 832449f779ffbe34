package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/crm/internal/auth/store"
)

var errNestedTx = errors.New("postgres: nested transactions are not supported")

type txStore struct {
	ctx context.Context
	tx  pgx.Tx
}

func (t *txStore) Commit() error {
	if err := t.tx.Commit(t.ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

func (t *txStore) Rollback() error { return t.tx.Rollback(t.ctx) }

func (t *txStore) Close() error                 { return nil }
func (t *txStore) Ping(_ context.Context) error { return nil }

func (t *txStore) Tx(_ context.Context) (store.Tx, error) { return nil, errNestedTx }

func (t *txStore) WithTx(_ context.Context, _ func(tx store.Tx) error) error { return errNestedTx }

func (t *txStore) Companies() store.Companies     { return &companiesRepo{q: t.tx} }
func (t *txStore) Users() store.Users             { return &usersRepo{q: t.tx} }
func (t *txStore) Invitations() store.Invitations { return &invitationsRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil }
