package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, username, password_hash, role, company_id, status, created_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	if u.Status == "" {
		u.Status = domain.UserStatusActive
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Username, u.PasswordHash, string(u.Role), u.CompanyID, string(u.Status), u.CreatedAt.UTC(),
	)
	if err != nil {
		if cerr := conflict(err); cerr != nil {
			return cerr
		}
		return oops.Code("USER_CREATE_FAILED").With("username", u.Username).Wrap(err)
	}
	return nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if nerr := notFound(err, "USER_NOT_FOUND"); nerr != nil {
			return domain.User{}, nerr
		}
		return domain.User{}, oops.Code("USER_GET_BY_ID_FAILED").With("id", id).Wrap(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if err != nil {
		if nerr := notFound(err, "USER_NOT_FOUND"); nerr != nil {
			return domain.User{}, nerr
		}
		return domain.User{}, oops.Code("USER_GET_BY_USERNAME_FAILED").With("username", username).Wrap(err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u            domain.User
		role, status string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.CompanyID, &status, &u.CreatedAt); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	u.Status = domain.UserStatus(status)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
