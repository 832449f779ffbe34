package sqlite

import (
	"context"

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
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, string(u.Role), u.CompanyID, string(u.Status), toMillis(u.CreatedAt),
	)
	return mapConflict(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.scan(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.scan(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *usersRepo) scan(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u            domain.User
		role, status string
		createdAt    int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.CompanyID, &status, &createdAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Role = domain.Role(role)
	u.Status = domain.UserStatus(status)
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}
