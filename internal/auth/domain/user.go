package domain

import "time"

// UserStatus tracks whether an account may sign in.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

type User struct {
	ID           string
	Username     string // unique; invited users sign in with their email
	PasswordHash string // bcrypt
	Role         Role
	CompanyID    string
	Status       UserStatus
	CreatedAt    time.Time
}

// CanSignIn reports whether the account is active.
func (u User) CanSignIn() bool { return u.Status == UserStatusActive }
