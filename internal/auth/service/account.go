package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/domain"
	"github.com/aussiebroadwan/crm/internal/auth/store"
	"github.com/aussiebroadwan/crm/pkg/cryptox"
	"github.com/aussiebroadwan/crm/pkg/idx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
)

// AccountService covers self-service company registration and login.
type AccountService struct {
	Store    store.Store
	Sessions *SessionService
	Events   EventRecorder
	Now      func() time.Time
}

// Registration is the outcome of RegisterCompany.
type Registration struct {
	Company domain.Company
	User    domain.User
	Token   string
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RegisterCompany creates a company together with its first admin and
// signs them in. Either both rows exist afterwards or neither does.
func (s *AccountService) RegisterCompany(ctx context.Context, companyName, username, password string) (Registration, error) {
	log := slogx.FromContext(ctx)
	username = NormalizeUsername(username)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return Registration{}, err
	}

	now := s.now().UTC()
	company := domain.Company{
		ID:        idx.NewAt(now).String(),
		Name:      companyName,
		CreatedAt: now,
	}
	admin := domain.User{
		ID:           idx.NewAt(now).String(),
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CompanyID:    company.ID,
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Companies().CreateCompany(ctx, company); err != nil {
			return err
		}
		return tx.Users().CreateUser(ctx, admin)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Info("registration conflict",
				slog.String("company_name", companyName),
				slog.String("username", username),
			)
			record(s.Events, "register", "conflict")
			return Registration{}, ErrCompanyOrUserExists
		}
		return Registration{}, err
	}

	token, err := s.Sessions.IssueFor(admin)
	if err != nil {
		return Registration{}, err
	}

	log.Info("company registered",
		slog.String("company_id", company.ID),
		slog.String("user_id", admin.ID),
	)
	record(s.Events, "register", "success")

	return Registration{Company: company, User: admin, Token: token}, nil
}

// NormalizeUsername folds username the same way invitation emails are
// folded, so an address names one account regardless of casing.
func NormalizeUsername(username string) string {
	return NormalizeEmail(username)
}

// dummyHash is compared against when the username is unknown so both
// failure paths cost one bcrypt verification.
var dummyHash = sync.OnceValue(func() string {
	h, err := cryptox.HashPassword("not-a-real-password")
	if err != nil {
		panic(err)
	}
	return h
})

// Login checks credentials and issues a session. Unknown users, wrong
// passwords and disabled accounts all yield ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, username, password string) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_, _ = cryptox.VerifyPassword(password, dummyHash())
			record(s.Events, "login", "invalid_credentials")
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		log.Error("stored password hash is unusable",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		record(s.Events, "login", "invalid_credentials")
		return domain.User{}, "", ErrInvalidCredentials
	}
	if !ok || !user.CanSignIn() {
		log.Info("login rejected", slog.String("user_id", user.ID))
		record(s.Events, "login", "invalid_credentials")
		return domain.User{}, "", ErrInvalidCredentials
	}

	token, err := s.Sessions.IssueFor(user)
	if err != nil {
		return domain.User{}, "", err
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	record(s.Events, "login", "success")
	return user, token, nil
}
