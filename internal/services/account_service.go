package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finanzas/internal/auth"
	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// AccountService handles registration, login and profile lookups.
type AccountService struct {
	storage    *storage.SQLiteRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

func NewAccountService(storage *storage.SQLiteRepository, tokens *auth.TokenManager, bcryptCost int) *AccountService {
	return &AccountService{
		storage:    storage,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new account with a hashed password.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (core.User, error) {
	u := core.User{
		Name:  strings.TrimSpace(name),
		Email: strings.ToLower(strings.TrimSpace(email)),
	}
	if err := u.ValidateRegistration(password); err != nil {
		return core.User{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash

	return s.storage.CreateUser(ctx, u)
}

// Login verifies the credentials and issues a bearer token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, core.User, error) {
	u, err := s.storage.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, core.ErrNotFound) {
		return "", core.User{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return "", core.User{}, fmt.Errorf("look up user: %w", err)
	}

	if !auth.CheckPassword(password, u.PasswordHash) {
		return "", core.User{}, core.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", core.User{}, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// Profile returns the account for an authenticated user.
func (s *AccountService) Profile(ctx context.Context, userID int64) (core.User, error) {
	return s.storage.GetUserByID(ctx, userID)
}
