package users

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/IvanGD/engine-diagnostic-site/internal/application"
	domain "github.com/IvanGD/engine-diagnostic-site/internal/domain/users"
)

// Service implements the identity use-cases: registration, login and session
// issuance. It only ever hands an owner id to the rest of the system.
type Service struct {
	Repo     domain.Repository
	Sessions *SessionStore
	Clock    application.Clock
}

// Register stores a new user with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &domain.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if password == "" {
		return nil, &domain.ValidationError{Field: "password", Reason: "must not be empty"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.Clock.Now().UTC(),
	}
	id, err := s.Repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	u.ID = id
	return u, nil
}

// Login verifies the password and issues a session token. Unknown username
// and wrong password collapse into the same ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.Repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	return s.Sessions.Issue(u.ID), nil
}

// Logout revokes the session token. Revoking an unknown token is a no-op.
func (s *Service) Logout(token string) {
	s.Sessions.Revoke(token)
}
