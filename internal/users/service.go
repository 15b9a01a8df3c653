package users

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/cartage-systems/cartage/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Insert(ctx context.Context, username, passwordHash string, isAdmin, canManifest bool) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	SetPassword(ctx context.Context, username, passwordHash string) error
	SetActive(ctx context.Context, username string, active bool) error
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create registers a new account with a bcrypt password hash.
func (s *Service) Create(ctx context.Context, input CreateUserInput) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Insert(ctx, input.Username, string(hash), input.IsAdmin, input.CanManifest)
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, creds.Username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// ChangePassword rehashes and stores a new password.
func (s *Service) ChangePassword(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(ctx, username, string(hash))
}

// SetActive enables or disables an account.
func (s *Service) SetActive(ctx context.Context, username string, active bool) error {
	return s.repo.SetActive(ctx, username, active)
}
