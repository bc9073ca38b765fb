package users

import (
	"context"
	"strings"

	"exercisehub/internal/apperrors"
	"exercisehub/internal/models"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6
	// MaxPasswordBytes is the longest password bcrypt will hash.
	MaxPasswordBytes = 72
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, username, password string) (models.User, error)
	Authenticate(ctx context.Context, username, password string) (models.User, error)
}

// Service exposes user-related workflows.
type Service interface {
	Signup(ctx context.Context, username, password string) (models.User, error)
	Authenticate(ctx context.Context, username, password string) (models.User, error)
}

type service struct {
	store Store
}

// New wires a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Signup(ctx context.Context, username, password string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	username = strings.TrimSpace(username)
	if n := len([]rune(username)); n < MinUsernameLength || n > MaxUsernameLength {
		return models.User{}, apperrors.Validation("Username must be between 3 and 50 characters")
	}
	if len([]rune(password)) < MinPasswordLength {
		return models.User{}, apperrors.Validation("Password must be at least 6 characters")
	}
	if len(password) > MaxPasswordBytes {
		return models.User{}, apperrors.Validation("Password must be at most 72 bytes")
	}
	return s.store.CreateUser(ctx, username, password)
}

func (s *service) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	return s.store.Authenticate(ctx, username, password)
}
