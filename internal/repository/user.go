package repository

import (
	"context"

	"github.com/ErlanBelekov/velora-api/internal/domain"
)

// UserRepository persists credentials. Implementations own the email
// uniqueness guarantee: Create must fail with domain.ErrDuplicateEmail when
// another user already holds the normalized email, even under concurrent
// registrations.
type UserRepository interface {
	Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns the user without its password hash.
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
