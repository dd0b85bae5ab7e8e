// Package memory provides process-local stores for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ErlanBelekov/velora-api/internal/domain"
	"github.com/google/uuid"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // normalized email -> id
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, name, email, passwordHash string) (*domain.User, error) {
	name, email, err := domain.NormalizeUser(name, email)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// The check and the insert share one critical section, like a unique index.
	if _, taken := r.byEmail[u.Email]; taken {
		return nil, domain.ErrDuplicateEmail
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID

	return &u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	u, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	u.PasswordHash = ""
	return &u, nil
}

func (r *UserRepository) Ping(context.Context) error { return nil }
