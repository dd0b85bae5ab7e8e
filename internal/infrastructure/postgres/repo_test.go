package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ErlanBelekov/velora-api/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// These cases return before any query, so no pool is needed.

func TestUserRepository_FindByIDMalformedIsNotFound(t *testing.T) {
	repo := NewUserRepository(nil)

	for _, id := range []string{"", "not-a-uuid", "65f1c0ffee0000000000abcd"} {
		if _, err := repo.FindByID(context.Background(), id); !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("%q: want ErrUserNotFound, got %v", id, err)
		}
	}
}

func TestUserRepository_CreateRejectsBlankName(t *testing.T) {
	_, err := NewUserRepository(nil).Create(context.Background(), "   ", "a@b.co", "hash")
	if !errors.Is(err, domain.ErrEmptyField) {
		t.Fatalf("want ErrEmptyField, got %v", err)
	}
}

func TestReviewRepository_CreateRejectsBlankFields(t *testing.T) {
	_, err := NewReviewRepository(nil).Create(context.Background(), "  ", "          ")
	if !errors.Is(err, domain.ErrEmptyField) {
		t.Fatalf("want ErrEmptyField, got %v", err)
	}
}

func TestPgCode(t *testing.T) {
	wrapped := fmt.Errorf("scan user: %w", &pgconn.PgError{Code: checkViolation})
	if got := pgCode(wrapped); got != checkViolation {
		t.Errorf("pgCode = %q, want %q", got, checkViolation)
	}
	if got := pgCode(errors.New("boom")); got != "" {
		t.Errorf("pgCode = %q, want empty", got)
	}
}
