package repository

import (
	"context"

	"github.com/ErlanBelekov/velora-api/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, author, text string) (*domain.Review, error)
	// ListRecent returns at most limit reviews, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.Review, error)
}
