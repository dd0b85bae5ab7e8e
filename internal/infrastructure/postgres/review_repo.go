package postgres

import (
	"context"
	"fmt"

	"github.com/ErlanBelekov/velora-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

func (r *ReviewRepository) Create(ctx context.Context, author, text string) (*domain.Review, error) {
	author, text, err := domain.NormalizeReview(author, text)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO reviews (author, text)
		VALUES ($1, $2)
		RETURNING id::text, author, text, created_at`

	var rv domain.Review
	err = r.pool.QueryRow(ctx, query, author, text).
		Scan(&rv.ID, &rv.Author, &rv.Text, &rv.CreatedAt)
	if err != nil {
		if pgCode(err) == checkViolation {
			return nil, domain.ErrEmptyField
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return &rv, nil
}

func (r *ReviewRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Review, error) {
	query := `
		SELECT id::text, author, text, created_at
		FROM reviews
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Review, error) {
		var rv domain.Review
		if err := row.Scan(&rv.ID, &rv.Author, &rv.Text, &rv.CreatedAt); err != nil {
			return nil, err
		}
		return &rv, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan reviews: %w", err)
	}
	return reviews, nil
}
