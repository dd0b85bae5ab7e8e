package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/velora-api/internal/domain"
	"github.com/ErlanBelekov/velora-api/internal/i18n"
	"github.com/ErlanBelekov/velora-api/internal/metrics"
	"github.com/ErlanBelekov/velora-api/internal/repository"
	"github.com/ErlanBelekov/velora-api/internal/validation"
)

type ReviewUsecase struct {
	repo repository.ReviewRepository
}

func NewReviewUsecase(repo repository.ReviewRepository) *ReviewUsecase {
	return &ReviewUsecase{repo: repo}
}

type SubmitReviewInput struct {
	Author string
	Text   string
}

func (u *ReviewUsecase) Submit(ctx context.Context, in SubmitReviewInput) (*domain.Review, error) {
	if err := validation.Review(validation.ReviewInput(in)); err != nil {
		return nil, err
	}

	review, err := u.repo.Create(ctx, in.Author, in.Text)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyField) {
			return nil, &validation.Error{Key: i18n.ReviewFieldsRequired}
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	metrics.ReviewsCreatedTotal.Inc()
	return review, nil
}

// ListRecent returns the newest reviews, capped at domain.MaxListedReviews.
func (u *ReviewUsecase) ListRecent(ctx context.Context) ([]*domain.Review, error) {
	reviews, err := u.repo.ListRecent(ctx, domain.MaxListedReviews)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
