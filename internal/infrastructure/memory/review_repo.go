package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ErlanBelekov/velora-api/internal/domain"
	"github.com/google/uuid"
)

type storedReview struct {
	review domain.Review
	seq    uint64
}

type ReviewRepository struct {
	mu    sync.RWMutex
	items []storedReview
	seq   uint64
	now   func() time.Time
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{now: func() time.Time { return time.Now().UTC() }}
}

func (r *ReviewRepository) Create(_ context.Context, author, text string) (*domain.Review, error) {
	author, text, err := domain.NormalizeReview(author, text)
	if err != nil {
		return nil, err
	}

	rv := domain.Review{
		ID:        uuid.NewString(),
		Author:    author,
		Text:      text,
		CreatedAt: r.now(),
	}

	r.mu.Lock()
	r.seq++
	r.items = append(r.items, storedReview{review: rv, seq: r.seq})
	r.mu.Unlock()

	return &rv, nil
}

// ListRecent orders by creation time, breaking ties by insertion order.
func (r *ReviewRepository) ListRecent(_ context.Context, limit int) ([]*domain.Review, error) {
	r.mu.RLock()
	sorted := make([]storedReview, len(r.items))
	copy(sorted, r.items)
	r.mu.RUnlock()

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.review.CreatedAt.Equal(b.review.CreatedAt) {
			return a.review.CreatedAt.After(b.review.CreatedAt)
		}
		return a.seq > b.seq
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]*domain.Review, 0, len(sorted))
	for i := range sorted {
		rv := sorted[i].review
		out = append(out, &rv)
	}
	return out, nil
}
