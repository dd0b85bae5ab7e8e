package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/ErlanBelekov/velora-api/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type reviewDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Author    string        `bson:"author"`
	Text      string        `bson:"text"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (d *reviewDocument) toDomain() *domain.Review {
	return &domain.Review{
		ID:        d.ID.Hex(),
		Author:    d.Author,
		Text:      d.Text,
		CreatedAt: d.CreatedAt,
	}
}

type ReviewRepository struct {
	coll *mongo.Collection
}

func (r *ReviewRepository) Create(ctx context.Context, author, text string) (*domain.Review, error) {
	author, text, err := domain.NormalizeReview(author, text)
	if err != nil {
		return nil, err
	}

	doc := reviewDocument{
		ID:        bson.NewObjectID(),
		Author:    author,
		Text:      text,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReviewRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Review, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}

	var docs []reviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}

	out := make([]*domain.Review, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}
