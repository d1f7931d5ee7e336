package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
)

const (
	collectionReviews  = "reviews"
	collectionComments = "comments"
)

// ReviewRepository persists reviews. The compound unique index on
// (title_id, author) is the single race guard for the
// one-review-per-author-per-title invariant: of N concurrent creates only
// the first insert wins, and every loser surfaces domain.ErrReviewExists.
type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection(collectionReviews)}
}

type reviewDoc struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	TitleID string             `bson:"title_id"`
	Author  string             `bson:"author"`
	Text    string             `bson:"text"`
	Score   int                `bson:"score"`
	PubDate time.Time          `bson:"pub_date"`
}

func (d reviewDoc) toDomain() *domain.Review {
	return &domain.Review{
		ID:      d.ID.Hex(),
		TitleID: d.TitleID,
		Author:  d.Author,
		Text:    d.Text,
		Score:   d.Score,
		PubDate: d.PubDate,
	}
}

func (r *ReviewRepository) ListByTitle(ctx context.Context, titleID string) ([]*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"title_id": titleID},
		options.Find().SetSort(bson.D{{Key: "pub_date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	var docs []reviewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	out := make([]*domain.Review, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrReviewNotFound
	}

	var d reviewDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return d.toDomain(), nil
}

func (r *ReviewRepository) FindByTitleAndAuthor(ctx context.Context, titleID, author string) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d reviewDoc
	err := r.col.FindOne(ctx, bson.M{"title_id": titleID, "author": author}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review by author: %w", err)
	}
	return d.toDomain(), nil
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, reviewDoc{
		TitleID: review.TitleID,
		Author:  review.Author,
		Text:    review.Text,
		Score:   review.Score,
		PubDate: review.PubDate.UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrReviewExists
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}

	created := *review
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(review.ID)
	if err != nil {
		return nil, domain.ErrReviewNotFound
	}

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"text":  review.Text,
		"score": review.Score,
	}})
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrReviewNotFound
	}
	return review, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrReviewNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

// AverageScore computes the live mean score for one title, nil when the
// title has no reviews.
func (r *ReviewRepository) AverageScore(ctx context.Context, titleID string) (*float64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"title_id": titleID}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id": nil,
			"avg": bson.M{"$avg": "$score"},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("average score: %w", err)
	}

	var out []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("average score: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0].Avg, nil
}

// AverageScores batches the aggregation across titles. Titles with no
// reviews do not appear in the result.
func (r *ReviewRepository) AverageScores(ctx context.Context, titleIDs []string) (map[string]float64, error) {
	if len(titleIDs) == 0 {
		return map[string]float64{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"title_id": bson.M{"$in": titleIDs}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id": "$title_id",
			"avg": bson.M{"$avg": "$score"},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("average scores: %w", err)
	}

	var out []struct {
		TitleID string  `bson:"_id"`
		Avg     float64 `bson:"avg"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("average scores: %w", err)
	}

	averages := make(map[string]float64, len(out))
	for _, row := range out {
		averages[row.TitleID] = row.Avg
	}
	return averages, nil
}

// EnsureIndexes creates the compound unique constraint behind the
// one-review-per-author-per-title invariant.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "title_id", Value: 1},
				{Key: "author", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("title_author_unique"),
		},
		{Keys: bson.D{{Key: "title_id", Value: 1}, {Key: "pub_date", Value: 1}}},
	})
	return err
}
