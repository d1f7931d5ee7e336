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

const collectionTitles = "titles"

// TitleRepository persists titles. Ratings are never stored here; they are
// derived from the reviews collection on read.
type TitleRepository struct {
	col *mongo.Collection
}

func NewTitleRepository(db *mongo.Database) *TitleRepository {
	return &TitleRepository{col: db.Collection(collectionTitles)}
}

type titleDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Year        int                `bson:"year"`
	Description string             `bson:"description,omitempty"`
	Genres      []string           `bson:"genres,omitempty"`
	Category    string             `bson:"category,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d titleDoc) toDomain() *domain.Title {
	genres := d.Genres
	if genres == nil {
		genres = []string{}
	}
	return &domain.Title{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Year:        d.Year,
		Description: d.Description,
		Genres:      genres,
		Category:    d.Category,
		CreatedAt:   d.CreatedAt,
	}
}

func (r *TitleRepository) List(ctx context.Context) ([]*domain.Title, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	var docs []titleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}

	out := make([]*domain.Title, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *TitleRepository) FindByID(ctx context.Context, id string) (*domain.Title, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTitleNotFound
	}

	var d titleDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTitleNotFound
		}
		return nil, fmt.Errorf("find title: %w", err)
	}
	return d.toDomain(), nil
}

func (r *TitleRepository) Create(ctx context.Context, title *domain.Title) (*domain.Title, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, titleDoc{
		Name:        title.Name,
		Year:        title.Year,
		Description: title.Description,
		Genres:      title.Genres,
		Category:    title.Category,
		CreatedAt:   title.CreatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert title: %w", err)
	}

	created := *title
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *TitleRepository) Update(ctx context.Context, title *domain.Title) (*domain.Title, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(title.ID)
	if err != nil {
		return nil, domain.ErrTitleNotFound
	}

	update := bson.M{"$set": bson.M{
		"name":        title.Name,
		"year":        title.Year,
		"description": title.Description,
		"genres":      title.Genres,
		"category":    title.Category,
	}}
	res, err := r.col.UpdateByID(ctx, oid, update)
	if err != nil {
		return nil, fmt.Errorf("update title: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrTitleNotFound
	}
	return title, nil
}

func (r *TitleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTitleNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTitleNotFound
	}
	return nil
}
