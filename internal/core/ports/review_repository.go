package ports

import (
	"context"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
)

// ReviewRepository persists reviews. The (title, author) pair is unique;
// the store's compound index is the race guard and Create surfaces a
// concurrent duplicate as domain.ErrReviewExists.
type ReviewRepository interface {
	ListByTitle(ctx context.Context, titleID string) ([]*domain.Review, error)
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	FindByTitleAndAuthor(ctx context.Context, titleID, author string) (*domain.Review, error)
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	Update(ctx context.Context, review *domain.Review) (*domain.Review, error)
	Delete(ctx context.Context, id string) error

	// AverageScore returns the mean score over the title's reviews, or nil
	// when the title has none.
	AverageScore(ctx context.Context, titleID string) (*float64, error)
	// AverageScores batches AverageScore for list endpoints; titles with no
	// reviews are absent from the result map.
	AverageScores(ctx context.Context, titleIDs []string) (map[string]float64, error)
}

// CommentRepository persists comments on reviews.
type CommentRepository interface {
	ListByReview(ctx context.Context, reviewID string) ([]*domain.Comment, error)
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
}
