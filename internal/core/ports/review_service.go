package ports

import (
	"context"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
)

// ReviewService implements reviews and their comments. Reads are public;
// writes carry the acting user for the object-level policy decision.
type ReviewService interface {
	ListReviews(ctx context.Context, titleID string) ([]*domain.Review, error)
	GetReview(ctx context.Context, titleID, reviewID string) (*domain.Review, error)
	CreateReview(ctx context.Context, actor *domain.User, titleID, text string, score int) (*domain.Review, error)
	UpdateReview(ctx context.Context, actor *domain.User, titleID, reviewID, text string, score int) (*domain.Review, error)
	DeleteReview(ctx context.Context, actor *domain.User, titleID, reviewID string) error

	ListComments(ctx context.Context, titleID, reviewID string) ([]*domain.Comment, error)
	GetComment(ctx context.Context, titleID, reviewID, commentID string) (*domain.Comment, error)
	CreateComment(ctx context.Context, actor *domain.User, titleID, reviewID, text string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, actor *domain.User, titleID, reviewID, commentID, text string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, actor *domain.User, titleID, reviewID, commentID string) error
}
