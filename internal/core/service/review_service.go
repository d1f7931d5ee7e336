package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
	"github.com/reviewdeck/reviewdeck/internal/core/policy"
	"github.com/reviewdeck/reviewdeck/internal/core/ports"
)

// ReviewService implements reviews and their comments. Creation enforces
// the one-review-per-author-per-title invariant; updates and deletes run
// the object-level policy decision against the loaded resource.
type ReviewService struct {
	titles   ports.TitleRepository
	reviews  ports.ReviewRepository
	comments ports.CommentRepository
	ratings  *RatingAggregator
	bounds   domain.ScoreBounds
	log      zerolog.Logger
}

func NewReviewService(
	titles ports.TitleRepository,
	reviews ports.ReviewRepository,
	comments ports.CommentRepository,
	ratings *RatingAggregator,
	bounds domain.ScoreBounds,
	log zerolog.Logger,
) *ReviewService {
	if bounds.Min == 0 && bounds.Max == 0 {
		bounds = domain.DefaultScoreBounds
	}
	return &ReviewService{
		titles:   titles,
		reviews:  reviews,
		comments: comments,
		ratings:  ratings,
		bounds:   bounds,
		log:      log,
	}
}

func (s *ReviewService) ListReviews(ctx context.Context, titleID string) ([]*domain.Review, error) {
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, err
	}
	return s.reviews.ListByTitle(ctx, titleID)
}

func (s *ReviewService) GetReview(ctx context.Context, titleID, reviewID string) (*domain.Review, error) {
	return s.loadReview(ctx, titleID, reviewID)
}

// CreateReview adds the actor's review of a title. The existence pre-check
// yields the friendly duplicate message; the store's compound unique index
// on (title, author) is what actually loses the race for concurrent
// submissions, and its violation maps to the same conflict.
func (s *ReviewService) CreateReview(ctx context.Context, actor *domain.User, titleID, text string, score int) (*domain.Review, error) {
	if err := s.bounds.Validate(score); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, err
	}

	if _, err := s.reviews.FindByTitleAndAuthor(ctx, titleID, actor.Username); err == nil {
		return nil, domain.ErrReviewExists
	} else if !errors.Is(err, domain.ErrReviewNotFound) {
		return nil, err
	}

	review, err := s.reviews.Create(ctx, &domain.Review{
		TitleID: titleID,
		Author:  actor.Username,
		Text:    text,
		Score:   score,
		PubDate: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.ratings.Invalidate(ctx, titleID)
	s.log.Info().Str("title_id", titleID).Str("author", actor.Username).Msg("review created")
	return review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, actor *domain.User, titleID, reviewID, text string, score int) (*domain.Review, error) {
	review, err := s.loadReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if !policy.AllowedObject(actor, policy.Write, review.Author) {
		return nil, domain.ErrForbidden
	}
	if err := s.bounds.Validate(score); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}

	review.Text = text
	review.Score = score
	if review, err = s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}

	s.ratings.Invalidate(ctx, titleID)
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, actor *domain.User, titleID, reviewID string) error {
	review, err := s.loadReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if !policy.AllowedObject(actor, policy.Write, review.Author) {
		return domain.ErrForbidden
	}
	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		return err
	}

	s.ratings.Invalidate(ctx, titleID)
	return nil
}

func (s *ReviewService) ListComments(ctx context.Context, titleID, reviewID string) ([]*domain.Comment, error) {
	review, err := s.loadReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	return s.comments.ListByReview(ctx, review.ID)
}

func (s *ReviewService) GetComment(ctx context.Context, titleID, reviewID, commentID string) (*domain.Comment, error) {
	return s.loadComment(ctx, titleID, reviewID, commentID)
}

func (s *ReviewService) CreateComment(ctx context.Context, actor *domain.User, titleID, reviewID, text string) (*domain.Comment, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	review, err := s.loadReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	return s.comments.Create(ctx, &domain.Comment{
		ReviewID: review.ID,
		Author:   actor.Username,
		Text:     text,
		PubDate:  time.Now().UTC(),
	})
}

func (s *ReviewService) UpdateComment(ctx context.Context, actor *domain.User, titleID, reviewID, commentID, text string) (*domain.Comment, error) {
	comment, err := s.loadComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if !policy.AllowedObject(actor, policy.Write, comment.Author) {
		return nil, domain.ErrForbidden
	}
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}

	comment.Text = text
	return s.comments.Update(ctx, comment)
}

func (s *ReviewService) DeleteComment(ctx context.Context, actor *domain.User, titleID, reviewID, commentID string) error {
	comment, err := s.loadComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if !policy.AllowedObject(actor, policy.Write, comment.Author) {
		return domain.ErrForbidden
	}
	return s.comments.Delete(ctx, comment.ID)
}

// loadReview resolves a review and checks it belongs to the title in the
// path; a mismatch is indistinguishable from absence.
func (s *ReviewService) loadReview(ctx context.Context, titleID, reviewID string) (*domain.Review, error) {
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, err
	}
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.TitleID != titleID {
		return nil, domain.ErrReviewNotFound
	}
	return review, nil
}

func (s *ReviewService) loadComment(ctx context.Context, titleID, reviewID, commentID string) (*domain.Comment, error) {
	review, err := s.loadReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.ReviewID != review.ID {
		return nil, domain.ErrCommentNotFound
	}
	return comment, nil
}
