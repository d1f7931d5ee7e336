package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/reviewdeck/reviewdeck/internal/core/ports"
)

// RatingAggregator resolves a title's rating as the live mean of its
// review scores. A cache may front the aggregation; every cache error
// degrades to the aggregation itself, so a broken cache can slow reads but
// never stale them past an invalidation.
type RatingAggregator struct {
	reviews ports.ReviewRepository
	cache   ports.RatingCache
	log     zerolog.Logger
}

func NewRatingAggregator(reviews ports.ReviewRepository, cache ports.RatingCache, log zerolog.Logger) *RatingAggregator {
	return &RatingAggregator{reviews: reviews, cache: cache, log: log}
}

// Rating returns the mean score for the title, or nil when it has no
// reviews. The value is the exact mean; formatting is the caller's job.
func (a *RatingAggregator) Rating(ctx context.Context, titleID string) (*float64, error) {
	if a.cache != nil {
		if avg, ok, err := a.cache.Get(ctx, titleID); err == nil && ok {
			return avg, nil
		} else if err != nil {
			a.log.Warn().Err(err).Str("title_id", titleID).Msg("rating cache read failed")
		}
	}

	avg, err := a.reviews.AverageScore(ctx, titleID)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, titleID, avg); err != nil {
			a.log.Warn().Err(err).Str("title_id", titleID).Msg("rating cache write failed")
		}
	}
	return avg, nil
}

// Ratings resolves ratings for a batch of titles in one aggregation.
// Titles with no reviews are absent from the result.
func (a *RatingAggregator) Ratings(ctx context.Context, titleIDs []string) (map[string]float64, error) {
	return a.reviews.AverageScores(ctx, titleIDs)
}

// Invalidate must be called after every review mutation for the title so
// the next read recomputes the average.
func (a *RatingAggregator) Invalidate(ctx context.Context, titleID string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Invalidate(ctx, titleID); err != nil {
		a.log.Warn().Err(err).Str("title_id", titleID).Msg("rating cache invalidation failed")
	}
}
