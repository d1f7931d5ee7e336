package ports

import "context"

// RatingCache fronts the rating aggregation. Implementations may fail
// softly: callers fall back to the aggregation on any cache error.
type RatingCache interface {
	// Get returns the cached mean and whether it was present. A cached
	// "no reviews" marker is reported as (nil, true, nil).
	Get(ctx context.Context, titleID string) (*float64, bool, error)
	Set(ctx context.Context, titleID string, rating *float64) error
	// Invalidate drops the entry after any review mutation so the next
	// read recomputes the live average.
	Invalidate(ctx context.Context, titleID string) error
}
