package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ratingTTL = 15 * time.Minute

	// noReviews marks a title known to have zero reviews, so the absence
	// of reviews is cached just like a mean is.
	noReviews = "none"
)

// RatingCache caches title rating means in Redis.
// Key format: rating:<title_id>
type RatingCache struct {
	client *redis.Client
}

// NewRatingCache creates a RatingCache wrapping the given Redis client.
func NewRatingCache(client *redis.Client) *RatingCache {
	return &RatingCache{client: client}
}

// Get returns the cached mean and whether the key was present. A cached
// zero-review marker is reported as present with a nil mean.
func (c *RatingCache) Get(ctx context.Context, titleID string) (*float64, bool, error) {
	val, err := c.client.Get(ctx, c.key(titleID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("rating cache get: %w", err)
	}
	if val == noReviews {
		return nil, true, nil
	}

	avg, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, false, fmt.Errorf("rating cache parse: %w", err)
	}
	return &avg, true, nil
}

// Set records the current mean (expires after ratingTTL).
func (c *RatingCache) Set(ctx context.Context, titleID string, rating *float64) error {
	val := noReviews
	if rating != nil {
		val = strconv.FormatFloat(*rating, 'g', -1, 64)
	}
	return c.client.Set(ctx, c.key(titleID), val, ratingTTL).Err()
}

// Invalidate drops the entry so the next read recomputes from the store.
func (c *RatingCache) Invalidate(ctx context.Context, titleID string) error {
	return c.client.Del(ctx, c.key(titleID)).Err()
}

func (c *RatingCache) key(titleID string) string {
	return "rating:" + titleID
}
