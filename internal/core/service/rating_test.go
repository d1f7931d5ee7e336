package service

import (
	"context"
	"errors"
	"testing"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stub rating cache
// ---------------------------------------------------------------------------

type cachedRating struct {
	avg *float64
}

type stubRatingCache struct {
	entries map[string]cachedRating

	getErr        error
	setErr        error
	invalidateErr error

	gets, sets, invalidations int
}

func newStubRatingCache() *stubRatingCache {
	return &stubRatingCache{entries: make(map[string]cachedRating)}
}

func (c *stubRatingCache) Get(_ context.Context, titleID string) (*float64, bool, error) {
	c.gets++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	entry, ok := c.entries[titleID]
	if !ok {
		return nil, false, nil
	}
	return entry.avg, true, nil
}

func (c *stubRatingCache) Set(_ context.Context, titleID string, avg *float64) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[titleID] = cachedRating{avg: avg}
	return nil
}

func (c *stubRatingCache) Invalidate(_ context.Context, titleID string) error {
	c.invalidations++
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	delete(c.entries, titleID)
	return nil
}

// ---------------------------------------------------------------------------
// Aggregator tests
// ---------------------------------------------------------------------------

func seedRatedTitle(t *testing.T, scores ...int) (*stubReviewRepo, string) {
	t.Helper()
	reviews := newStubReviewRepo()
	for i, score := range scores {
		_, err := reviews.Create(context.Background(), &domain.Review{
			TitleID: "t-1",
			Author:  string(rune('a' + i)),
			Score:   score,
		})
		if err != nil {
			t.Fatalf("seed review: %v", err)
		}
	}
	return reviews, "t-1"
}

func TestRatingAggregator_MeanOfScores(t *testing.T) {
	reviews, titleID := seedRatedTitle(t, 8, 10)
	agg := NewRatingAggregator(reviews, nil, discardLogger)

	avg, err := agg.Rating(context.Background(), titleID)
	if err != nil {
		t.Fatalf("rating: %v", err)
	}
	if avg == nil || *avg != 9 {
		t.Errorf("expected 9, got %v", avg)
	}
}

func TestRatingAggregator_NoReviewsIsNil(t *testing.T) {
	reviews, _ := seedRatedTitle(t)
	agg := NewRatingAggregator(reviews, nil, discardLogger)

	avg, err := agg.Rating(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("rating: %v", err)
	}
	if avg != nil {
		t.Errorf("expected nil rating, got %v", *avg)
	}
}

func TestRatingAggregator_CacheHitSkipsAggregation(t *testing.T) {
	reviews, titleID := seedRatedTitle(t, 4)
	cache := newStubRatingCache()
	nine := 9.0
	cache.entries[titleID] = cachedRating{avg: &nine}
	agg := NewRatingAggregator(reviews, cache, discardLogger)

	avg, err := agg.Rating(context.Background(), titleID)
	if err != nil {
		t.Fatalf("rating: %v", err)
	}
	if avg == nil || *avg != 9 {
		t.Errorf("expected cached 9, got %v", avg)
	}
	if cache.sets != 0 {
		t.Error("cache hit must not rewrite the entry")
	}
}

func TestRatingAggregator_CacheMissPopulatesCache(t *testing.T) {
	reviews, titleID := seedRatedTitle(t, 8, 10)
	cache := newStubRatingCache()
	agg := NewRatingAggregator(reviews, cache, discardLogger)

	if _, err := agg.Rating(context.Background(), titleID); err != nil {
		t.Fatalf("rating: %v", err)
	}
	entry, ok := cache.entries[titleID]
	if !ok || entry.avg == nil || *entry.avg != 9 {
		t.Errorf("aggregated value must be cached, got %+v", entry)
	}
}

func TestRatingAggregator_CachesAbsenceToo(t *testing.T) {
	reviews, _ := seedRatedTitle(t)
	cache := newStubRatingCache()
	agg := NewRatingAggregator(reviews, cache, discardLogger)

	if _, err := agg.Rating(context.Background(), "t-1"); err != nil {
		t.Fatalf("rating: %v", err)
	}
	entry, ok := cache.entries["t-1"]
	if !ok {
		t.Fatal("nil rating must be cached as a miss marker")
	}
	if entry.avg != nil {
		t.Errorf("expected nil entry, got %v", *entry.avg)
	}
}

func TestRatingAggregator_DegradesOnCacheErrors(t *testing.T) {
	reviews, titleID := seedRatedTitle(t, 6)
	cache := newStubRatingCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	agg := NewRatingAggregator(reviews, cache, discardLogger)

	avg, err := agg.Rating(context.Background(), titleID)
	if err != nil {
		t.Fatalf("cache failure must not fail the read: %v", err)
	}
	if avg == nil || *avg != 6 {
		t.Errorf("expected aggregated 6, got %v", avg)
	}
}

func TestRatingAggregator_InvalidateDropsEntry(t *testing.T) {
	reviews, titleID := seedRatedTitle(t, 6)
	cache := newStubRatingCache()
	agg := NewRatingAggregator(reviews, cache, discardLogger)

	if _, err := agg.Rating(context.Background(), titleID); err != nil {
		t.Fatalf("rating: %v", err)
	}
	agg.Invalidate(context.Background(), titleID)
	if _, ok := cache.entries[titleID]; ok {
		t.Error("invalidation must drop the cached entry")
	}
}

func TestRatingAggregator_BatchSkipsUnreviewed(t *testing.T) {
	reviews := newStubReviewRepo()
	for i, r := range []domain.Review{
		{TitleID: "t-1", Author: "a", Score: 8},
		{TitleID: "t-1", Author: "b", Score: 10},
		{TitleID: "t-2", Author: "a", Score: 3},
	} {
		rv := r
		if _, err := reviews.Create(context.Background(), &rv); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	agg := NewRatingAggregator(reviews, nil, discardLogger)

	out, err := agg.Ratings(context.Background(), []string{"t-1", "t-2", "t-3"})
	if err != nil {
		t.Fatalf("ratings: %v", err)
	}
	if out["t-1"] != 9 || out["t-2"] != 3 {
		t.Errorf("unexpected averages: %+v", out)
	}
	if _, ok := out["t-3"]; ok {
		t.Error("unreviewed title must be absent from the batch result")
	}
}
