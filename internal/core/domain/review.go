package domain

import (
	"fmt"
	"time"
)

// ScoreBounds is the configured inclusive range a review score must fall in.
type ScoreBounds struct {
	Min int
	Max int
}

// DefaultScoreBounds matches the public API contract (1..10).
var DefaultScoreBounds = ScoreBounds{Min: 1, Max: 10}

// Validate checks a score against the bounds.
func (b ScoreBounds) Validate(score int) error {
	if score < b.Min || score > b.Max {
		return fmt.Errorf("%w: score must be between %d and %d", ErrValidation, b.Min, b.Max)
	}
	return nil
}

// Review is a single user's verdict on a title. At most one review may
// exist per (author, title) pair; the store enforces this with a compound
// unique index.
type Review struct {
	ID      string    `json:"id"`
	TitleID string    `json:"-"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

// Comment is a remark on a review. No uniqueness constraint applies.
type Comment struct {
	ID       string    `json:"id"`
	ReviewID string    `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
}
