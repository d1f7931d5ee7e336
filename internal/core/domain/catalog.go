package domain

import (
	"fmt"
	"regexp"
	"time"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Category groups titles; a title belongs to at most one category.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Genre tags titles; a title can carry any number of genres.
type Genre struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Title is a reviewable work. Rating is derived from the live review set
// and is nil while the title has no reviews.
type Title struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Year        int       `json:"year"`
	Description string    `json:"description,omitempty"`
	Genres      []string  `json:"genre"`
	Category    string    `json:"category,omitempty"`
	Rating      *float64  `json:"rating"`
	CreatedAt   time.Time `json:"-"`
}

// ValidateSlug checks the lookup-key rules shared by categories and genres.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%w: slug is required", ErrValidation)
	}
	if len(slug) > 50 {
		return fmt.Errorf("%w: slug exceeds 50 characters", ErrValidation)
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: slug may only contain letters, digits, hyphens and underscores", ErrValidation)
	}
	return nil
}

// ValidateYear rejects release years in the future.
func ValidateYear(year int, now time.Time) error {
	if year <= 0 || year > now.Year() {
		return fmt.Errorf("%w: year %d is out of range", ErrValidation, year)
	}
	return nil
}
