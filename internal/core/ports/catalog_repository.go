package ports

import (
	"context"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
)

// CategoryRepository persists categories, keyed by slug.
type CategoryRepository interface {
	List(ctx context.Context) ([]*domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) error
	// Delete removes the category and nulls the category of dependent
	// titles (no cascade).
	Delete(ctx context.Context, slug string) error
}

// GenreRepository persists genres, keyed by slug.
type GenreRepository interface {
	List(ctx context.Context) ([]*domain.Genre, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Genre, error)
	Create(ctx context.Context, genre *domain.Genre) error
	Delete(ctx context.Context, slug string) error
}

// TitleRepository persists titles. Rating is never stored; it is derived
// from the review set on read.
type TitleRepository interface {
	List(ctx context.Context) ([]*domain.Title, error)
	FindByID(ctx context.Context, id string) (*domain.Title, error)
	Create(ctx context.Context, title *domain.Title) (*domain.Title, error)
	Update(ctx context.Context, title *domain.Title) (*domain.Title, error)
	Delete(ctx context.Context, id string) error
}
