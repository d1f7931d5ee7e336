package ports

import (
	"context"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
)

// TitleInput carries the writable fields of a title. Genres and Category
// reference existing slugs.
type TitleInput struct {
	Name        string
	Year        int
	Description string
	Genres      []string
	Category    string
}

// CatalogService implements the title/genre/category surface. Writes are
// admin-gated at the request level; reads attach the derived rating.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, name, slug string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, slug string) error

	ListGenres(ctx context.Context) ([]*domain.Genre, error)
	CreateGenre(ctx context.Context, name, slug string) (*domain.Genre, error)
	DeleteGenre(ctx context.Context, slug string) error

	ListTitles(ctx context.Context) ([]*domain.Title, error)
	GetTitle(ctx context.Context, id string) (*domain.Title, error)
	CreateTitle(ctx context.Context, in TitleInput) (*domain.Title, error)
	UpdateTitle(ctx context.Context, id string, in TitleInput) (*domain.Title, error)
	DeleteTitle(ctx context.Context, id string) error
}
