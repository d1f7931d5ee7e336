package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
	"github.com/reviewdeck/reviewdeck/internal/core/ports"
)

// CatalogService implements categories, genres and titles. Title reads
// attach the derived rating via the aggregator.
type CatalogService struct {
	categories ports.CategoryRepository
	genres     ports.GenreRepository
	titles     ports.TitleRepository
	ratings    *RatingAggregator
	log        zerolog.Logger
}

func NewCatalogService(
	categories ports.CategoryRepository,
	genres ports.GenreRepository,
	titles ports.TitleRepository,
	ratings *RatingAggregator,
	log zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		genres:     genres,
		titles:     titles,
		ratings:    ratings,
		log:        log,
	}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, slug string) (*domain.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if err := domain.ValidateSlug(slug); err != nil {
		return nil, err
	}
	category := &domain.Category{Name: name, Slug: slug}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes the category; dependent titles keep existing with
// a null category.
func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	return s.categories.Delete(ctx, slug)
}

func (s *CatalogService) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	return s.genres.List(ctx)
}

func (s *CatalogService) CreateGenre(ctx context.Context, name, slug string) (*domain.Genre, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if err := domain.ValidateSlug(slug); err != nil {
		return nil, err
	}
	genre := &domain.Genre{Name: name, Slug: slug}
	if err := s.genres.Create(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, slug string) error {
	return s.genres.Delete(ctx, slug)
}

func (s *CatalogService) ListTitles(ctx context.Context) ([]*domain.Title, error) {
	titles, err := s.titles.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(titles))
	for i, t := range titles {
		ids[i] = t.ID
	}
	averages, err := s.ratings.Ratings(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range titles {
		if avg, ok := averages[t.ID]; ok {
			v := avg
			t.Rating = &v
		}
	}
	return titles, nil
}

func (s *CatalogService) GetTitle(ctx context.Context, id string) (*domain.Title, error) {
	title, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if title.Rating, err = s.ratings.Rating(ctx, title.ID); err != nil {
		return nil, err
	}
	return title, nil
}

func (s *CatalogService) CreateTitle(ctx context.Context, in ports.TitleInput) (*domain.Title, error) {
	if err := s.validateTitleInput(ctx, in); err != nil {
		return nil, err
	}
	return s.titles.Create(ctx, &domain.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
		Genres:      in.Genres,
		Category:    in.Category,
		CreatedAt:   time.Now().UTC(),
	})
}

func (s *CatalogService) UpdateTitle(ctx context.Context, id string, in ports.TitleInput) (*domain.Title, error) {
	title, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateTitleInput(ctx, in); err != nil {
		return nil, err
	}

	title.Name = in.Name
	title.Year = in.Year
	title.Description = in.Description
	title.Genres = in.Genres
	title.Category = in.Category
	return s.titles.Update(ctx, title)
}

func (s *CatalogService) DeleteTitle(ctx context.Context, id string) error {
	return s.titles.Delete(ctx, id)
}

// validateTitleInput checks field constraints and that every referenced
// genre and category slug exists.
func (s *CatalogService) validateTitleInput(ctx context.Context, in ports.TitleInput) error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if err := domain.ValidateYear(in.Year, time.Now()); err != nil {
		return err
	}
	for _, slug := range in.Genres {
		if _, err := s.genres.FindBySlug(ctx, slug); err != nil {
			if errors.Is(err, domain.ErrGenreNotFound) {
				return fmt.Errorf("%w: unknown genre %q", domain.ErrValidation, slug)
			}
			return err
		}
	}
	if in.Category != "" {
		if _, err := s.categories.FindBySlug(ctx, in.Category); err != nil {
			if errors.Is(err, domain.ErrCategoryNotFound) {
				return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, in.Category)
			}
			return err
		}
	}
	return nil
}
