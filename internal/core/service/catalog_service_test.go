package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
	"github.com/reviewdeck/reviewdeck/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub slug stores
// ---------------------------------------------------------------------------

type stubCategoryRepo struct {
	categories map[string]*domain.Category
	titles     *stubTitleRepo
}

func newStubCategoryRepo(titles *stubTitleRepo) *stubCategoryRepo {
	return &stubCategoryRepo{categories: make(map[string]*domain.Category), titles: titles}
}

func (r *stubCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	out := make([]*domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubCategoryRepo) FindBySlug(_ context.Context, slug string) (*domain.Category, error) {
	c, ok := r.categories[slug]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	r.categories[category.Slug] = category
	return nil
}

// Delete mirrors the real repo: dependent titles lose the category but
// keep existing.
func (r *stubCategoryRepo) Delete(_ context.Context, slug string) error {
	if _, ok := r.categories[slug]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.categories, slug)
	if r.titles != nil {
		for _, t := range r.titles.titles {
			if t.Category == slug {
				t.Category = ""
			}
		}
	}
	return nil
}

type stubGenreRepo struct {
	genres map[string]*domain.Genre
}

func newStubGenreRepo() *stubGenreRepo {
	return &stubGenreRepo{genres: make(map[string]*domain.Genre)}
}

func (r *stubGenreRepo) List(_ context.Context) ([]*domain.Genre, error) {
	out := make([]*domain.Genre, 0, len(r.genres))
	for _, g := range r.genres {
		clone := *g
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubGenreRepo) FindBySlug(_ context.Context, slug string) (*domain.Genre, error) {
	g, ok := r.genres[slug]
	if !ok {
		return nil, domain.ErrGenreNotFound
	}
	clone := *g
	return &clone, nil
}

func (r *stubGenreRepo) Create(_ context.Context, genre *domain.Genre) error {
	r.genres[genre.Slug] = genre
	return nil
}

func (r *stubGenreRepo) Delete(_ context.Context, slug string) error {
	if _, ok := r.genres[slug]; !ok {
		return domain.ErrGenreNotFound
	}
	delete(r.genres, slug)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type catalogFixture struct {
	svc        *CatalogService
	categories *stubCategoryRepo
	genres     *stubGenreRepo
	titles     *stubTitleRepo
	reviews    *stubReviewRepo
}

func newCatalogFixture() *catalogFixture {
	titles := newStubTitleRepo()
	categories := newStubCategoryRepo(titles)
	genres := newStubGenreRepo()
	reviews := newStubReviewRepo()
	ratings := NewRatingAggregator(reviews, nil, discardLogger)
	return &catalogFixture{
		svc:        NewCatalogService(categories, genres, titles, ratings, discardLogger),
		categories: categories,
		genres:     genres,
		titles:     titles,
		reviews:    reviews,
	}
}

func (f *catalogFixture) seedSlugs(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.CreateCategory(ctx, "Books", "books"); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	if _, err := f.svc.CreateGenre(ctx, "Sci-Fi", "sci-fi"); err != nil {
		t.Fatalf("seed genre: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Category / genre tests
// ---------------------------------------------------------------------------

func TestCatalogService_CreateCategory_BadSlug(t *testing.T) {
	f := newCatalogFixture()

	for _, slug := range []string{"", "has spaces", "ünïcode", "slash/slash"} {
		if _, err := f.svc.CreateCategory(context.Background(), "Name", slug); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("slug %q: expected ErrValidation, got %v", slug, err)
		}
	}
}

func TestCatalogService_CreateGenre_MissingName(t *testing.T) {
	f := newCatalogFixture()

	if _, err := f.svc.CreateGenre(context.Background(), "", "slug"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestCatalogService_DeleteCategory_DetachesTitles(t *testing.T) {
	f := newCatalogFixture()
	f.seedSlugs(t)
	ctx := context.Background()

	title, err := f.svc.CreateTitle(ctx, ports.TitleInput{Name: "Dune", Year: 1965, Category: "books"})
	if err != nil {
		t.Fatalf("create title: %v", err)
	}

	if err := f.svc.DeleteCategory(ctx, "books"); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	got, err := f.titles.FindByID(ctx, title.ID)
	if err != nil {
		t.Fatalf("title must survive category deletion: %v", err)
	}
	if got.Category != "" {
		t.Errorf("title must be detached from the deleted category, got %q", got.Category)
	}
}

// ---------------------------------------------------------------------------
// Title tests
// ---------------------------------------------------------------------------

func TestCatalogService_CreateTitle_ValidatesReferences(t *testing.T) {
	f := newCatalogFixture()
	f.seedSlugs(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   ports.TitleInput
	}{
		{"missing name", ports.TitleInput{Year: 2000}},
		{"future year", ports.TitleInput{Name: "X", Year: time.Now().Year() + 1}},
		{"unknown genre", ports.TitleInput{Name: "X", Year: 2000, Genres: []string{"nope"}}},
		{"unknown category", ports.TitleInput{Name: "X", Year: 2000, Category: "nope"}},
	}
	for _, tc := range cases {
		if _, err := f.svc.CreateTitle(ctx, tc.in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestCatalogService_CreateTitle_Success(t *testing.T) {
	f := newCatalogFixture()
	f.seedSlugs(t)

	title, err := f.svc.CreateTitle(context.Background(), ports.TitleInput{
		Name:     "Dune",
		Year:     1965,
		Genres:   []string{"sci-fi"},
		Category: "books",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title.ID == "" {
		t.Error("created title must have an id")
	}
	if title.Rating != nil {
		t.Error("fresh title must carry no rating")
	}
}

func TestCatalogService_GetTitle_AttachesRating(t *testing.T) {
	f := newCatalogFixture()
	f.seedSlugs(t)
	ctx := context.Background()

	title, err := f.svc.CreateTitle(ctx, ports.TitleInput{Name: "Dune", Year: 1965})
	if err != nil {
		t.Fatalf("create title: %v", err)
	}

	got, err := f.svc.GetTitle(ctx, title.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Rating != nil {
		t.Errorf("expected nil rating, got %v", *got.Rating)
	}

	for _, r := range []domain.Review{
		{TitleID: title.ID, Author: "a", Score: 8},
		{TitleID: title.ID, Author: "b", Score: 10},
	} {
		rv := r
		if _, err := f.reviews.Create(ctx, &rv); err != nil {
			t.Fatalf("seed review: %v", err)
		}
	}

	got, err = f.svc.GetTitle(ctx, title.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Rating == nil || *got.Rating != 9 {
		t.Errorf("expected rating 9, got %v", got.Rating)
	}
}

func TestCatalogService_ListTitles_BatchRatings(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	rated, err := f.svc.CreateTitle(ctx, ports.TitleInput{Name: "Rated", Year: 2000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.CreateTitle(ctx, ports.TitleInput{Name: "Unrated", Year: 2001}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.reviews.Create(ctx, &domain.Review{TitleID: rated.ID, Author: "a", Score: 7}); err != nil {
		t.Fatalf("seed review: %v", err)
	}

	titles, err := f.svc.ListTitles(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(titles) != 2 {
		t.Fatalf("expected 2 titles, got %d", len(titles))
	}
	for _, title := range titles {
		switch title.Name {
		case "Rated":
			if title.Rating == nil || *title.Rating != 7 {
				t.Errorf("rated title: expected 7, got %v", title.Rating)
			}
		case "Unrated":
			if title.Rating != nil {
				t.Errorf("unrated title: expected nil, got %v", *title.Rating)
			}
		}
	}
}

func TestCatalogService_UpdateTitle_NotFound(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.svc.UpdateTitle(context.Background(), "missing", ports.TitleInput{Name: "X", Year: 2000})
	if !errors.Is(err, domain.ErrTitleNotFound) {
		t.Errorf("expected ErrTitleNotFound, got %v", err)
	}
}
