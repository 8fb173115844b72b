package rest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cppla/dualfetch/models"
)

// maxParallelCounts bounds the HEAD requests issued at once for per-category counts.
const maxParallelCounts = 4

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []CategoryRow
	_, err := s.c.From("categories").
		Select(categoryColumns).
		Order("sort_order", true).
		Order("name", true).
		Execute(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]models.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, toCategory(r))
	}
	return out, nil
}

// GetCategory loads a category by id, or by slug when idOrSlug is not a UUID.
func (s *Store) GetCategory(ctx context.Context, idOrSlug string) (models.Category, error) {
	field := "slug"
	if _, err := uuid.Parse(idOrSlug); err == nil {
		field = "id"
	}
	var row CategoryRow
	if _, err := s.c.From("categories").Select(categoryColumns).Eq(field, idOrSlug).Single().Execute(ctx, &row); err != nil {
		return models.Category{}, fmt.Errorf("load category: %w", err)
	}
	return toCategory(row), nil
}

// ListCategoriesWithPostCount counts the published posts of each category with one HEAD
// request per category.
func (s *Store) ListCategoriesWithPostCount(ctx context.Context) ([]models.CategoryWithPostCount, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.CategoryWithPostCount, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelCounts)
	for i, c := range categories {
		out[i].Category = c
		g.Go(func() error {
			n, err := s.c.From("posts").
				Eq("category_id", c.ID).
				Eq("status", models.PostStatusPublished).
				Count(gctx)
			if err != nil {
				return fmt.Errorf("count posts in %s: %w", c.Slug, err)
			}
			out[i].PostCount = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListTags(ctx context.Context) ([]models.Tag, error) {
	var rows []TagRow
	if _, err := s.c.From("tags").Select(tagColumns).Order("name", true).Execute(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	out := make([]models.Tag, 0, len(rows))
	for _, r := range rows {
		out = append(out, toTag(r))
	}
	return out, nil
}
