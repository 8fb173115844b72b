package orm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cppla/dualfetch/models"
)

// GetCategories lists categories in display order.
func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("sort_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// GetCategoriesWithPostCount lists categories with the number of published posts in each.
func (s *Store) GetCategoriesWithPostCount(ctx context.Context) ([]models.CategoryWithPostCount, error) {
	var (
		categories []models.Category
		rows       []groupCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.GetCategories(gctx)
		return err
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Post{}).
			Select("category_id AS group_key, COUNT(*) AS total").
			Where("status = ? AND category_id IS NOT NULL", models.PostStatusPublished).
			Group("category_id").
			Scan(&rows).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count posts per category: %w", err)
	}

	counts := countsByKey(rows)
	out := make([]models.CategoryWithPostCount, 0, len(categories))
	for _, c := range categories {
		out = append(out, models.CategoryWithPostCount{Category: c, PostCount: counts[c.ID]})
	}
	return out, nil
}

func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return models.Category{}, notFound("category", err)
	}
	return category, nil
}

// GetCategory loads a category by id, or by slug when idOrSlug is not a UUID.
func (s *Store) GetCategory(ctx context.Context, idOrSlug string) (models.Category, error) {
	if _, err := uuid.Parse(idOrSlug); err != nil {
		return s.GetCategoryBySlug(ctx, idOrSlug)
	}
	var category models.Category
	if err := s.db.WithContext(ctx).Where("id = ?", idOrSlug).First(&category).Error; err != nil {
		return models.Category{}, notFound("category", err)
	}
	return category, nil
}
