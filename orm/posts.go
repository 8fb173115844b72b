package orm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/cppla/dualfetch/models"
)

func withPostRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Category").Preload("Tags.Tag")
}

// filteredPosts applies every PostQuery filter except pagination and ordering.
func (s *Store) filteredPosts(ctx context.Context, q models.PostQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.Post{})
	if q.FiltersStatus() {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.AuthorID != "" {
		tx = tx.Where("author_id = ?", q.AuthorID)
	}
	if q.CategorySlug != "" {
		sub := s.db.Model(&models.Category{}).Select("id").Where("slug = ?", q.CategorySlug)
		tx = tx.Where("category_id IN (?)", sub)
	}
	if q.TagSlug != "" {
		sub := s.db.Table("post_tags").
			Select("post_tags.post_id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.slug = ?", q.TagSlug)
		tx = tx.Where("id IN (?)", sub)
	}
	if q.Search != "" {
		p := likePattern(q.Search)
		tx = tx.Where(
			"LOWER(title) LIKE ? ESCAPE '!' OR LOWER(content) LIKE ? ESCAPE '!' OR LOWER(COALESCE(excerpt, '')) LIKE ? ESCAPE '!'",
			p, p, p,
		)
	}
	return tx
}

// GetPosts returns one page of posts matching q. A page past the end is empty but keeps
// the totals; a category or tag slug that matches nothing yields an empty page.
func (s *Store) GetPosts(ctx context.Context, q models.PostQuery) (models.PaginatedResult[models.PostWithRelations], error) {
	q = q.Normalize(models.DefaultPageSize)

	var (
		total int64
		posts []models.Post
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.filteredPosts(gctx, q).Count(&total).Error
	})
	g.Go(func() error {
		order := fmt.Sprintf("%s %s, id %s", q.OrderBy.Column(), q.Order, q.Order)
		return withPostRelations(s.filteredPosts(gctx, q)).
			Order(order).
			Offset(q.Offset()).
			Limit(q.PageSize).
			Find(&posts).Error
	})
	if err := g.Wait(); err != nil {
		return models.PaginatedResult[models.PostWithRelations]{}, fmt.Errorf("list posts: %w", err)
	}

	return models.NewPage(shapePosts(posts), total, q.Page, q.PageSize), nil
}

func shapePosts(posts []models.Post) []models.PostWithRelations {
	out := make([]models.PostWithRelations, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.WithRelations())
	}
	return out
}

// GetPost loads a post by id, or by slug when idOrSlug is not a UUID.
func (s *Store) GetPost(ctx context.Context, idOrSlug string) (models.PostWithRelations, error) {
	if _, err := uuid.Parse(idOrSlug); err != nil {
		return s.GetPostBySlug(ctx, idOrSlug)
	}
	var post models.Post
	if err := withPostRelations(s.db.WithContext(ctx)).Where("id = ?", idOrSlug).First(&post).Error; err != nil {
		return models.PostWithRelations{}, notFound("post", err)
	}
	return post.WithRelations(), nil
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (models.PostWithRelations, error) {
	var post models.Post
	if err := withPostRelations(s.db.WithContext(ctx)).Where("slug = ?", slug).First(&post).Error; err != nil {
		return models.PostWithRelations{}, notFound("post", err)
	}
	return post.WithRelations(), nil
}

// IncrementViewCount bumps view_count by one in a single statement.
func (s *Store) IncrementViewCount(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment view count: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	return nil
}

// loadPostsInOrder fetches posts by id and returns them in the order of ids.
func (s *Store) loadPostsInOrder(ctx context.Context, ids []string) ([]models.PostWithRelations, error) {
	if len(ids) == 0 {
		return []models.PostWithRelations{}, nil
	}
	var posts []models.Post
	if err := withPostRelations(s.db.WithContext(ctx)).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	out := make([]models.PostWithRelations, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p.WithRelations())
		}
	}
	return out, nil
}
