package orm

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cppla/dualfetch/models"
)

// GetPostStats collects the home page counters, one query each, run concurrently.
func (s *Store) GetPostStats(ctx context.Context) (models.PostStats, error) {
	var st models.PostStats
	g, gctx := errgroup.WithContext(ctx)

	countPosts := func(dst *int64, status models.PostStatus) {
		g.Go(func() error {
			tx := s.db.WithContext(gctx).Model(&models.Post{})
			if status != "" {
				tx = tx.Where("status = ?", status)
			}
			return tx.Count(dst).Error
		})
	}
	countPosts(&st.TotalPosts, "")
	countPosts(&st.PublishedPosts, models.PostStatusPublished)
	countPosts(&st.DraftPosts, models.PostStatusDraft)
	countPosts(&st.ArchivedPosts, models.PostStatusArchived)

	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Post{}).
			Select("COALESCE(SUM(view_count), 0)").
			Scan(&st.TotalViews).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Comment{}).Count(&st.TotalComments).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Category{}).Count(&st.TotalCategories).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Tag{}).Count(&st.TotalTags).Error
	})

	if err := g.Wait(); err != nil {
		return models.PostStats{}, fmt.Errorf("post stats: %w", err)
	}
	return st, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 5
	}
	if limit > models.MaxPageSize {
		return models.MaxPageSize
	}
	return limit
}

// GetRecentPosts returns the newest published posts.
func (s *Store) GetRecentPosts(ctx context.Context, limit int) ([]models.PostWithRelations, error) {
	var posts []models.Post
	err := withPostRelations(s.db.WithContext(ctx)).
		Where("status = ?", models.PostStatusPublished).
		Order("published_at DESC, id DESC").
		Limit(clampLimit(limit)).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("recent posts: %w", err)
	}
	return shapePosts(posts), nil
}

// GetMostViewedPosts returns published posts with the highest view counts.
func (s *Store) GetMostViewedPosts(ctx context.Context, limit int) ([]models.PostWithRelations, error) {
	var posts []models.Post
	err := withPostRelations(s.db.WithContext(ctx)).
		Where("status = ?", models.PostStatusPublished).
		Order("view_count DESC, id DESC").
		Limit(clampLimit(limit)).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("most viewed posts: %w", err)
	}
	return shapePosts(posts), nil
}

// GetPopularPosts ranks published posts by comment count; posts without comments still
// qualify after the commented ones.
func (s *Store) GetPopularPosts(ctx context.Context, limit int) ([]models.PopularPost, error) {
	var rows []groupCount
	err := s.db.WithContext(ctx).Table("posts").
		Select("posts.id AS group_key, COUNT(comments.id) AS total").
		Joins("LEFT JOIN comments ON comments.post_id = posts.id").
		Where("posts.status = ?", models.PostStatusPublished).
		Group("posts.id").
		Order("total DESC, posts.id ASC").
		Limit(clampLimit(limit)).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("rank posts by comments: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.GroupKey)
	}
	posts, err := s.loadPostsInOrder(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("popular posts: %w", err)
	}
	counts := countsByKey(rows)
	out := make([]models.PopularPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, models.PopularPost{PostWithRelations: p, CommentCount: counts[p.ID]})
	}
	return out, nil
}
