package orm

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cppla/dualfetch/models"
)

func (s *Store) GetTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// GetTagsWithPostCount lists tags with the number of published posts carrying each.
func (s *Store) GetTagsWithPostCount(ctx context.Context) ([]models.TagWithPostCount, error) {
	var (
		tags []models.Tag
		rows []groupCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tags, err = s.GetTags(gctx)
		return err
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Table("post_tags").
			Select("post_tags.tag_id AS group_key, COUNT(*) AS total").
			Joins("JOIN posts ON posts.id = post_tags.post_id").
			Where("posts.status = ?", models.PostStatusPublished).
			Group("post_tags.tag_id").
			Scan(&rows).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count posts per tag: %w", err)
	}

	counts := countsByKey(rows)
	out := make([]models.TagWithPostCount, 0, len(tags))
	for _, t := range tags {
		out = append(out, models.TagWithPostCount{Tag: t, PostCount: counts[t.ID]})
	}
	return out, nil
}
