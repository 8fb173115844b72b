package rest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cppla/dualfetch/models"
)

// GetStats gathers the home page counters with concurrent HEAD requests. View totals
// are summed locally because aggregate functions are disabled on the endpoint.
func (s *Store) GetStats(ctx context.Context) (models.PostStats, error) {
	var st models.PostStats
	g, gctx := errgroup.WithContext(ctx)

	count := func(dst *int64, q *Query) {
		g.Go(func() error {
			n, err := q.Count(gctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(&st.TotalPosts, s.c.From("posts"))
	count(&st.PublishedPosts, s.c.From("posts").Eq("status", models.PostStatusPublished))
	count(&st.DraftPosts, s.c.From("posts").Eq("status", models.PostStatusDraft))
	count(&st.ArchivedPosts, s.c.From("posts").Eq("status", models.PostStatusArchived))
	count(&st.TotalComments, s.c.From("comments"))
	count(&st.TotalCategories, s.c.From("categories"))
	count(&st.TotalTags, s.c.From("tags"))

	g.Go(func() error {
		var rows []struct {
			ViewCount int64 `json:"view_count"`
		}
		if _, err := s.c.From("posts").Select("view_count").Execute(gctx, &rows); err != nil {
			return err
		}
		var sum int64
		for _, r := range rows {
			sum += r.ViewCount
		}
		st.TotalViews = sum
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.PostStats{}, fmt.Errorf("post stats: %w", err)
	}
	return st, nil
}
