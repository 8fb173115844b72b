package rest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cppla/dualfetch/models"
	"github.com/cppla/dualfetch/utils"
)

var searchColumns = []string{"title", "content", "excerpt"}

// escapeLike makes '%', '_' and '\' match literally in an ilike pattern.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

// searchFilter builds the or=() body matching term in any searchable column.
func searchFilter(term string) string {
	pattern := QuoteValue("*" + escapeLike(term) + "*")
	parts := make([]string, 0, len(searchColumns))
	for _, col := range searchColumns {
		parts = append(parts, col+".ilike."+pattern)
	}
	return strings.Join(parts, ",")
}

// ListPosts returns one page of posts matching q. Category and tag slugs are resolved
// to ids first; a slug that resolves to nothing yields an empty page.
func (s *Store) ListPosts(ctx context.Context, q models.PostQuery) (models.PaginatedResult[models.PostWithRelations], error) {
	q = q.Normalize(models.DefaultPageSize)
	empty := models.NewPage[models.PostWithRelations](nil, 0, q.Page, q.PageSize)

	query := s.c.From("posts").Select(postListSelect).CountExact()
	if q.FiltersStatus() {
		query.Eq("status", q.Status)
	}
	if q.AuthorID != "" {
		query.Eq("author_id", q.AuthorID)
	}

	if q.CategorySlug != "" {
		categoryID, err := s.lookupID(ctx, "categories", "slug", q.CategorySlug)
		if errors.Is(err, ErrNotFound) {
			return empty, nil
		}
		if err != nil {
			return empty, err
		}
		query.Eq("category_id", categoryID)
	}

	if q.TagSlug != "" {
		tagID, err := s.lookupID(ctx, "tags", "slug", q.TagSlug)
		if errors.Is(err, ErrNotFound) {
			return empty, nil
		}
		if err != nil {
			return empty, err
		}
		var links []PostTagRow
		if _, err := s.c.From("post_tags").Select("post_id").Eq("tag_id", tagID).Execute(ctx, &links); err != nil {
			return empty, fmt.Errorf("list tagged posts: %w", err)
		}
		if len(links) == 0 {
			return empty, nil
		}
		ids := make([]string, 0, len(links))
		for _, l := range links {
			ids = append(ids, l.PostID)
		}
		query.In("id", utils.Unique(ids))
	}

	if q.Search != "" {
		query.Or(searchFilter(q.Search))
	}

	asc := q.Order == models.SortAsc
	query.Order(q.OrderBy.Column(), asc).Order("id", asc)
	start, end := models.PaginationRange(q.Page, q.PageSize)
	query.Range(start, end)

	var rows []PostRow
	total, err := query.Execute(ctx, &rows)
	if err != nil {
		return empty, fmt.Errorf("list posts: %w", err)
	}
	if total < 0 {
		total = 0
	}

	posts := make([]models.PostWithRelations, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, toPost(r))
	}
	return models.NewPage(posts, total, q.Page, q.PageSize), nil
}

// GetPost loads a post with its author, category and tags. idOrSlug is matched against
// id when it parses as a UUID and against slug otherwise.
func (s *Store) GetPost(ctx context.Context, idOrSlug string) (models.PostWithRelations, error) {
	field := "slug"
	if _, err := uuid.Parse(idOrSlug); err == nil {
		field = "id"
	}

	var row PostRow
	if _, err := s.c.From("posts").Select(postDetailSelect).Eq(field, idOrSlug).Single().Execute(ctx, &row); err != nil {
		return models.PostWithRelations{}, fmt.Errorf("load post: %w", err)
	}

	var links []PostTagRow
	if _, err := s.c.From("post_tags").Select(postTagSelect).Eq("post_id", row.ID).Execute(ctx, &links); err != nil {
		return models.PostWithRelations{}, fmt.Errorf("load post tags: %w", err)
	}
	row.Tags = links
	return toPost(row), nil
}

// IncrementViewCount reads the current count and writes it back plus one. The table
// interface has no atomic increment, so concurrent views may be lost.
func (s *Store) IncrementViewCount(ctx context.Context, id string) error {
	var row struct {
		ViewCount int64 `json:"view_count"`
	}
	if _, err := s.c.From("posts").Select("view_count").Eq("id", id).Single().Execute(ctx, &row); err != nil {
		return fmt.Errorf("read view count: %w", err)
	}
	patch := map[string]int64{"view_count": row.ViewCount + 1}
	if err := s.c.From("posts").Eq("id", id).Update(ctx, patch, nil); err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// GetRecentPosts returns the newest published posts.
func (s *Store) GetRecentPosts(ctx context.Context, limit int) ([]models.PostWithRelations, error) {
	if limit <= 0 {
		limit = 5
	}
	page, err := s.ListPosts(ctx, models.PostQuery{Page: 1, PageSize: limit, Status: models.PostStatusPublished})
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}
