package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostQueryNormalize(t *testing.T) {
	q := PostQuery{Page: -2, PageSize: 0, OrderBy: "bogus", Order: "sideways", Search: "  next  "}.Normalize(9)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 9, q.PageSize)
	assert.Equal(t, PostStatusPublished, q.Status)
	assert.Equal(t, SortByPublishedAt, q.OrderBy)
	assert.Equal(t, SortDesc, q.Order)
	assert.Equal(t, "next", q.Search)
	assert.True(t, q.FiltersStatus())

	q = PostQuery{PageSize: 500, Status: PostStatusAll, Order: SortAsc}.Normalize(0)
	assert.Equal(t, MaxPageSize, q.PageSize)
	assert.False(t, q.FiltersStatus())
	assert.Equal(t, SortAsc, q.Order)

	assert.Equal(t, DefaultPageSize, PostQuery{}.Normalize(0).PageSize)

	q = PostQuery{Search: " Next*15* "}.Normalize(0)
	assert.Equal(t, "Next15", q.Search)
	assert.Equal(t, "", PostQuery{Search: "**"}.Normalize(0).Search)
}

func TestHugePageStaysPositive(t *testing.T) {
	q := PostQuery{Page: 1024819115206086202, PageSize: 9}.Normalize(0)
	assert.Equal(t, MaxPage, q.Page)
	assert.Greater(t, q.Offset(), 0)

	from, to := PaginationRange(1024819115206086202, MaxPageSize)
	assert.Greater(t, from, 0)
	assert.Equal(t, from+MaxPageSize-1, to)

	assert.Greater(t, PostQuery{Page: math.MaxInt, PageSize: MaxPageSize}.Offset(), 0)
}

func TestPaginationRangeAndOffset(t *testing.T) {
	from, to := PaginationRange(1, 9)
	assert.Equal(t, 0, from)
	assert.Equal(t, 8, to)
	from, to = PaginationRange(3, 10)
	assert.Equal(t, 20, from)
	assert.Equal(t, 29, to)
	assert.Equal(t, 18, PostQuery{Page: 3, PageSize: 9}.Offset())
}

func TestTotalPagesAndNewPage(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 9))
	assert.Equal(t, 1, TotalPages(9, 9))
	assert.Equal(t, 2, TotalPages(10, 9))
	assert.Equal(t, 0, TotalPages(10, 0))

	page := NewPage[int](nil, 42, 5, 10)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, 5, page.TotalPages)
}

func TestParseSortField(t *testing.T) {
	for in, want := range map[string]PostSortField{
		"publishedAt": SortByPublishedAt,
		"view_count":  SortByViewCount,
		"title":       SortByTitle,
		"createdAt":   SortByCreatedAt,
	} {
		got, ok := ParseSortField(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseSortField("author")
	assert.False(t, ok)
	assert.Equal(t, "view_count", SortByViewCount.Column())
	assert.Equal(t, "published_at", PostSortField("nope").Column())
}

func TestPostStatusValid(t *testing.T) {
	assert.True(t, PostStatusDraft.Valid())
	assert.True(t, PostStatusArchived.Valid())
	assert.False(t, PostStatusAll.Valid())
	assert.False(t, PostStatus("published").Valid())
}

func TestNestComments(t *testing.T) {
	parent := "c1"
	missing := "gone"
	flat := []CommentWithAuthor{
		{ID: "c1", Content: "first"},
		{ID: "c2", Content: "second"},
		{ID: "c3", Content: "reply", ParentID: &parent},
		{ID: "c4", Content: "orphan", ParentID: &missing},
	}
	threads := NestComments(flat)
	assert.Len(t, threads, 2)
	assert.Equal(t, "c1", threads[0].ID)
	assert.Len(t, threads[0].Replies, 1)
	assert.Equal(t, "c3", threads[0].Replies[0].ID)
	assert.NotNil(t, threads[1].Replies)
	assert.Empty(t, threads[1].Replies)
}
